package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/vacation-approval/internal/leave"
)

// VacationService runs the request lifecycle: submission, the two approval
// tiers, rejection and cancellation, plus the read models around them.
type VacationService struct {
	store       VacationStore
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	location    *time.Location
	logger      *slog.Logger
}

// NewVacationService wires dependencies for the vacation service. location
// decides which calendar date counts as today; nil means UTC.
func NewVacationService(store VacationStore, notifier Notifier, idGenerator func() string, now func() time.Time, location *time.Location) *VacationService {
	return NewVacationServiceWithLogger(store, notifier, idGenerator, now, location, nil)
}

// NewVacationServiceWithLogger wires dependencies for the vacation service with a logger.
func NewVacationServiceWithLogger(store VacationStore, notifier Notifier, idGenerator func() string, now func() time.Time, location *time.Location, logger *slog.Logger) *VacationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.UTC
	}
	return &VacationService{
		store:       store,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		location:    location,
		logger:      defaultLogger(logger),
	}
}

func (s *VacationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "VacationService", operation, attrs...)
}

func (s *VacationService) today() time.Time {
	return leave.Day(s.now().In(s.location))
}

func (s *VacationService) ready() error {
	if s == nil {
		return fmt.Errorf("VacationService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("vacation store not configured")
	}
	return nil
}

// Submit validates and records a new request for the principal. The
// requester's existing requests are read and the new one inserted in the
// same transaction, with the requester locked for its duration.
func (s *VacationService) Submit(ctx context.Context, params SubmitParams) (request VacationRequest, err error) {
	if err = s.ready(); err != nil {
		return
	}
	principal := params.Principal
	logger := s.loggerWith(ctx, "Submit",
		"user_id", principal.UserID,
		"vacation_type", params.Type,
		"start_date", params.StartDate,
		"end_date", params.EndDate,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "vacation submission failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "vacation submitted", "vacation_id", request.ID, "status", request.Status)
	}()

	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	start, end, vErr := parseDateRange(params.StartDate, params.EndDate)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	vacationType := leave.VacationType(strings.TrimSpace(params.Type))
	today := s.today()

	var (
		requester User
		notices   []leave.Notice
	)
	err = s.store.WithinTx(ctx, func(repos Repositories) error {
		if err := repos.LockUser(ctx, principal.UserID); err != nil {
			return mapRepoError(err)
		}
		user, err := repos.GetUser(ctx, principal.UserID)
		if err != nil {
			return mapRepoError(err)
		}
		existing, err := repos.ListVacationsByUser(ctx, user.ID)
		if err != nil {
			return mapRepoError(err)
		}

		candidate := leave.Candidate{
			OwnerID:  user.ID,
			HireDate: user.HireDate,
			Type:     vacationType,
			Start:    start,
			End:      end,
		}
		if err := leave.Validate(candidate, toDomainRequests(existing), today); err != nil {
			return submissionError(err)
		}

		transition := leave.Submit(user.Roles)
		createdAt := s.now()
		created := VacationRequest{
			ID:        s.idGenerator(),
			UserID:    user.ID,
			Type:      vacationType,
			Start:     start,
			End:       end,
			Reason:    strings.TrimSpace(params.Reason),
			Backup:    strings.TrimSpace(params.Backup),
			Status:    transition.To,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}
		if err := repos.CreateVacation(ctx, created); err != nil {
			return mapRepoError(err)
		}

		request = created
		requester = user
		notices = transition.Notices
		return nil
	})
	if err != nil {
		request = VacationRequest{}
		return
	}

	s.dispatch(ctx, logger, requester, request, notices)
	return request, nil
}

// Approve advances a pending request by one tier.
func (s *VacationService) Approve(ctx context.Context, principal Principal, requestID string) (VacationRequest, error) {
	return s.decide(ctx, "Approve", principal, requestID, func(current VacationRequest) (leave.Transition, error) {
		return leave.Approve(current.Status, principal.Roles)
	})
}

// Reject closes a pending request.
func (s *VacationService) Reject(ctx context.Context, principal Principal, requestID string) (VacationRequest, error) {
	return s.decide(ctx, "Reject", principal, requestID, func(current VacationRequest) (leave.Transition, error) {
		return leave.Reject(current.Status, principal.Roles)
	})
}

// Cancel deletes a pending request on behalf of its owner.
func (s *VacationService) Cancel(ctx context.Context, principal Principal, requestID string) error {
	_, err := s.decide(ctx, "Cancel", principal, requestID, func(current VacationRequest) (leave.Transition, error) {
		return leave.Cancel(current.Status, current.UserID, principal.UserID)
	})
	return err
}

// decide applies a state machine transition to the stored request. The
// status write is guarded by the status that was read, so a concurrent
// decision on the same request surfaces as ErrConcurrentModification.
func (s *VacationService) decide(ctx context.Context, operation string, principal Principal, requestID string, transition func(VacationRequest) (leave.Transition, error)) (request VacationRequest, err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, operation,
		"user_id", principal.UserID,
		"vacation_id", requestID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "vacation decision failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "vacation decision applied", "status", request.Status)
	}()

	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	var (
		requester User
		notices   []leave.Notice
	)
	err = s.store.WithinTx(ctx, func(repos Repositories) error {
		current, err := repos.GetVacation(ctx, requestID)
		if err != nil {
			return mapRepoError(err)
		}
		next, err := transition(current)
		if err != nil {
			return err
		}

		if next.Delete {
			if err := repos.DeleteVacation(ctx, current.ID, current.Status); err != nil {
				return mapRepoError(err)
			}
			request = current
			return nil
		}

		updatedAt := s.now()
		if err := repos.UpdateVacationStatus(ctx, current.ID, current.Status, next.To, updatedAt); err != nil {
			return mapRepoError(err)
		}
		current.Status = next.To
		current.UpdatedAt = updatedAt

		if len(next.Notices) > 0 {
			owner, err := repos.GetUser(ctx, current.UserID)
			if err != nil {
				return mapRepoError(err)
			}
			requester = owner
			notices = next.Notices
		}
		request = current
		return nil
	})
	if err != nil {
		request = VacationRequest{}
		return
	}

	s.dispatch(ctx, logger, requester, request, notices)
	return request, nil
}

// PendingApprovals lists the requests waiting on the principal. Part leaders
// see first-tier requests from their own part and team leaders see every
// second-tier request.
func (s *VacationService) PendingApprovals(ctx context.Context, principal Principal) (approvals []PendingApproval, err error) {
	if err = s.ready(); err != nil {
		return nil, err
	}
	logger := s.loggerWith(ctx, "PendingApprovals", "user_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "listing pending approvals failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !principal.Roles.IsApprover() {
		return nil, ErrUnauthorized
	}

	seen := make(map[string]struct{})
	var requests []VacationRequest
	collect := func(batch []VacationRequest) {
		for _, r := range batch {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			requests = append(requests, r)
		}
	}

	if principal.Roles.Has(leave.RolePartLeader) {
		batch, err := s.store.ListVacationsByStatusAndPart(ctx, leave.StatusPendingPartLeader, principal.Part)
		if err != nil {
			return nil, mapRepoError(err)
		}
		collect(batch)
	}
	if principal.Roles.Has(leave.RoleTeamLeader) {
		batch, err := s.store.ListVacationsByStatus(ctx, leave.StatusPendingTeamLeader)
		if err != nil {
			return nil, mapRepoError(err)
		}
		collect(batch)
	}

	sort.Slice(requests, func(i, j int) bool {
		if requests[i].Start.Equal(requests[j].Start) {
			return requests[i].ID < requests[j].ID
		}
		return requests[i].Start.Before(requests[j].Start)
	})

	users := make(map[string]User)
	approvals = make([]PendingApproval, 0, len(requests))
	for _, r := range requests {
		owner, ok := users[r.UserID]
		if !ok {
			owner, err = s.store.GetUser(ctx, r.UserID)
			if err != nil {
				return nil, mapRepoError(err)
			}
			users[r.UserID] = owner
		}
		approvals = append(approvals, PendingApproval{Request: r, Requester: owner})
	}
	return approvals, nil
}

// History returns the principal's own requests, latest start date first.
func (s *VacationService) History(ctx context.Context, principal Principal) ([]VacationRequest, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	requests, err := s.store.ListVacationsByUser(ctx, principal.UserID)
	if err != nil {
		err = mapRepoError(err)
		s.loggerWith(ctx, "History", "user_id", principal.UserID).
			ErrorContext(ctx, "listing vacation history failed", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	sort.SliceStable(requests, func(i, j int) bool { return requests[i].Start.After(requests[j].Start) })
	return requests, nil
}

// Balance reports the principal's annual leave entitlement and usage.
func (s *VacationService) Balance(ctx context.Context, principal Principal) (Balance, error) {
	if err := s.ready(); err != nil {
		return Balance{}, err
	}
	if principal.UserID == "" {
		return Balance{}, ErrUnauthorized
	}

	user, err := s.store.GetUser(ctx, principal.UserID)
	if err != nil {
		return Balance{}, mapRepoError(err)
	}
	requests, err := s.store.ListVacationsByUser(ctx, user.ID)
	if err != nil {
		return Balance{}, mapRepoError(err)
	}

	computed := leave.ComputeBalance(user.HireDate, s.today(), toDomainRequests(requests))
	return Balance{
		HireDate:  user.HireDate,
		Eligible:  computed.Eligible,
		Entitled:  computed.Entitled,
		Used:      computed.Used,
		Remaining: computed.Remaining(),
	}, nil
}

// dispatch resolves notice audiences and hands each message to the notifier.
// Delivery failures are logged and never fail the action.
func (s *VacationService) dispatch(ctx context.Context, logger *slog.Logger, requester User, request VacationRequest, notices []leave.Notice) {
	if s.notifier == nil || len(notices) == 0 {
		return
	}
	for _, notice := range notices {
		recipients, err := s.recipients(ctx, notice.Audience, requester)
		if err != nil {
			logger.WarnContext(ctx, "resolving notification recipients failed",
				"audience", notice.Audience, "error", err)
			continue
		}
		message := notice.Message(requester.Username, request.domain())
		for _, userID := range recipients {
			if err := s.notifier.Notify(ctx, userID, message); err != nil {
				logger.WarnContext(ctx, "notification delivery failed",
					"recipient_id", userID, "notice", notice.Kind, "error", err)
			}
		}
	}
}

func (s *VacationService) recipients(ctx context.Context, audience leave.Audience, requester User) ([]string, error) {
	var (
		users []User
		err   error
	)
	switch audience {
	case leave.AudienceRequester:
		return []string{requester.ID}, nil
	case leave.AudienceTeamLeaders:
		users, err = s.store.ListUsersByRole(ctx, leave.RoleTeamLeader, "")
	case leave.AudiencePartLeaders:
		users, err = s.store.ListUsersByRole(ctx, leave.RolePartLeader, requester.Part)
	default:
		return nil, fmt.Errorf("unknown audience %q", audience)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		if u.ID == requester.ID {
			continue
		}
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func parseDateRange(startValue, endValue string) (time.Time, time.Time, *ValidationError) {
	vErr := &ValidationError{}
	start, err := leave.ParseDate(startValue)
	if err != nil {
		vErr.merge(fieldError("start_date", leave.ErrInvalidDate))
	}
	end, err := leave.ParseDate(endValue)
	if err != nil {
		vErr.merge(fieldError("end_date", leave.ErrInvalidDate))
	}
	return start, end, vErr
}

// submissionError gives the input-shaped rules a field so transports can
// point at it. Business rule failures are returned unchanged.
func submissionError(err error) error {
	switch {
	case errors.Is(err, leave.ErrInvalidRange):
		return fieldError("end_date", err)
	case errors.Is(err, leave.ErrPastDate):
		return fieldError("start_date", err)
	case errors.Is(err, leave.ErrUnknownType):
		return fieldError("type", err)
	}
	return err
}

func toDomainRequests(requests []VacationRequest) []leave.Request {
	out := make([]leave.Request, len(requests))
	for i, r := range requests {
		out[i] = r.domain()
	}
	return out
}
