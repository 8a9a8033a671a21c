package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/vacation-approval/internal/application"
	"github.com/example/vacation-approval/internal/leave"
)

type vacationService interface {
	Submit(ctx context.Context, params application.SubmitParams) (application.VacationRequest, error)
	Approve(ctx context.Context, principal application.Principal, requestID string) (application.VacationRequest, error)
	Reject(ctx context.Context, principal application.Principal, requestID string) (application.VacationRequest, error)
	Cancel(ctx context.Context, principal application.Principal, requestID string) error
	PendingApprovals(ctx context.Context, principal application.Principal) ([]application.PendingApproval, error)
	History(ctx context.Context, principal application.Principal) ([]application.VacationRequest, error)
	Balance(ctx context.Context, principal application.Principal) (application.Balance, error)
}

// VacationHandler serves the request lifecycle and the approval queue.
type VacationHandler struct {
	service   vacationService
	responder responder
	logger    *slog.Logger
}

func NewVacationHandler(service vacationService, logger *slog.Logger) *VacationHandler {
	base := defaultLogger(logger)
	return &VacationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *VacationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "VacationHandler", operation, attrs...)
}

// Submit files a new request for the caller.
func (h *VacationHandler) Submit(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	var req submitRequest
	if err := bindJSON(c, &req); err != nil {
		h.responder.fail(c, err)
		return
	}

	request, err := h.service.Submit(c.Request.Context(), application.SubmitParams{
		Principal: p,
		Type:      req.Type,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
		Backup:    req.Backup,
	})
	if err != nil {
		h.responder.fail(c, err)
		return
	}
	h.responder.success(c, http.StatusCreated, "vacation request submitted", toVacationDTO(request))
}

// History lists the caller's requests.
func (h *VacationHandler) History(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	requests, err := h.service.History(c.Request.Context(), p)
	if err != nil {
		h.responder.fail(c, err)
		return
	}
	out := make([]vacationDTO, len(requests))
	for i, r := range requests {
		out[i] = toVacationDTO(r)
	}
	h.responder.success(c, http.StatusOK, "", out)
}

// Cancel withdraws one of the caller's pending requests.
func (h *VacationHandler) Cancel(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), p, id); err != nil {
		h.responder.fail(c, err)
		return
	}
	h.log(c.Request.Context(), "Cancel", "vacation_id", id).DebugContext(c.Request.Context(), "request cancelled")
	h.responder.success(c, http.StatusOK, "vacation request cancelled", nil)
}

// Balance reports the caller's annual leave position.
func (h *VacationHandler) Balance(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	balance, err := h.service.Balance(c.Request.Context(), p)
	if err != nil {
		h.responder.fail(c, err)
		return
	}
	h.responder.success(c, http.StatusOK, "", balanceDTO{
		HireDate:  leave.FormatDate(balance.HireDate),
		Eligible:  balance.Eligible,
		Entitled:  balance.Entitled,
		Used:      balance.Used,
		Remaining: balance.Remaining,
	})
}

// Pending lists the requests waiting on the caller.
func (h *VacationHandler) Pending(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	approvals, err := h.service.PendingApprovals(c.Request.Context(), p)
	if err != nil {
		h.responder.fail(c, err)
		return
	}
	out := make([]approvalDTO, len(approvals))
	for i, a := range approvals {
		out[i] = approvalDTO{
			vacationDTO: toVacationDTO(a.Request),
			Requester: requesterDTO{
				ID:       a.Requester.ID,
				Username: a.Requester.Username,
				Part:     a.Requester.Part,
			},
		}
	}
	h.responder.success(c, http.StatusOK, "", out)
}

// Approve advances a request by one tier.
func (h *VacationHandler) Approve(c *gin.Context) {
	h.decide(c, h.service.Approve)
}

// Reject closes a pending request.
func (h *VacationHandler) Reject(c *gin.Context) {
	h.decide(c, h.service.Reject)
}

func (h *VacationHandler) decide(c *gin.Context, action func(context.Context, application.Principal, string) (application.VacationRequest, error)) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	request, err := action(c.Request.Context(), p, id)
	if err != nil {
		h.responder.fail(c, err)
		return
	}
	h.responder.success(c, http.StatusOK, decisionMessage(request.Status), toVacationDTO(request))
}

func (h *VacationHandler) pathID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		h.responder.fail(c, errMissingID)
		return "", false
	}
	return id, true
}

func decisionMessage(status leave.Status) string {
	switch status {
	case leave.StatusPendingTeamLeader:
		return "vacation request forwarded to the team leader"
	case leave.StatusApproved:
		return "vacation request approved"
	case leave.StatusRejected:
		return "vacation request rejected"
	default:
		return "vacation request updated"
	}
}

type submitRequest struct {
	Type      string `json:"type" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"max=500"`
	Backup    string `json:"backup" binding:"max=100"`
}

type vacationDTO struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Type      string  `json:"type"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Days      float64 `json:"days"`
	Reason    string  `json:"reason,omitempty"`
	Backup    string  `json:"backup,omitempty"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type requesterDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Part     string `json:"part"`
}

type approvalDTO struct {
	vacationDTO
	Requester requesterDTO `json:"requester"`
}

type balanceDTO struct {
	HireDate  string  `json:"hire_date"`
	Eligible  bool    `json:"eligible"`
	Entitled  float64 `json:"entitled"`
	Used      float64 `json:"used"`
	Remaining float64 `json:"remaining"`
}

func toVacationDTO(r application.VacationRequest) vacationDTO {
	return vacationDTO{
		ID:        r.ID,
		UserID:    r.UserID,
		Type:      string(r.Type),
		StartDate: leave.FormatDate(r.Start),
		EndDate:   leave.FormatDate(r.End),
		Days:      r.Days(),
		Reason:    r.Reason,
		Backup:    r.Backup,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
