package leave

import "fmt"

// Audience identifies who receives a workflow notice.
type Audience string

const (
	// AudienceRequester is the owner of the request.
	AudienceRequester Audience = "requester"
	// AudienceTeamLeaders is every team leader in the organisation.
	AudienceTeamLeaders Audience = "team_leaders"
	// AudiencePartLeaders is every part leader of the requester's unit.
	AudiencePartLeaders Audience = "part_leaders"
)

// NoticeKind names the event a notice announces.
type NoticeKind string

const (
	NoticeSubmitted NoticeKind = "submitted"
	NoticeEscalated NoticeKind = "escalated"
	NoticeApproved  NoticeKind = "approved"
	NoticeRejected  NoticeKind = "rejected"
)

// Notice is a notification to be fanned out after a transition commits.
type Notice struct {
	Audience Audience
	Kind     NoticeKind
}

// Message renders the notice text for a request owned by requester.
func (n Notice) Message(requester string, r Request) string {
	period := FormatDate(r.Start)
	if !Day(r.Start).Equal(Day(r.End)) {
		period += " ~ " + FormatDate(r.End)
	}
	switch n.Kind {
	case NoticeSubmitted:
		return fmt.Sprintf("%s requested %s leave (%s), awaiting your approval.", requester, r.Type, period)
	case NoticeEscalated:
		return fmt.Sprintf("%s's %s leave (%s) passed part leader review, awaiting your approval.", requester, r.Type, period)
	case NoticeApproved:
		return fmt.Sprintf("Your vacation request (%s) has been approved.", period)
	case NoticeRejected:
		return fmt.Sprintf("Your vacation request (%s) has been rejected.", period)
	default:
		return fmt.Sprintf("Your vacation request (%s) was updated.", period)
	}
}

// Transition is the outcome of applying an action to a request.
type Transition struct {
	From    Status
	To      Status
	Delete  bool
	Notices []Notice
}

// InitialStatus is the first status of a request submitted by a holder of roles.
// Part leaders skip their own tier.
func InitialStatus(roles RoleSet) Status {
	if roles.Has(RolePartLeader) {
		return StatusPendingTeamLeader
	}
	return StatusPendingPartLeader
}

// Submit computes the creation transition for a new request.
func Submit(roles RoleSet) Transition {
	to := InitialStatus(roles)
	audience := AudiencePartLeaders
	if to == StatusPendingTeamLeader {
		audience = AudienceTeamLeaders
	}
	return Transition{
		To:      to,
		Notices: []Notice{{Audience: audience, Kind: NoticeSubmitted}},
	}
}

// Approve advances a request one tier for an approver holding roles.
func Approve(current Status, roles RoleSet) (Transition, error) {
	switch {
	case roles.Has(RoleTeamLeader) && current == StatusPendingTeamLeader:
		return Transition{
			From:    current,
			To:      StatusApproved,
			Notices: []Notice{{Audience: AudienceRequester, Kind: NoticeApproved}},
		}, nil
	case roles.Has(RolePartLeader) && current == StatusPendingPartLeader:
		return Transition{
			From:    current,
			To:      StatusPendingTeamLeader,
			Notices: []Notice{{Audience: AudienceTeamLeaders, Kind: NoticeEscalated}},
		}, nil
	default:
		return Transition{}, ErrInvalidApprovalAction
	}
}

// Reject closes a pending request for any approver.
func Reject(current Status, roles RoleSet) (Transition, error) {
	if !roles.IsApprover() {
		return Transition{}, ErrUnauthorized
	}
	if !current.IsPending() {
		return Transition{}, ErrAlreadyFinalized
	}
	return Transition{
		From:    current,
		To:      StatusRejected,
		Notices: []Notice{{Audience: AudienceRequester, Kind: NoticeRejected}},
	}, nil
}

// Cancel withdraws a pending request on behalf of its owner.
func Cancel(current Status, ownerID, actorID string) (Transition, error) {
	if ownerID != actorID {
		return Transition{}, ErrForbidden
	}
	if !current.IsPending() {
		return Transition{}, ErrAlreadyFinalized
	}
	return Transition{From: current, Delete: true}, nil
}
