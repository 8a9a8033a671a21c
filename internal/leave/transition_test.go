package leave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit(t *testing.T) {
	t.Parallel()

	member := Submit(NewRoleSet(RoleMember))
	assert.Equal(t, StatusPendingPartLeader, member.To)
	assert.Equal(t, []Notice{{Audience: AudiencePartLeaders, Kind: NoticeSubmitted}}, member.Notices)

	partLeader := Submit(NewRoleSet(RolePartLeader))
	assert.Equal(t, StatusPendingTeamLeader, partLeader.To)
	assert.Equal(t, []Notice{{Audience: AudienceTeamLeaders, Kind: NoticeSubmitted}}, partLeader.Notices)

	both := Submit(NewRoleSet(RoleTeamLeader, RolePartLeader))
	assert.Equal(t, StatusPendingTeamLeader, both.To)
}

func TestApprove(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		current  Status
		roles    RoleSet
		want     Status
		audience Audience
		wantErr  error
	}{
		{name: "team leader final approval", current: StatusPendingTeamLeader, roles: NewRoleSet(RoleTeamLeader), want: StatusApproved, audience: AudienceRequester},
		{name: "part leader escalates", current: StatusPendingPartLeader, roles: NewRoleSet(RolePartLeader), want: StatusPendingTeamLeader, audience: AudienceTeamLeaders},
		{name: "part leader on second tier", current: StatusPendingTeamLeader, roles: NewRoleSet(RolePartLeader), wantErr: ErrInvalidApprovalAction},
		{name: "team leader on first tier", current: StatusPendingPartLeader, roles: NewRoleSet(RoleTeamLeader), wantErr: ErrInvalidApprovalAction},
		{name: "dual role on first tier", current: StatusPendingPartLeader, roles: NewRoleSet(RoleTeamLeader, RolePartLeader), want: StatusPendingTeamLeader, audience: AudienceTeamLeaders},
		{name: "member cannot approve", current: StatusPendingPartLeader, roles: NewRoleSet(RoleMember), wantErr: ErrInvalidApprovalAction},
		{name: "approved is terminal", current: StatusApproved, roles: NewRoleSet(RoleTeamLeader), wantErr: ErrInvalidApprovalAction},
		{name: "rejected is terminal", current: StatusRejected, roles: NewRoleSet(RoleTeamLeader, RolePartLeader), wantErr: ErrInvalidApprovalAction},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tr, err := Approve(tc.current, tc.roles)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.current, tr.From)
			assert.Equal(t, tc.want, tr.To)
			require.Len(t, tr.Notices, 1)
			assert.Equal(t, tc.audience, tr.Notices[0].Audience)
		})
	}
}

func TestReject(t *testing.T) {
	t.Parallel()

	tr, err := Reject(StatusPendingPartLeader, NewRoleSet(RolePartLeader))
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, tr.To)
	assert.Equal(t, []Notice{{Audience: AudienceRequester, Kind: NoticeRejected}}, tr.Notices)

	_, err = Reject(StatusPendingTeamLeader, NewRoleSet(RoleTeamLeader))
	assert.NoError(t, err)

	_, err = Reject(StatusPendingPartLeader, NewRoleSet(RoleMember))
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = Reject(StatusApproved, NewRoleSet(RoleTeamLeader))
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	_, err = Reject(StatusRejected, NewRoleSet(RolePartLeader))
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	tr, err := Cancel(StatusPendingPartLeader, "owner", "owner")
	require.NoError(t, err)
	assert.True(t, tr.Delete)
	assert.Empty(t, tr.Notices)

	_, err = Cancel(StatusPendingTeamLeader, "owner", "someone-else")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = Cancel(StatusApproved, "owner", "owner")
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestNoticeMessage(t *testing.T) {
	t.Parallel()

	r := Request{Type: TypeAnnual, Start: date(t, "2025-07-01"), End: date(t, "2025-07-03")}
	assert.Equal(t, "kim requested annual leave (2025-07-01 ~ 2025-07-03), awaiting your approval.",
		Notice{Kind: NoticeSubmitted}.Message("kim", r))

	r.End = r.Start
	assert.Equal(t, "Your vacation request (2025-07-01) has been rejected.",
		Notice{Kind: NoticeRejected}.Message("kim", r))
}
