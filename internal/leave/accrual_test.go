package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := ParseDate(value)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", value, err)
	}
	return d
}

func TestIsEligible(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		hire  string
		today string
		want  bool
	}{
		{name: "exactly three months", hire: "2025-02-15", today: "2025-05-15", want: true},
		{name: "one day short", hire: "2025-02-16", today: "2025-05-15", want: false},
		{name: "long tenure", hire: "2019-01-01", today: "2025-05-15", want: true},
		{name: "year rollover", hire: "2024-11-10", today: "2025-02-10", want: true},
		{name: "year rollover one day short", hire: "2024-11-11", today: "2025-02-10", want: false},
		{name: "clamped to end of february", hire: "2025-02-28", today: "2025-05-31", want: true},
		{name: "day after clamped threshold", hire: "2025-03-01", today: "2025-05-31", want: false},
		{name: "hired in the future", hire: "2025-06-01", today: "2025-05-15", want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsEligible(date(t, tc.hire), date(t, tc.today)))
		})
	}
}

func TestEntitledDays(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		hire  string
		today string
		want  float64
	}{
		{name: "partial month not counted", hire: "2025-01-20", today: "2025-06-19", want: 4},
		{name: "month completes on matching day", hire: "2025-01-20", today: "2025-06-20", want: 5},
		{name: "eleven months just before anniversary", hire: "2024-06-15", today: "2025-06-14", want: 11},
		{name: "hired today", hire: "2025-06-15", today: "2025-06-15", want: 0},
		{name: "hired in the future", hire: "2025-07-01", today: "2025-06-15", want: 0},
		{name: "first anniversary", hire: "2024-06-15", today: "2025-06-15", want: 15},
		{name: "two years one month", hire: "2023-05-15", today: "2025-06-15", want: 15},
		{name: "three calendar years", hire: "2022-06-15", today: "2025-06-15", want: 16},
		{name: "four calendar years", hire: "2021-06-15", today: "2025-06-15", want: 16},
		{name: "five calendar years", hire: "2020-06-15", today: "2025-06-15", want: 17},
		{name: "seven calendar years", hire: "2018-06-15", today: "2025-06-15", want: 18},
		{name: "year difference ignores anniversary", hire: "2022-12-31", today: "2025-01-01", want: 16},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, EntitledDays(date(t, tc.hire), date(t, tc.today)))
		})
	}
}

func TestAddMonths(t *testing.T) {
	t.Parallel()

	assert.Equal(t, date(t, "2025-02-28"), AddMonths(date(t, "2025-05-31"), -3))
	assert.Equal(t, date(t, "2024-02-29"), AddMonths(date(t, "2024-05-31"), -3))
	assert.Equal(t, date(t, "2024-10-15"), AddMonths(date(t, "2025-01-15"), -3))
	assert.Equal(t, date(t, "2026-01-31"), AddMonths(date(t, "2025-10-31"), 3))
}

func TestComputeBalance(t *testing.T) {
	t.Parallel()

	existing := []Request{
		{ID: "a", OwnerID: "u1", Type: TypeAnnual, Start: date(t, "2025-07-01"), End: date(t, "2025-07-03"), Status: StatusApproved},
		{ID: "b", OwnerID: "u1", Type: TypePMHalfDay, Start: date(t, "2025-07-10"), End: date(t, "2025-07-10"), Status: StatusPendingPartLeader},
		{ID: "c", OwnerID: "u1", Type: TypeAnnual, Start: date(t, "2025-08-01"), End: date(t, "2025-08-05"), Status: StatusRejected},
		{ID: "d", OwnerID: "u1", Type: TypeSick, Start: date(t, "2025-09-01"), End: date(t, "2025-09-02"), Status: StatusApproved},
	}

	balance := ComputeBalance(date(t, "2023-03-01"), date(t, "2025-06-15"), existing)
	assert.Equal(t, float64(15), balance.Entitled)
	assert.Equal(t, 3.5, balance.Used)
	assert.Equal(t, 11.5, balance.Remaining())
	assert.True(t, balance.Eligible)
}
