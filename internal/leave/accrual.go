package leave

import "time"

const (
	// EligibilityMonths is the waiting period before annual leave may be used.
	EligibilityMonths = 3
	// BaseAnnualDays is the entitlement from the second year of service.
	BaseAnnualDays = 15
	// FirstYearCapDays caps the monthly accrual during the first year.
	FirstYearCapDays = 12
)

// IsEligible reports whether a hire date lies at least three calendar months before today.
// When the matching day does not exist in the target month the month's last day is used.
func IsEligible(hire, today time.Time) bool {
	threshold := AddMonths(Day(today), -EligibilityMonths)
	return !Day(hire).After(threshold)
}

// EntitledDays returns the annual leave entitlement for the given tenure.
//
// Tenure below 365 days accrues one day per completed calendar month, capped at twelve.
// Afterwards the entitlement is fifteen days, growing by one day every two years once the
// plain difference of calendar years reaches three. The year branch intentionally compares
// years only, not anniversaries.
func EntitledDays(hire, today time.Time) float64 {
	h, t := Day(hire), Day(today)

	if t.Sub(h) < 365*24*time.Hour {
		months := (t.Year()-h.Year())*12 + int(t.Month()) - int(h.Month())
		if t.Day() < h.Day() {
			months--
		}
		if months < 0 {
			months = 0
		}
		return float64(min(months, FirstYearCapDays))
	}

	years := t.Year() - h.Year()
	if years >= 3 {
		return float64(BaseAnnualDays + (years-3)/2 + 1)
	}
	return BaseAnnualDays
}

// AddMonths moves t by n calendar months, clamping to the last day of the target month.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	total := y*12 + int(m) - 1 + n
	ty, tm := total/12, time.Month(total%12+1)
	if last := daysIn(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Balance summarises a user's annual leave position.
type Balance struct {
	Entitled float64
	Used     float64
	Eligible bool
}

// Remaining is the unspent part of the entitlement.
func (b Balance) Remaining() float64 {
	return b.Entitled - b.Used
}

// ComputeBalance derives a user's balance from hire date and existing requests.
func ComputeBalance(hire, today time.Time, existing []Request) Balance {
	return Balance{
		Entitled: EntitledDays(hire, today),
		Used:     UsedDays(existing),
		Eligible: IsEligible(hire, today),
	}
}
