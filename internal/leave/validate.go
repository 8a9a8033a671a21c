package leave

import "time"

// Candidate describes a request about to be submitted.
type Candidate struct {
	OwnerID  string
	HireDate time.Time
	Type     VacationType
	Start    time.Time
	End      time.Time
}

// ValidateDateRange rejects reversed ranges and ranges starting before today.
func ValidateDateRange(start, end, today time.Time) error {
	if Day(start).After(Day(end)) {
		return ErrInvalidRange
	}
	if Day(start).Before(Day(today)) {
		return ErrPastDate
	}
	return nil
}

// ValidateType rejects unrecognised vacation types.
func ValidateType(t VacationType) error {
	if !t.Valid() {
		return ErrUnknownType
	}
	return nil
}

// CheckEligibility enforces the three month waiting period. It applies to
// every vacation type, including those that never touch the balance.
func CheckEligibility(hire, today time.Time, t VacationType) error {
	if !IsEligible(hire, today) {
		return ErrNotEligible
	}
	return nil
}

// CheckOverlap fails when a pending or approved request of the same owner intersects the range.
func CheckOverlap(ownerID string, start, end time.Time, existing []Request) error {
	s, e := Day(start), Day(end)
	for _, other := range existing {
		if other.OwnerID != ownerID || !other.Status.Blocks() {
			continue
		}
		if !(e.Before(Day(other.Start)) || s.After(Day(other.End))) {
			return &OverlapError{ConflictingID: other.ID}
		}
	}
	return nil
}

// RequestedDays is the balance a request of type t spanning start..end consumes.
func RequestedDays(t VacationType, start, end time.Time) float64 {
	switch {
	case t == TypeAnnual:
		return float64(DaysInclusive(start, end))
	case t.IsHalfDay():
		return 0.5
	default:
		return 0
	}
}

// UsedDays sums the balance held by pending and approved requests.
func UsedDays(existing []Request) float64 {
	var used float64
	for _, r := range existing {
		if r.Status.Blocks() {
			used += RequestedDays(r.Type, r.Start, r.End)
		}
	}
	return used
}

// CheckBalance fails when used plus requested exceeds the entitlement.
func CheckBalance(entitled, used, requested float64) error {
	if used+requested > entitled {
		return &BalanceError{Entitled: entitled, Used: used, Requested: requested}
	}
	return nil
}

// Validate runs every submission check in order and stops at the first failure:
// date range, type, eligibility, overlap, balance.
func Validate(c Candidate, existing []Request, today time.Time) error {
	if err := ValidateDateRange(c.Start, c.End, today); err != nil {
		return err
	}
	if err := ValidateType(c.Type); err != nil {
		return err
	}
	if err := CheckEligibility(c.HireDate, today, c.Type); err != nil {
		return err
	}
	if err := CheckOverlap(c.OwnerID, c.Start, c.End, existing); err != nil {
		return err
	}

	owned := make([]Request, 0, len(existing))
	for _, r := range existing {
		if r.OwnerID == c.OwnerID {
			owned = append(owned, r)
		}
	}
	return CheckBalance(
		EntitledDays(c.HireDate, today),
		UsedDays(owned),
		RequestedDays(c.Type, c.Start, c.End),
	)
}
