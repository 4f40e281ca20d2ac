package projections

import (
	"context"
	"time"

	domainLeave "verlof/internal/domain/leave"
)

// DefaultADVHours is the yearly ADV allowance per employee.
const DefaultADVHours = 18.0

// GetAdvBalanceQuery selects the employee and calendar year.
type GetAdvBalanceQuery struct {
	EmployeeNumber string
	Year           int
}

// GetAdvBalanceResult carries the query result. Remaining may go negative; the
// allowance is informational and not enforced on submit.
type GetAdvBalanceResult struct {
	EmployeeNumber string  `json:"employeeNumber"`
	Year           int     `json:"year"`
	Allowance      float64 `json:"allowance"`
	Approved       float64 `json:"approved"`
	Pending        float64 `json:"pending"`
	Remaining      float64 `json:"remaining"`
}

// GetAdvBalanceDeps holds dependencies for QueryGetAdvBalance.
type GetAdvBalanceDeps struct {
	RequestStore   RequestStore
	AllowanceHours float64
	WorkdayHours   float64
}

// QueryGetAdvBalance sums ADV hours taken or requested in a year.
// PRE: EmployeeNumber non-empty
// POST: Remaining = Allowance - Approved - Pending; rejected requests are ignored and
// ranges crossing the year boundary only count the days inside the year
func QueryGetAdvBalance(ctx context.Context, query GetAdvBalanceQuery, deps GetAdvBalanceDeps) (GetAdvBalanceResult, error) {
	allowance := deps.AllowanceHours
	if allowance <= 0 {
		allowance = DefaultADVHours
	}
	workday := deps.WorkdayHours
	if workday <= 0 {
		workday = domainLeave.DefaultWorkdayHours
	}
	from := time.Date(query.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(query.Year, time.December, 31, 0, 0, 0, 0, time.UTC)

	requests, err := deps.RequestStore.ListOverlapping(ctx, from, to)
	if err != nil {
		return GetAdvBalanceResult{}, err
	}

	result := GetAdvBalanceResult{EmployeeNumber: query.EmployeeNumber, Year: query.Year, Allowance: allowance}
	for _, r := range requests {
		if r.EmployeeNumber != query.EmployeeNumber || r.Type != domainLeave.TypeADV {
			continue
		}
		if r.StartDate.Before(from) {
			r.StartDate = from
		}
		if r.EndDate.After(to) {
			r.EndDate = to
		}
		switch r.Status {
		case domainLeave.StatusApproved:
			result.Approved += r.Hours(workday)
		case domainLeave.StatusPending:
			result.Pending += r.Hours(workday)
		}
	}
	result.Remaining = result.Allowance - result.Approved - result.Pending
	return result, nil
}
