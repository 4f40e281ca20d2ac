package projections

import (
	"context"
	"fmt"
	"time"
)

// GetPendingRequestsResult carries the query result.
type GetPendingRequestsResult struct {
	Requests  []RequestView
	Count     int
	CountText string // "1 aanvraag in behandeling"
}

// GetPendingRequestsDeps holds dependencies for QueryGetPendingRequests.
type GetPendingRequestsDeps struct {
	RequestStore RequestStore
	Location     *time.Location
	WorkdayHours float64
}

// QueryGetPendingRequests returns requests awaiting a decision, oldest first.
func QueryGetPendingRequests(ctx context.Context, deps GetPendingRequestsDeps) (GetPendingRequestsResult, error) {
	pending, err := deps.RequestStore.ListPending(ctx)
	if err != nil {
		return GetPendingRequestsResult{}, err
	}
	result := GetPendingRequestsResult{Count: len(pending)}
	for _, r := range pending {
		result.Requests = append(result.Requests, newRequestView(r, deps.Location, deps.WorkdayHours))
	}
	result.CountText = fmt.Sprintf("%s in behandeling", pluralize(len(pending), "aanvraag", "aanvragen"))
	return result, nil
}
