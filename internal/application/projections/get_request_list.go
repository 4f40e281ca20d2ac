package projections

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"verlof/internal/application/listutil"
	domainLeave "verlof/internal/domain/leave"
)

// Sort keys accepted by the overview.
const (
	SortName    = "name"
	SortStart   = "start"
	SortCreated = "created"
)

// RequestSortColumns lists the sort keys QueryGetRequestList understands.
var RequestSortColumns = []string{SortName, SortStart, SortCreated}

// GetRequestListQuery carries query parameters. An empty or unknown Status lists all.
// A zero List means first page, default size, store order.
type GetRequestListQuery struct {
	Status string
	List   listutil.Params
}

// StatusFilter is one tab on the overview.
type StatusFilter struct {
	Value  string
	Label  string
	Count  int
	Active bool
}

// GetRequestListResult carries the query result.
type GetRequestListResult struct {
	Status   string
	Filters  []StatusFilter
	Requests []RequestView
	List     listutil.Params
	Page     listutil.PageInfo
}

// GetRequestListDeps holds dependencies for QueryGetRequestList.
type GetRequestListDeps struct {
	RequestStore RequestStore
	Location     *time.Location
	WorkdayHours float64
}

// QueryGetRequestList returns one page of the overview with per-status counts.
// PRE: none
// POST: requests newest first unless sorted; Filters always lists Alle plus the three statuses
// POST: status counts ignore the search so the tabs stay stable while typing
func QueryGetRequestList(ctx context.Context, query GetRequestListQuery, deps GetRequestListDeps) (GetRequestListResult, error) {
	status := query.Status
	if !domainLeave.IsValidStatus(status) {
		status = ""
	}
	all, err := deps.RequestStore.List(ctx, "")
	if err != nil {
		return GetRequestListResult{}, err
	}

	counts := map[string]int{}
	var matched []domainLeave.Request
	for _, r := range all {
		counts[r.Status]++
		if status != "" && r.Status != status {
			continue
		}
		if !listutil.Matches(query.List.Search, r.EmployeeName, r.EmployeeNumber, r.Reason) {
			continue
		}
		matched = append(matched, r)
	}
	sortRequests(matched, query.List.Sort, query.List.Desc)

	page, info := listutil.Paginate(matched, query.List.Page, query.List.PerPage)
	result := GetRequestListResult{Status: status, List: query.List, Page: info}
	result.List.Page = info.Page
	result.List.PerPage = info.PerPage
	for _, r := range page {
		result.Requests = append(result.Requests, newRequestView(r, deps.Location, deps.WorkdayHours))
	}

	result.Filters = []StatusFilter{
		{Value: "", Label: "Alle", Count: len(all)},
		{Value: domainLeave.StatusPending, Label: domainLeave.StatusLabel(domainLeave.StatusPending), Count: counts[domainLeave.StatusPending]},
		{Value: domainLeave.StatusApproved, Label: domainLeave.StatusLabel(domainLeave.StatusApproved), Count: counts[domainLeave.StatusApproved]},
		{Value: domainLeave.StatusRejected, Label: domainLeave.StatusLabel(domainLeave.StatusRejected), Count: counts[domainLeave.StatusRejected]},
	}
	for i := range result.Filters {
		result.Filters[i].Active = result.Filters[i].Value == status
	}
	return result, nil
}

// sortRequests orders in place; an unknown key keeps the store order.
func sortRequests(list []domainLeave.Request, key string, desc bool) {
	var compare func(a, b domainLeave.Request) int
	switch key {
	case SortName:
		compare = func(a, b domainLeave.Request) int {
			return strings.Compare(strings.ToLower(a.EmployeeName), strings.ToLower(b.EmployeeName))
		}
	case SortStart:
		compare = func(a, b domainLeave.Request) int { return a.StartDate.Compare(b.StartDate) }
	case SortCreated:
		compare = func(a, b domainLeave.Request) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return
	}
	slices.SortStableFunc(list, func(a, b domainLeave.Request) int {
		c := compare(a, b)
		if desc {
			c = -c
		}
		return cmp.Or(c, strings.Compare(a.ID, b.ID))
	})
}
