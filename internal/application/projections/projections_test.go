package projections

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"verlof/internal/application/listutil"
	"verlof/internal/application/notify"
	domainLeave "verlof/internal/domain/leave"
	domainOutbox "verlof/internal/domain/outbox"
)

type mockRequestStore struct {
	requests []domainLeave.Request
}

func (m *mockRequestStore) GetByToken(_ context.Context, token string) (domainLeave.Request, error) {
	for _, r := range m.requests {
		if r.AdminToken == token {
			return r, nil
		}
	}
	return domainLeave.Request{}, domainLeave.ErrNotFound
}

func (m *mockRequestStore) List(_ context.Context, status string) ([]domainLeave.Request, error) {
	var out []domainLeave.Request
	for _, r := range m.requests {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRequestStore) ListPending(ctx context.Context) ([]domainLeave.Request, error) {
	out, _ := m.List(ctx, domainLeave.StatusPending)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRequestStore) ListOverlapping(_ context.Context, from, to time.Time) ([]domainLeave.Request, error) {
	var out []domainLeave.Request
	for _, r := range m.requests {
		if !r.StartDate.After(to) && !r.EndDate.Before(from) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

type mockOutboxStore []domainOutbox.Entry

func (m mockOutboxStore) ListByRequest(_ context.Context, requestID string) ([]domainOutbox.Entry, error) {
	var out []domainOutbox.Entry
	for _, e := range m {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}

func date(s string) time.Time {
	t, err := domainLeave.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

var created = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func req(id, number, name, typ, status, start, end string, age int) domainLeave.Request {
	r := domainLeave.Request{
		ID:             id,
		EmployeeNumber: number,
		EmployeeName:   name,
		Type:           typ,
		Duration:       domainLeave.DurationMultiple,
		StartDate:      date(start),
		EndDate:        date(end),
		Status:         status,
		CreatedAt:      created.Add(time.Duration(age) * time.Hour),
	}
	if start == end {
		r.Duration = domainLeave.DurationDay
	}
	if status != domainLeave.StatusPending {
		r.DecidedAt = r.CreatedAt.Add(time.Hour)
	}
	return r
}

func sampleStore() *mockRequestStore {
	return &mockRequestStore{requests: []domainLeave.Request{
		req("a", "123002", "Kevin Slot", domainLeave.TypeLeave, domainLeave.StatusPending, "2026-03-09", "2026-03-11", 0),
		req("b", "123010", "Jasper van Dijk", domainLeave.TypeADV, domainLeave.StatusApproved, "2026-03-10", "2026-03-10", 1),
		req("c", "123002", "Kevin Slot", domainLeave.TypeSick, domainLeave.StatusRejected, "2026-02-27", "2026-03-02", 2),
		req("d", "123010", "Jasper van Dijk", domainLeave.TypePersonal, domainLeave.StatusPending, "2026-04-01", "2026-04-01", 3),
	}}
}

func TestQueryGetRequestList(t *testing.T) {
	tests := []struct {
		status  string
		wantIDs []string
		active  string
	}{
		{"", []string{"d", "c", "b", "a"}, ""},
		{domainLeave.StatusPending, []string{"d", "a"}, domainLeave.StatusPending},
		{domainLeave.StatusApproved, []string{"b"}, domainLeave.StatusApproved},
		{"bogus", []string{"d", "c", "b", "a"}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			res, err := QueryGetRequestList(context.Background(), GetRequestListQuery{Status: tc.status}, GetRequestListDeps{RequestStore: sampleStore()})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var ids []string
			for _, r := range res.Requests {
				ids = append(ids, r.ID)
			}
			if len(ids) != len(tc.wantIDs) {
				t.Fatalf("ids = %v, want %v", ids, tc.wantIDs)
			}
			for i := range ids {
				if ids[i] != tc.wantIDs[i] {
					t.Fatalf("ids = %v, want %v", ids, tc.wantIDs)
				}
			}
			if len(res.Filters) != 4 || res.Filters[0].Count != 4 || res.Filters[1].Count != 2 {
				t.Errorf("filters = %+v", res.Filters)
			}
			for _, f := range res.Filters {
				if f.Active != (f.Value == tc.active) {
					t.Errorf("filter %q active = %v", f.Value, f.Active)
				}
			}
		})
	}
}

func TestQueryGetRequestList_SearchSortPage(t *testing.T) {
	tests := []struct {
		name      string
		list      listutil.Params
		wantIDs   []string
		wantPages int
	}{
		{"search by name", listutil.Params{Search: "kevin"}, []string{"c", "a"}, 1},
		{"search by number", listutil.Params{Search: "123010"}, []string{"d", "b"}, 1},
		{"search without match", listutil.Params{Search: "onbekend"}, nil, 1},
		{"sort by start date", listutil.Params{Sort: SortStart}, []string{"c", "a", "b", "d"}, 1},
		{"sort by name descending", listutil.Params{Sort: SortName, Desc: true}, []string{"a", "c", "b", "d"}, 1},
		{"second page", listutil.Params{Page: 2, PerPage: 2}, []string{"b", "a"}, 2},
		{"page past the end is clamped", listutil.Params{Page: 7, PerPage: 3}, []string{"a"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := QueryGetRequestList(context.Background(), GetRequestListQuery{List: tt.list}, GetRequestListDeps{RequestStore: sampleStore()})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var ids []string
			for _, r := range res.Requests {
				ids = append(ids, r.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
			if res.Page.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", res.Page.TotalPages, tt.wantPages)
			}
			if res.Filters[0].Count != 4 {
				t.Errorf("status counts should ignore the search, got %d", res.Filters[0].Count)
			}
		})
	}
}

func TestRequestView(t *testing.T) {
	res, _ := QueryGetRequestList(context.Background(), GetRequestListQuery{Status: domainLeave.StatusRejected}, GetRequestListDeps{RequestStore: sampleStore()})
	v := res.Requests[0]
	if v.Period != "27 februari 2026 - 2 maart 2026" {
		t.Errorf("Period = %q", v.Period)
	}
	if v.DaysText != "4 dagen" || v.Hours != 16 {
		t.Errorf("DaysText=%q Hours=%v", v.DaysText, v.Hours)
	}
	if v.TypeLabel != "Ziekte" || v.AdminTypeLabel != "Dokter/Tandarts" || v.StatusLabel != "Afgewezen" {
		t.Errorf("labels = %q %q %q", v.TypeLabel, v.AdminTypeLabel, v.StatusLabel)
	}
	if v.CreatedText != "1 maart 2026 10:00" || v.DecidedText != "1 maart 2026 11:00" {
		t.Errorf("CreatedText=%q DecidedText=%q", v.CreatedText, v.DecidedText)
	}
	if v.Pending {
		t.Error("rejected request is not pending")
	}
}

func TestQueryGetPendingRequests(t *testing.T) {
	res, err := QueryGetPendingRequests(context.Background(), GetPendingRequestsDeps{RequestStore: sampleStore()})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 2 || res.Requests[0].ID != "a" || res.CountText != "2 aanvragen in behandeling" {
		t.Errorf("result = %d %q first=%s", res.Count, res.CountText, res.Requests[0].ID)
	}

	res, _ = QueryGetPendingRequests(context.Background(), GetPendingRequestsDeps{RequestStore: &mockRequestStore{
		requests: sampleStore().requests[:1],
	}})
	if res.CountText != "1 aanvraag in behandeling" {
		t.Errorf("CountText = %q", res.CountText)
	}
}

func TestQueryGetCalendarMonth(t *testing.T) {
	res, err := QueryGetCalendarMonth(context.Background(), GetCalendarMonthQuery{
		Year: 2026, Month: time.March, Today: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
	}, GetCalendarMonthDeps{RequestStore: sampleStore()})
	if err != nil {
		t.Fatal(err)
	}
	if res.Title != "maart 2026" || res.Month != "2026-03" || res.Prev != "2026-02" || res.Next != "2026-04" {
		t.Errorf("navigation = %q %q %q %q", res.Title, res.Month, res.Prev, res.Next)
	}
	// 1 March 2026 is a Sunday.
	if res.Leading != 6 {
		t.Errorf("Leading = %d, want 6", res.Leading)
	}
	if len(res.Days) != 31 {
		t.Fatalf("Days = %d", len(res.Days))
	}
	day10 := res.Days[9]
	if !day10.IsToday || len(day10.Entries) != 2 || day10.More != 1 {
		t.Errorf("10 March = %+v", day10)
	}
	if day10.Entries[0].FirstName != "Kevin" || day10.Entries[0].DotColor != "bg-yellow-500" {
		t.Errorf("first entry = %+v", day10.Entries[0])
	}
	if len(res.Days[1].Entries) != 1 || res.Days[1].Entries[0].ID != "c" {
		t.Errorf("2 March should show the sick leave spilling over from February: %+v", res.Days[1])
	}
	if len(res.Days[2].Entries) != 0 {
		t.Errorf("3 March should be empty: %+v", res.Days[2])
	}
}

func TestQueryGetCalendarMonth_DecemberRollsOver(t *testing.T) {
	res, err := QueryGetCalendarMonth(context.Background(), GetCalendarMonthQuery{Year: 2026, Month: time.December}, GetCalendarMonthDeps{RequestStore: &mockRequestStore{}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Next != "2027-01" || res.Prev != "2026-11" || len(res.Days) != 31 {
		t.Errorf("Next=%s Prev=%s days=%d", res.Next, res.Prev, len(res.Days))
	}
}

func TestParseMonth(t *testing.T) {
	fallback := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	if y, m := ParseMonth("2025-12", fallback); y != 2025 || m != time.December {
		t.Errorf("ParseMonth = %d-%d", y, m)
	}
	if y, m := ParseMonth("december", fallback); y != 2026 || m != time.July {
		t.Errorf("fallback = %d-%d", y, m)
	}
}

func TestQueryGetAdvBalance(t *testing.T) {
	hours := req("h", "123010", "Jasper van Dijk", domainLeave.TypeADV, domainLeave.StatusPending, "2026-05-04", "2026-05-04", 4)
	hours.Duration = domainLeave.DurationHours
	hours.StartTime, hours.EndTime = "08:30", "12:00"

	store := sampleStore()
	store.requests = append(store.requests,
		hours,
		req("x", "123010", "Jasper van Dijk", domainLeave.TypeADV, domainLeave.StatusRejected, "2026-06-01", "2026-06-01", 5),
		req("y", "123010", "Jasper van Dijk", domainLeave.TypeADV, domainLeave.StatusApproved, "2025-12-31", "2026-01-02", 6),
		req("z", "123002", "Kevin Slot", domainLeave.TypeADV, domainLeave.StatusApproved, "2026-03-16", "2026-03-16", 7),
	)

	res, err := QueryGetAdvBalance(context.Background(), GetAdvBalanceQuery{EmployeeNumber: "123010", Year: 2026}, GetAdvBalanceDeps{RequestStore: store})
	if err != nil {
		t.Fatal(err)
	}
	// b: one weekday (8h); y: clipped to 1-2 January (16h); h: 3.5h pending.
	if res.Allowance != DefaultADVHours || res.Approved != 24 || res.Pending != 3.5 {
		t.Errorf("result = %+v", res)
	}
	if res.Remaining != 18-24-3.5 {
		t.Errorf("Remaining = %v", res.Remaining)
	}
}

func TestQueryGetAdminRequest(t *testing.T) {
	token := strings.Repeat("ab", domainLeave.TokenBytes)
	store := sampleStore()
	store.requests[1].AdminToken = token
	queue := mockOutboxStore{
		{ID: "o1", ActionType: domainOutbox.ActionEmail, RequestID: "b", Status: domainOutbox.StatusRetrying},
		{ID: "o2", ActionType: domainOutbox.ActionEmail, RequestID: "a", Status: domainOutbox.StatusPending},
	}
	deps := GetAdminRequestDeps{RequestStore: store, OutboxStore: queue, Links: notify.Links{BaseURL: "https://verlof.example"}}

	res, err := QueryGetAdminRequest(context.Background(), GetAdminRequestQuery{Token: token}, deps)
	if err != nil {
		t.Fatalf("QueryGetAdminRequest: %v", err)
	}
	if len(res.Queued) != 1 || res.Queued[0].ID != "o1" {
		t.Errorf("Queued = %+v, want only o1", res.Queued)
	}
	if res.Request.ID != "b" || res.Request.StatusLabel != "Goedgekeurd" {
		t.Fatalf("request = %+v", res.Request)
	}
	if res.ICSLink != "https://verlof.example/ics?token="+token {
		t.Errorf("ICSLink = %q", res.ICSLink)
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"malformed", "nope", domainLeave.ErrNotFound},
		{"unknown", strings.Repeat("cd", domainLeave.TokenBytes), domainLeave.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := QueryGetAdminRequest(context.Background(), GetAdminRequestQuery{Token: tc.token}, deps)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}
