package dashboard

import (
	"testing"
	"time"

	"github.com/abakada/admissions-portal/internal/admission"
)

func metricsEngine(scope Scope, user string, apps []admission.Application) *Engine {
	e := New(nil, scope, user, WithClock(func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	}))
	e.apps = apps
	return e
}

func TestMetricsCountsBlankStatusAsPending(t *testing.T) {
	apps := []admission.Application{
		{Status: admission.StatusPending},
		{Status: ""},
		{Status: admission.StatusApproved},
		{Status: admission.StatusRejected},
	}
	m := metricsEngine(ScopeHead, "head@example.com", apps).Metrics()
	if m.Total != 4 || m.Pending != 2 || m.Approved != 1 || m.Rejected != 1 {
		t.Fatalf("metrics = %+v", m)
	}
}

func TestMetricsAssignmentsDependOnScope(t *testing.T) {
	apps := []admission.Application{
		{AssignedStaff: ""},
		{AssignedStaff: ""},
		{AssignedStaff: "staff@example.com"},
		{AssignedStaff: "other@example.com"},
	}

	head := metricsEngine(ScopeHead, "head@example.com", apps).Metrics()
	if head.Assignments != 2 {
		t.Fatalf("head counts unassigned, got %d", head.Assignments)
	}

	staff := metricsEngine(ScopeStaff, "staff@example.com", apps).Metrics()
	if staff.Assignments != 1 {
		t.Fatalf("staff counts own assignments, got %d", staff.Assignments)
	}
}

func TestMetricsRecentWindow(t *testing.T) {
	apps := []admission.Application{
		{Creation: "2024-02-28 09:00:00"},          // inside the 30-day window
		{Creation: "2024-02-15 09:00:00.123456"},   // fractional seconds on the wire
		{Creation: "2023-12-01 09:00:00"},          // too old
		{Creation: "2024-02-20"},                   // date-only form
		{Creation: "not a timestamp"},
	}
	m := metricsEngine(ScopeHead, "head@example.com", apps).Metrics()
	if m.Recent != 3 {
		t.Fatalf("recent = %d, want 3", m.Recent)
	}
}

func TestApprovalRate(t *testing.T) {
	if got := (Metrics{Approved: 3, Rejected: 1}).ApprovalRate(); got != 75 {
		t.Fatalf("rate = %v, want 75", got)
	}
	if got := (Metrics{Pending: 5}).ApprovalRate(); got != 0 {
		t.Fatalf("undecided pool should rate 0, got %v", got)
	}
}
