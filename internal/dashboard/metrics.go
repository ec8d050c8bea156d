package dashboard

import (
	"time"

	"github.com/abakada/admissions-portal/internal/admission"
)

// Metrics are the headline counters above the table. Assignments means
// "unassigned applications" for the head and "applications assigned to me"
// for staff, matching what each role acts on next.
type Metrics struct {
	Total       int
	Pending     int
	Approved    int
	Rejected    int
	Assignments int
	Recent      int
}

// metricsWindow is how far back the recent-applications counter looks.
const metricsWindow = 30 * 24 * time.Hour

// Metrics recomputes the counters over the full loaded list, ignoring the
// active filters so the numbers describe the whole pool.
func (e *Engine) Metrics() Metrics {
	var m Metrics
	cutoff := e.now().Add(-metricsWindow)
	for _, app := range e.apps {
		m.Total++
		switch app.Status {
		case admission.StatusApproved:
			m.Approved++
		case admission.StatusRejected:
			m.Rejected++
		default:
			// A blank status counts as pending, same as the list badge.
			m.Pending++
		}
		if e.scope == ScopeHead {
			if app.AssignedStaff == "" {
				m.Assignments++
			}
		} else if app.AssignedStaff == e.user {
			m.Assignments++
		}
		if t, err := time.Parse("2006-01-02 15:04:05", firstField(app.Creation, 19)); err == nil && t.After(cutoff) {
			m.Recent++
		} else if d, err := time.Parse(admission.DateLayout, app.Creation); err == nil && d.After(cutoff) {
			m.Recent++
		}
	}
	return m
}

// ApprovalRate returns decided-approved as a percentage of all decided
// applications, zero when nothing has been decided yet.
func (m Metrics) ApprovalRate() float64 {
	decided := m.Approved + m.Rejected
	if decided == 0 {
		return 0
	}
	return float64(m.Approved) / float64(decided) * 100
}

// firstField trims a wire timestamp to at most n bytes so fractional-second
// suffixes do not break parsing.
func firstField(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
