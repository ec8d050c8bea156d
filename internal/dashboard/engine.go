// internal/dashboard/engine.go
//
// The dashboard engine backs the staff and head consoles: it loads the
// applicant list through the collaborator, filters and pages it client-side,
// and performs the assignment and status mutations. Rendering is left to the
// views; everything here is plain state transitions.

package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abakada/admissions-portal/internal/admission"
	"github.com/abakada/admissions-portal/internal/collab"
	"github.com/abakada/admissions-portal/internal/logbook"
)

// Scope selects how much of the applicant pool a session sees.
type Scope int

const (
	// ScopeStaff sees only applications assigned to the session user.
	ScopeStaff Scope = iota
	// ScopeHead sees everything and may assign applications to staff.
	ScopeHead
)

// Title returns the console heading for a scope.
func (s Scope) Title() string {
	if s == ScopeHead {
		return "Admission Head Control Panel"
	}
	return "Admission Staff Dashboard"
}

// DefaultPageSize is the table page length.
const DefaultPageSize = 10

// listLimit caps the server fetch; filtering and paging happen client-side.
const listLimit = 999

// StaffMember is one assignable staff user.
type StaffMember struct {
	Email    string
	FullName string
}

// Option customizes engine construction.
type Option func(*Engine)

// WithClock injects the time source used by the metrics window.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogbook attaches a session log.
func WithLogbook(log *logbook.Logbook) Option {
	return func(e *Engine) { e.log = log }
}

// WithPageSize overrides the table page length.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.perPage = n
		}
	}
}

// Engine holds all dashboard state for one session.
type Engine struct {
	collab collab.Collaborator
	log    *logbook.Logbook
	now    func() time.Time

	scope Scope
	user  string

	apps     []admission.Application
	filtered []admission.Application
	search   string
	status   admission.Status
	page     int
	perPage  int

	staff []StaffMember
}

// New creates a dashboard engine for the given session user.
func New(c collab.Collaborator, scope Scope, user string, opts ...Option) *Engine {
	e := &Engine{
		collab:  c,
		now:     time.Now,
		scope:   scope,
		user:    user,
		page:    1,
		perPage: DefaultPageSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Scope returns the session scope.
func (e *Engine) Scope() Scope { return e.scope }

// User returns the session user's email.
func (e *Engine) User() string { return e.user }

// Load refetches the applicant list, newest first. Staff sessions fetch only
// their own assignments. On failure the previously loaded data is kept so
// the table does not blank out under a flaky connection.
func (e *Engine) Load(ctx context.Context) error {
	opts := collab.ListOptions{
		Fields:  admission.ListFields,
		Limit:   listLimit,
		OrderBy: "creation desc",
	}
	if e.scope == ScopeStaff {
		opts.Filters = append(opts.Filters, collab.Filter{Field: "assigned_staff", Value: e.user})
	}

	recs, err := e.collab.List(ctx, admission.DoctypeApplicant, opts)
	if err != nil {
		if e.log != nil {
			e.log.Error("application list load failed: %v", err)
		}
		return fmt.Errorf("load applications: %w", err)
	}

	apps := make([]admission.Application, 0, len(recs))
	for _, rec := range recs {
		apps = append(apps, admission.FromRecord(rec))
	}
	e.apps = apps
	e.applyFilter()
	if e.log != nil {
		e.log.Info("loaded %d applications", len(apps))
	}
	return nil
}

// SetSearch updates the free-text filter and resets to the first page.
func (e *Engine) SetSearch(q string) {
	e.search = q
	e.page = 1
	e.applyFilter()
}

// Search returns the active free-text filter.
func (e *Engine) Search() string { return e.search }

// SetStatusFilter restricts the table to one status; the zero value shows
// all. It resets to the first page.
func (e *Engine) SetStatusFilter(s admission.Status) {
	e.status = s
	e.page = 1
	e.applyFilter()
}

// StatusFilter returns the active status restriction.
func (e *Engine) StatusFilter() admission.Status { return e.status }

// applyFilter intersects the text and status filters over the loaded list
// and clamps the current page to the new total.
func (e *Engine) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(e.search))
	e.filtered = e.filtered[:0]
	for _, app := range e.apps {
		if e.status != "" && app.Status != e.status {
			continue
		}
		if q != "" && !matches(app, q) {
			continue
		}
		e.filtered = append(e.filtered, app)
	}
	e.clampPage()
}

func matches(app admission.Application, q string) bool {
	for _, field := range []string{
		app.Name, app.FirstName, app.MiddleName, app.LastName,
		app.FullName(), app.Program, app.Email, app.Category,
	} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Applications returns the filtered list.
func (e *Engine) Applications() []admission.Application { return e.filtered }

// TotalPages returns the page count, never less than one.
func (e *Engine) TotalPages() int {
	pages := (len(e.filtered) + e.perPage - 1) / e.perPage
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Page returns the current 1-based page.
func (e *Engine) Page() int { return e.page }

// PageSize returns the table page length.
func (e *Engine) PageSize() int { return e.perPage }

// SetPage jumps to a page, clamping to the valid range.
func (e *Engine) SetPage(p int) {
	e.page = p
	e.clampPage()
}

// NextPage advances one page when possible.
func (e *Engine) NextPage() { e.SetPage(e.page + 1) }

// PrevPage steps back one page when possible.
func (e *Engine) PrevPage() { e.SetPage(e.page - 1) }

func (e *Engine) clampPage() {
	if e.page < 1 {
		e.page = 1
	}
	if max := e.TotalPages(); e.page > max {
		e.page = max
	}
}

// PageSlice returns the rows of the current page.
func (e *Engine) PageSlice() []admission.Application {
	start := (e.page - 1) * e.perPage
	if start >= len(e.filtered) {
		return nil
	}
	end := start + e.perPage
	if end > len(e.filtered) {
		end = len(e.filtered)
	}
	return e.filtered[start:end]
}

// Detail fetches the full record behind one table row, child tables
// included.
func (e *Engine) Detail(ctx context.Context, name string) (admission.Application, error) {
	rec, err := e.collab.Get(ctx, admission.DoctypeApplicant, name)
	if err != nil {
		return admission.Application{}, fmt.Errorf("load application %s: %w", name, err)
	}
	return admission.FromRecord(rec), nil
}

// LoadStaff fetches the assignable staff users. Head sessions call this
// before opening the assignment picker.
func (e *Engine) LoadStaff(ctx context.Context) error {
	recs, err := e.collab.List(ctx, admission.DoctypeUser, collab.ListOptions{
		Fields:  []string{"name", "full_name"},
		Filters: []collab.Filter{{Field: "role", Value: "Admission Staff"}},
	})
	if err != nil {
		return fmt.Errorf("load staff list: %w", err)
	}
	staff := make([]StaffMember, 0, len(recs))
	for _, rec := range recs {
		m := StaffMember{Email: rec.Str("name"), FullName: rec.Str("full_name")}
		if m.FullName == "" {
			m.FullName = m.Email
		}
		staff = append(staff, m)
	}
	e.staff = staff
	return nil
}

// Staff returns the loaded staff list.
func (e *Engine) Staff() []StaffMember { return e.staff }

// Assign hands an application to a staff member. Both the staff email and
// the display name are written in one call, then the list is reloaded so
// every projection reflects the server's view.
func (e *Engine) Assign(ctx context.Context, appName string, member StaffMember) error {
	if e.scope != ScopeHead {
		return fmt.Errorf("only the admission head can assign applications")
	}
	err := e.collab.SetField(ctx, admission.DoctypeApplicant, appName, map[string]any{
		"assigned_staff": member.Email,
		"agent":          member.FullName,
	})
	if err != nil {
		if e.log != nil {
			e.log.Error("assign %s to %s failed: %v", appName, member.Email, err)
		}
		return fmt.Errorf("assign application: %w", err)
	}
	if e.log != nil {
		e.log.Info("assigned %s to %s", appName, member.Email)
	}
	return e.Load(ctx)
}

// CanSetStatus reports whether the session may change an application's
// status: heads always, staff only on their own assignments.
func (e *Engine) CanSetStatus(app admission.Application) bool {
	if e.scope == ScopeHead {
		return true
	}
	return app.AssignedStaff == e.user
}

// SetStatus writes a new approval status and reloads the list. Setting the
// status an application already has is allowed and harmless.
func (e *Engine) SetStatus(ctx context.Context, appName string, status admission.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	err := e.collab.SetField(ctx, admission.DoctypeApplicant, appName, map[string]any{
		"application_status": string(status),
	})
	if err != nil {
		if e.log != nil {
			e.log.Error("status update for %s failed: %v", appName, err)
		}
		return fmt.Errorf("update status: %w", err)
	}
	if e.log != nil {
		e.log.Info("application %s marked %s", appName, status)
	}
	return e.Load(ctx)
}

// Logout ends the server session.
func (e *Engine) Logout(ctx context.Context) error {
	if err := e.collab.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if e.log != nil {
		e.log.Info("session for %s ended", e.user)
	}
	return nil
}
