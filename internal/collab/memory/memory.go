// internal/collab/memory/memory.go
//
// Collaborator backed by in-process tables. It powers demo mode and the
// engine tests: same contract as the live site, no network, deterministic
// seed data.

package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abakada/admissions-portal/internal/collab"
)

// Store is a mutex-guarded document store keyed by doctype and name.
type Store struct {
	mu     sync.Mutex
	tables map[string]map[string]collab.Record
	seq    int
	now    func() time.Time
	files  map[string][]byte
}

// Option customizes store construction.
type Option func(*Store)

// WithClock injects the time source behind creation timestamps and
// generated reference numbers.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		tables: map[string]map[string]collab.Record{},
		now:    time.Now,
		files:  map[string][]byte{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

var _ collab.Collaborator = (*Store)(nil)

// Put inserts or replaces a document under an explicit name. Seeding and
// tests use it to build fixtures.
func (s *Store) Put(doctype, name string, doc collab.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(doctype, name, doc)
}

func (s *Store) put(doctype, name string, doc collab.Record) {
	table := s.tables[doctype]
	if table == nil {
		table = map[string]collab.Record{}
		s.tables[doctype] = table
	}
	stored := doc.Clone()
	stored["name"] = name
	table[name] = stored
}

// List filters and orders a table. Supported filter ops are "=" (default)
// and "like" with SQL-style % wildcards, matching what the engines send.
func (s *Store) List(_ context.Context, doctype string, opts collab.ListOptions) ([]collab.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []collab.Record
	for _, doc := range s.tables[doctype] {
		if matchesFilters(doc, opts.Filters) {
			out = append(out, project(doc, opts.Fields))
		}
	}
	sortRecords(out, opts.OrderBy)
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// Get returns a full document copy.
func (s *Store) Get(_ context.Context, doctype, name string) (collab.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.tables[doctype][name]
	if !ok {
		return nil, collab.NewError(collab.KindNotFound, "get",
			fmt.Sprintf("%s %s does not exist", doctype, name), nil)
	}
	return doc.Clone(), nil
}

// Create stores a document under a generated reference number. The doctype
// rides inside the document, mirroring the live insert call.
func (s *Store) Create(_ context.Context, doc collab.Record) (string, error) {
	doctype := doc.Str("doctype")
	if doctype == "" {
		return "", collab.NewError(collab.KindServer, "insert", "document has no doctype", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	name := fmt.Sprintf("%s-%06d", s.now().Format("06"), s.seq)
	stored := doc.Clone()
	delete(stored, "doctype")
	stored["creation"] = s.now().Format("2006-01-02 15:04:05")
	stored["modified"] = stored["creation"]
	if stored.Str("application_date") == "" {
		stored["application_date"] = s.now().Format("2006-01-02")
	}
	s.put(doctype, name, stored)
	return name, nil
}

// SetField updates fields on an existing document.
func (s *Store) SetField(_ context.Context, doctype, name string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.tables[doctype][name]
	if !ok {
		return collab.NewError(collab.KindNotFound, "set_value",
			fmt.Sprintf("%s %s does not exist", doctype, name), nil)
	}
	for k, v := range fields {
		doc[k] = v
	}
	doc["modified"] = s.now().Format("2006-01-02 15:04:05")
	return nil
}

// Upload stores the file bytes and returns a private file URL. The document
// field itself is written by the caller's follow-up SetField, same as the
// live flow.
func (s *Store) Upload(_ context.Context, doctype, name, field, filename string, content []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[doctype][name]; !ok {
		return "", collab.NewError(collab.KindNotFound, "upload_file",
			fmt.Sprintf("%s %s does not exist", doctype, name), nil)
	}
	url := fmt.Sprintf("/private/files/%s-%s", uuid.NewString()[:8], filename)
	s.files[url] = append([]byte(nil), content...)
	return url, nil
}

// FileCount reports how many files have been stored.
func (s *Store) FileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Logout is a no-op; demo mode has no server session.
func (s *Store) Logout(context.Context) error { return nil }

func matchesFilters(doc collab.Record, filters []collab.Filter) bool {
	for _, f := range filters {
		got := doc.Str(f.Field)
		want := fmt.Sprintf("%v", f.Value)
		switch f.Op {
		case "", "=":
			if got != want {
				return false
			}
		case "like":
			needle := strings.ToLower(strings.Trim(want, "%"))
			if !strings.Contains(strings.ToLower(got), needle) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func project(doc collab.Record, fields []string) collab.Record {
	if len(fields) == 0 {
		return doc.Clone()
	}
	out := make(collab.Record, len(fields)+1)
	out["name"] = doc["name"]
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}

func sortRecords(recs []collab.Record, orderBy string) {
	field, desc := "name", false
	if orderBy != "" {
		parts := strings.Fields(orderBy)
		field = parts[0]
		desc = len(parts) > 1 && strings.EqualFold(parts[1], "desc")
	}
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].Str(field), recs[j].Str(field)
		if a == b {
			a, b = recs[i].Str("name"), recs[j].Str("name")
		}
		if desc {
			return a > b
		}
		return a < b
	})
}
