package admission

import (
	"context"
	"fmt"

	"github.com/abakada/admissions-portal/internal/collab"
)

// Option is a code + display-text pair backing a dropdown. Address levels
// and referral agents resolve to their display text on the review step and
// in the submitted payload.
type Option struct {
	Code    string
	Display string
}

// Catalog holds the dropdown data the wizard loads up front.
type Catalog struct {
	Programs []string
	Agents   []Option
}

// LoadCatalog fetches the program and referral-agent lists. A missing agent
// catalog is not fatal; the manual-entry option always remains available.
func LoadCatalog(ctx context.Context, c collab.Collaborator) (Catalog, error) {
	var cat Catalog

	programs, err := c.List(ctx, DoctypeProgram, collab.ListOptions{
		Fields: []string{"program_name"},
	})
	if err != nil {
		return cat, fmt.Errorf("load program catalog: %w", err)
	}
	for _, rec := range programs {
		if name := rec.Str("program_name"); name != "" {
			cat.Programs = append(cat.Programs, name)
		}
	}

	agents, err := c.List(ctx, DoctypeAgent, collab.ListOptions{
		Fields: []string{"name", "partner_name"},
	})
	if err == nil {
		for _, rec := range agents {
			display := rec.Str("partner_name")
			if display == "" {
				display = rec.Str("name")
			}
			cat.Agents = append(cat.Agents, Option{Code: rec.Str("name"), Display: display})
		}
	}
	cat.Agents = append(cat.Agents, Option{Code: ManualAgent, Display: "My Agent is not in the list"})
	return cat, nil
}

// AddressLevel describes one tier of the cascading address dropdowns.
type AddressLevel struct {
	Doctype      string
	DisplayField string
	ParentField  string
}

// The four address tiers, outermost first. Each tier below the region is
// filtered by the code chosen one tier up.
var (
	LevelRegion   = AddressLevel{Doctype: "Region", DisplayField: "region_name"}
	LevelProvince = AddressLevel{Doctype: "Province", DisplayField: "province_name", ParentField: "region"}
	LevelCity     = AddressLevel{Doctype: "City", DisplayField: "city_name", ParentField: "province"}
	LevelBarangay = AddressLevel{Doctype: "Barangay", DisplayField: "barangay_name", ParentField: "city"}
)

// LoadAddressOptions fetches one address tier, restricted to the selected
// parent code where the tier has one.
func LoadAddressOptions(ctx context.Context, c collab.Collaborator, level AddressLevel, parentCode string) ([]Option, error) {
	opts := collab.ListOptions{Fields: []string{"name", level.DisplayField}}
	if level.ParentField != "" && parentCode != "" {
		opts.Filters = append(opts.Filters, collab.Filter{Field: level.ParentField, Value: parentCode})
	}
	recs, err := c.List(ctx, level.Doctype, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s options: %w", level.Doctype, err)
	}
	options := make([]Option, 0, len(recs))
	for _, rec := range recs {
		display := rec.Str(level.DisplayField)
		if display == "" {
			display = rec.Str("name")
		}
		options = append(options, Option{Code: rec.Str("name"), Display: display})
	}
	return options, nil
}

// HasProgram reports whether name matches a catalog entry exactly.
func (c Catalog) HasProgram(name string) bool {
	for _, p := range c.Programs {
		if p == name {
			return true
		}
	}
	return false
}

// AgentDisplay resolves an agent code to its display text, falling back to
// the code itself for unknown values.
func (c Catalog) AgentDisplay(code string) string {
	for _, opt := range c.Agents {
		if opt.Code == code {
			return opt.Display
		}
	}
	return code
}

// ResolveOption resolves a code against a dropdown's options, falling back
// to the raw code so stale drafts still render.
func ResolveOption(options []Option, code string) string {
	for _, opt := range options {
		if opt.Code == code {
			return opt.Display
		}
	}
	return code
}
