package service

import (
	"strings"

	"github.com/harborline/freightdesk/internal/domain"
)

// KeyStrategy derives the natural dedup key for a raw row. Strategies are
// pure and total: a row missing the fields needed to form a key yields
// ok=false, and such rows are never treated as duplicates.
type KeyStrategy interface {
	// Key returns the dedup key for a row, or ok=false when the row
	// cannot produce one.
	Key(row domain.RawRow) (key string, ok bool)
}

// StrategyFor returns the dedup key strategy for a module.
func StrategyFor(module domain.Module) KeyStrategy {
	switch module {
	case domain.ModuleTrucking:
		return truckingStrategy{}
	case domain.ModuleShipchandler:
		return shipchandlerStrategy{}
	case domain.ModuleAgency:
		return agencyStrategy{}
	case domain.ModuleMaritime:
		return maritimeStrategy{}
	default:
		return nullStrategy{}
	}
}

// normalizeKey trims, collapses internal whitespace, and uppercases a key
// fragment so formatting differences between imports do not defeat
// deduplication.
func normalizeKey(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// truckingStrategy keys trucking rows on the container number.
type truckingStrategy struct{}

func (truckingStrategy) Key(row domain.RawRow) (string, bool) {
	k := normalizeKey(row.Field("container_number"))
	if k == "" {
		return "", false
	}
	return k, true
}

// shipchandlerStrategy keys shipchandler rows on the invoice number.
type shipchandlerStrategy struct{}

func (shipchandlerStrategy) Key(row domain.RawRow) (string, bool) {
	k := normalizeKey(row.Field("invoice_number"))
	if k == "" {
		return "", false
	}
	return k, true
}

// agencyStrategy keys agency rows on the order number.
type agencyStrategy struct{}

func (agencyStrategy) Key(row domain.RawRow) (string, bool) {
	k := normalizeKey(row.Field("order_number"))
	if k == "" {
		return "", false
	}
	return k, true
}

// maritimeStrategy keys maritime rows on the vessel, voyage, crew member,
// and service date together. All four parts are required.
type maritimeStrategy struct{}

func (maritimeStrategy) Key(row domain.RawRow) (string, bool) {
	parts := []string{
		normalizeKey(row.Field("vessel")),
		normalizeKey(row.Field("voyage")),
		normalizeKey(row.Field("crew_name")),
		normalizeKey(row.Field("service_date")),
	}
	for _, p := range parts {
		if p == "" {
			return "", false
		}
	}
	return strings.Join(parts, "|"), true
}

// nullStrategy never produces a key. Used for unknown modules, which are
// rejected at submission anyway.
type nullStrategy struct{}

func (nullStrategy) Key(domain.RawRow) (string, bool) {
	return "", false
}
