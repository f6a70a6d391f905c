package service

import (
	"testing"

	"github.com/harborline/freightdesk/internal/domain"
)

func TestKeyStrategies(t *testing.T) {
	tests := []struct {
		name    string
		module  domain.Module
		row     domain.RawRow
		wantKey string
		wantOK  bool
	}{
		{
			name:    "trucking container number",
			module:  domain.ModuleTrucking,
			row:     domain.RawRow{"container_number": "tcnu1234567"},
			wantKey: "TCNU1234567",
			wantOK:  true,
		},
		{
			name:    "trucking collapses whitespace",
			module:  domain.ModuleTrucking,
			row:     domain.RawRow{"container_number": "  tcnu  123  "},
			wantKey: "TCNU 123",
			wantOK:  true,
		},
		{
			name:   "trucking missing container number",
			module: domain.ModuleTrucking,
			row:    domain.RawRow{"carrier": "ACME Haulage"},
			wantOK: false,
		},
		{
			name:   "whitespace-only value yields no key",
			module: domain.ModuleTrucking,
			row:    domain.RawRow{"container_number": "   "},
			wantOK: false,
		},
		{
			name:    "shipchandler invoice number",
			module:  domain.ModuleShipchandler,
			row:     domain.RawRow{"invoice_number": "inv-001"},
			wantKey: "INV-001",
			wantOK:  true,
		},
		{
			name:    "agency order number",
			module:  domain.ModuleAgency,
			row:     domain.RawRow{"order_number": "ord 42"},
			wantKey: "ORD 42",
			wantOK:  true,
		},
		{
			name:   "agency numeric order number",
			module: domain.ModuleAgency,
			// JSON numbers arrive as float64; keys still form.
			row:     domain.RawRow{"order_number": float64(42)},
			wantKey: "42",
			wantOK:  true,
		},
		{
			name:   "maritime composite key",
			module: domain.ModuleMaritime,
			row: domain.RawRow{
				"vessel":       "mv aurora",
				"voyage":       "V-12",
				"crew_name":    "J. Silva",
				"service_date": "2026-03-01",
			},
			wantKey: "MV AURORA|V-12|J. SILVA|2026-03-01",
			wantOK:  true,
		},
		{
			name:   "maritime missing one part",
			module: domain.ModuleMaritime,
			row: domain.RawRow{
				"vessel":    "mv aurora",
				"voyage":    "V-12",
				"crew_name": "J. Silva",
			},
			wantOK: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key, ok := StrategyFor(tc.module).Key(tc.row)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && key != tc.wantKey {
				t.Fatalf("key = %q, want %q", key, tc.wantKey)
			}
		})
	}
}

func TestStrategyForUnknownModuleNeverKeys(t *testing.T) {
	if _, ok := StrategyFor(domain.Module("warehouse")).Key(domain.RawRow{"anything": "x"}); ok {
		t.Fatal("unknown modules must never derive a key")
	}
}

func TestShapePromotesReferenceAndKey(t *testing.T) {
	row := domain.RawRow{"container_number": "tcnu1234567", "carrier": "ACME Haulage"}
	rec := ShaperFor(domain.ModuleTrucking).Shape(row, "imp-1", "user-1")

	if rec.ID == "" {
		t.Fatal("shaped record must carry a generated ID")
	}
	if rec.Module != domain.ModuleTrucking {
		t.Fatalf("module = %s", rec.Module)
	}
	if rec.Reference != "tcnu1234567" {
		t.Fatalf("reference = %q, want the raw container number", rec.Reference)
	}
	if rec.DedupKey == nil || *rec.DedupKey != "TCNU1234567" {
		t.Fatalf("dedup key = %v, want normalized TCNU1234567", rec.DedupKey)
	}
	if rec.SourceID != "imp-1" || rec.CreatedBy != "user-1" {
		t.Fatalf("provenance = %q / %q", rec.SourceID, rec.CreatedBy)
	}
	if rec.Fields["carrier"] != "ACME Haulage" {
		t.Fatalf("fields not copied: %v", rec.Fields)
	}
}

func TestShapeWithoutKeyLeavesDedupKeyNil(t *testing.T) {
	rec := ShaperFor(domain.ModuleTrucking).Shape(domain.RawRow{"carrier": "ACME"}, "imp-1", "user-1")
	if rec.DedupKey != nil {
		t.Fatalf("dedup key = %q, want nil for keyless rows", *rec.DedupKey)
	}
}
