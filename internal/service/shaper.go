package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/harborline/freightdesk/internal/domain"
)

// RowShaper transforms a raw input row into the record store's persisted
// layout. Shaping does not validate business content; it only maps fields
// and attaches provenance.
type RowShaper interface {
	Shape(row domain.RawRow, sourceID, ownerID string) *domain.Record
}

// ShaperFor returns the row shaper for a module.
func ShaperFor(module domain.Module) RowShaper {
	switch module {
	case domain.ModuleMaritime:
		return moduleShaper{module: module, referenceField: "voyage"}
	case domain.ModuleTrucking:
		return moduleShaper{module: module, referenceField: "container_number"}
	case domain.ModuleShipchandler:
		return moduleShaper{module: module, referenceField: "invoice_number"}
	case domain.ModuleAgency:
		return moduleShaper{module: module, referenceField: "order_number"}
	default:
		return moduleShaper{module: module}
	}
}

// moduleShaper copies the raw fields into the persisted layout and
// promotes the module's primary document number into Reference.
type moduleShaper struct {
	module         domain.Module
	referenceField string
}

func (s moduleShaper) Shape(row domain.RawRow, sourceID, ownerID string) *domain.Record {
	fields := make(domain.FieldMap, len(row))
	for k, v := range row {
		fields[k] = v
	}

	rec := &domain.Record{
		ID:        uuid.NewString(),
		Module:    s.module,
		Reference: row.Field(s.referenceField),
		Fields:    fields,
		SourceID:  sourceID,
		CreatedBy: ownerID,
		CreatedAt: time.Now().UTC(),
	}

	if key, ok := StrategyFor(s.module).Key(row); ok {
		rec.DedupKey = &key
	}
	return rec
}
