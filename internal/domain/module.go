package domain

import (
	"fmt"
	"strings"
)

// Module identifies one of the invoicing domains served by the ingestion
// engine. The module fixes which dedup key strategy and row shaper apply.
type Module string

const (
	ModuleTrucking     Module = "trucking"
	ModuleShipchandler Module = "shipchandler"
	ModuleAgency       Module = "agency"
	ModuleMaritime     Module = "maritime"
)

// Modules lists every supported module.
var Modules = []Module{ModuleTrucking, ModuleShipchandler, ModuleAgency, ModuleMaritime}

// ParseModule normalizes and validates a module name.
// Parameters:
//   - s: raw module name from the request.
// Returns:
//   - Module: parsed module value.
//   - error: ErrInvalidRequest-wrapped error for unknown modules.
func ParseModule(s string) (Module, error) {
	m := Module(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modules {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown module %q", ErrInvalidRequest, s)
}

// RawRow is a caller-supplied, untyped, module-specific input row.
type RawRow map[string]interface{}

// Field returns the trimmed string value of a raw row field.
// Non-string and missing values yield the empty string.
func (r RawRow) Field(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprintf("%v", v)
	}
	return strings.TrimSpace(s)
}
