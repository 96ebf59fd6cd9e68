// internal/models/intent.go
package models

// NoneSentinel is the extraction service's marker for "parameter not supplied
// by the speaker". It is distinct from a present empty value, but both are
// treated as absent by Param.
const NoneSentinel = "none"

// IntentRecord is the normalized structured output of intent extraction: a
// module identifier plus named parameters. It is immutable once produced and
// consumed exactly once by the dispatcher.
type IntentRecord struct {
	module ModuleID
	params map[string]string
}

// NewIntentRecord builds an IntentRecord. The params map is copied; sentinel
// values are kept verbatim and folded into absence at read time.
func NewIntentRecord(module ModuleID, params map[string]string) IntentRecord {
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return IntentRecord{module: module, params: copied}
}

// Module returns the raw module identifier as extracted.
func (r IntentRecord) Module() ModuleID {
	return r.module
}

// Param returns the named parameter value. Absent keys and the none sentinel
// both report ok=false, so handlers never see the sentinel.
func (r IntentRecord) Param(name string) (string, bool) {
	v, ok := r.params[name]
	if !ok || v == "" || v == NoneSentinel {
		return "", false
	}
	return v, true
}

// Params returns a copy of the raw parameter map, sentinel values included.
func (r IntentRecord) Params() map[string]string {
	out := make(map[string]string, len(r.params))
	for k, v := range r.params {
		out[k] = v
	}
	return out
}
