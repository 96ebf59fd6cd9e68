// internal/enquiry/registry.go
package enquiry

import (
	"text/template"

	"bus-enquiry-engine/internal/enquiry/query"
	"bus-enquiry-engine/internal/models"
)

// params holds one dispatch's resolved parameters: defaults applied, required
// fields verified, none sentinels already folded out.
type params map[string]string

func (p params) get(name string) (string, bool) {
	v, ok := p[name]
	return v, ok && v != ""
}

// warning records an optional filter value that was dropped instead of
// aborting the enquiry.
type warning struct {
	Param  string
	Value  string
	Reason string
}

// ordering is the module-fixed result order, applied as a stable sort on the
// normalized order column; ties keep store row order.
type ordering struct {
	column     int
	descending bool
}

type buildFunc func(p params) (*query.Query, []warning)

// moduleSpec is the static descriptor for one enquiry module: parameter
// schema, query builder, positional row shape, and either a sentence
// template or the pricing path. The full set is fixed at process start.
type moduleSpec struct {
	id models.ModuleID

	required []string
	// sourceDefaultsToHome marks modules whose contract supplies the kiosk's
	// home terminal city when the speaker named no source.
	sourceDefaultsToHome bool

	// baseFilters is the number of unconditional filters the module always
	// applies, independent of which optional parameters were spoken.
	baseFilters int

	build buildFunc
	shape rowShape
	order *ordering

	tmpl  *template.Template // nil for modules that do not speak sentences
	price bool               // luggage: run the pricing calculator per row
	stub  bool               // declared but not yet backed by a query
}

// newRegistry assembles the nine module descriptors. Read-only after this.
func newRegistry() map[models.ModuleID]*moduleSpec {
	specs := []*moduleSpec{
		nextBusSpec(),
		lastBusSpec(),
		fareSpec(),
		platformSpec(),
		seatAvailabilitySpec(),
		luggageSpec(),
		busStatusSpec(),
		multiCitySpec(),
		specialServiceSpec(),
	}

	registry := make(map[models.ModuleID]*moduleSpec, len(specs))
	for _, s := range specs {
		registry[s.id] = s
	}
	return registry
}
