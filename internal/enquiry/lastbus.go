// internal/enquiry/lastbus.go
package enquiry

import (
	"time"

	"bus-enquiry-engine/internal/enquiry/query"
	"bus-enquiry-engine/internal/models"
)

// Last bus of the day, latest departures first. The latest-departure-before
// bound is the one filter that parses user text: a malformed time drops the
// filter with a warning instead of failing the enquiry.

const lastBusBase = `SELECT s.departure_time, b.registration, b.type, r.name, src.city AS source_city, dst.city AS destination_city FROM schedules s JOIN buses b ON s.bus_id = b.bus_id JOIN routes r ON s.route_id = r.route_id JOIN stops src ON r.source_stop_id = src.stop_id JOIN stops dst ON r.destination_stop_id = dst.stop_id`

var lastBusTmpl = mustTemplate("last_bus",
	"{{.source_city}} నుండి {{.dest_city}} కి వెళ్ళే {{.bus_type}} బస్సు ({{.bus_reg}}) బయలుదేరే సమయం {{.departure_time}}. ")

func lastBusSpec() *moduleSpec {
	return &moduleSpec{
		id:          models.ModuleLastBus,
		required:    []string{models.ParamSourceCity, models.ParamDestinationCity},
		baseFilters: 2,
		build:       buildLastBus,
		shape: rowShape{
			columns:   []string{"departure_time", "bus_reg", "bus_type", "route_name", "source_city", "dest_city"},
			durations: []int{0},
		},
		order: &ordering{column: 0, descending: true},
		tmpl:  lastBusTmpl,
	}
}

func buildLastBus(p params) (*query.Query, []warning) {
	var warnings []warning

	q := query.New(lastBusBase).
		Where("src.city = ?", p[models.ParamSourceCity]).
		Where("dst.city = ?", p[models.ParamDestinationCity]).
		OrderBy("s.departure_time DESC")

	if v, ok := p.get(models.ParamBusType); ok {
		q.Where("b.type = ?", v)
	}
	if v, ok := p.get(models.ParamServiceNumber); ok {
		q.Where("b.registration = ?", v)
	}
	if v, ok := p.get(models.ParamLastDepartureTime); ok {
		if hhmm, err := parseClock(v); err == nil {
			q.Where("s.departure_time <= ?", hhmm)
		} else {
			warnings = append(warnings, warning{
				Param:  models.ParamLastDepartureTime,
				Value:  v,
				Reason: "expected HH:MM",
			})
		}
	}

	return q, warnings
}

// parseClock validates an HH:MM time of day and canonicalizes the padding.
func parseClock(v string) (string, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return "", err
	}
	return t.Format("15:04"), nil
}
