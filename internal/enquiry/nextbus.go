// internal/enquiry/nextbus.go
package enquiry

import (
	"bus-enquiry-engine/internal/enquiry/query"
	"bus-enquiry-engine/internal/models"
)

// Next bus from source to destination, earliest departures first. Bus type
// and service number narrow the match when the speaker supplied them.

const nextBusBase = `SELECT s.schedule_id, s.departure_time, b.registration, b.type, r.name, src.city AS source_city, dst.city AS destination_city FROM schedules s JOIN routes r ON s.route_id = r.route_id JOIN buses b ON s.bus_id = b.bus_id JOIN stops src ON r.source_stop_id = src.stop_id JOIN stops dst ON r.destination_stop_id = dst.stop_id`

var nextBusTmpl = mustTemplate("next_bus",
	"{{.source_city}} నుండి {{.dest_city}} కి వెళ్ళే {{.bus_type}} బస్సు ({{.bus_reg}}) బయలుదేరే సమయం {{.departure_time}}. ")

func nextBusSpec() *moduleSpec {
	return &moduleSpec{
		id:          models.ModuleNextBus,
		required:    []string{models.ParamSourceCity, models.ParamDestinationCity},
		baseFilters: 2,
		build:       buildNextBus,
		shape: rowShape{
			columns:   []string{"schedule_id", "departure_time", "bus_reg", "bus_type", "route_name", "source_city", "dest_city"},
			durations: []int{1},
		},
		order: &ordering{column: 1},
		tmpl:  nextBusTmpl,
	}
}

func buildNextBus(p params) (*query.Query, []warning) {
	q := query.New(nextBusBase).
		Where("src.city = ?", p[models.ParamSourceCity]).
		Where("dst.city = ?", p[models.ParamDestinationCity]).
		OrderBy("s.departure_time ASC")

	if v, ok := p.get(models.ParamBusType); ok {
		q.Where("b.type = ?", v)
	}
	if v, ok := p.get(models.ParamServiceNumber); ok {
		q.Where("b.registration = ?", v)
	}

	return q, nil
}
