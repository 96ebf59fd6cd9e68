// internal/enquiry/platform.go
package enquiry

import (
	"bus-enquiry-engine/internal/enquiry/query"
	"bus-enquiry-engine/internal/models"
)

// Departure platform at the source terminal. Destination narrows the match;
// Bus_Number and Service_Number both name the registration plate, and both
// filters are appended when both were spoken.

const platformBase = `SELECT s.departure_time, b.registration, b.type, src.platform_number, r.name, src.city AS source_city, dst.city AS destination_city FROM schedules s JOIN buses b ON s.bus_id = b.bus_id JOIN routes r ON s.route_id = r.route_id JOIN stops src ON r.source_stop_id = src.stop_id JOIN stops dst ON r.destination_stop_id = dst.stop_id`

var platformTmpl = mustTemplate("platform",
	"{{.source_city}} నుండి {{.dest_city}} కి వెళ్ళే {{.bus_type}} బస్సు ({{.bus_reg}}) {{.platform_number}}వ ప్లాట్ఫారంలో ఆగుతుంది. ")

func platformSpec() *moduleSpec {
	return &moduleSpec{
		id:          models.ModulePlatform,
		required:    []string{models.ParamSourceCity},
		baseFilters: 1,
		build:       buildPlatform,
		shape: rowShape{
			columns:   []string{"departure_time", "bus_reg", "bus_type", "platform_number", "route_name", "source_city", "dest_city"},
			durations: []int{0},
		},
		order: &ordering{column: 0},
		tmpl:  platformTmpl,
	}
}

func buildPlatform(p params) (*query.Query, []warning) {
	q := query.New(platformBase).
		Where("src.city = ?", p[models.ParamSourceCity]).
		OrderBy("s.departure_time ASC")

	if v, ok := p.get(models.ParamDestinationCity); ok {
		q.Where("dst.city = ?", v)
	}
	if v, ok := p.get(models.ParamBusNumber); ok {
		q.Where("b.registration = ?", v)
	}
	if v, ok := p.get(models.ParamServiceNumber); ok {
		q.Where("b.registration = ?", v)
	}

	return q, nil
}
