// internal/enquiry/multicity.go
package enquiry

import (
	"bus-enquiry-engine/internal/enquiry/query"
	"bus-enquiry-engine/internal/models"
)

// Services from source to destination that pass through an intermediate
// city. Route names list the cities on the way, so the via filter is a
// substring match on the route name.

const multiCityBase = `SELECT s.departure_time, b.registration, b.type, r.name, src.city AS source_city, dst.city AS destination_city FROM schedules s JOIN buses b ON s.bus_id = b.bus_id JOIN routes r ON s.route_id = r.route_id JOIN stops src ON r.source_stop_id = src.stop_id JOIN stops dst ON r.destination_stop_id = dst.stop_id`

var multiCityTmpl = mustTemplate("multi_city",
	"{{.source_city}} నుండి {{.dest_city}} కి వెళ్ళే {{.bus_type}} బస్సు ({{.bus_reg}}) బయలుదేరే సమయం {{.departure_time}}. ")

func multiCitySpec() *moduleSpec {
	return &moduleSpec{
		id:          models.ModuleMultiCity,
		required:    []string{models.ParamSourceCity, models.ParamDestinationCity},
		baseFilters: 2,
		build:       buildMultiCity,
		shape: rowShape{
			columns:   []string{"departure_time", "bus_reg", "bus_type", "route_name", "source_city", "dest_city"},
			durations: []int{0},
		},
		order: &ordering{column: 0},
		tmpl:  multiCityTmpl,
	}
}

func buildMultiCity(p params) (*query.Query, []warning) {
	q := query.New(multiCityBase).
		Where("src.city = ?", p[models.ParamSourceCity]).
		Where("dst.city = ?", p[models.ParamDestinationCity]).
		OrderBy("s.departure_time ASC")

	if v, ok := p.get(models.ParamIntermediateCity); ok {
		q.Where("r.name LIKE ?", "%"+v+"%")
	}
	if v, ok := p.get(models.ParamBusType); ok {
		q.Where("b.type = ?", v)
	}

	return q, nil
}
