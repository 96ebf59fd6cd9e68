// internal/enquiry/fare.go
package enquiry

import (
	"bus-enquiry-engine/internal/enquiry/query"
	"bus-enquiry-engine/internal/models"
)

// Fare between two cities. No optional filters; every scheduled service on
// the route is quoted.

const fareBase = `SELECT f.amount, f.currency, b.type, b.registration, s.departure_time, r.name, src.city AS source_city, dst.city AS destination_city FROM fares f JOIN routes r ON f.route_id = r.route_id JOIN schedules s ON r.route_id = s.route_id JOIN buses b ON s.bus_id = b.bus_id JOIN stops src ON r.source_stop_id = src.stop_id JOIN stops dst ON r.destination_stop_id = dst.stop_id`

var fareTmpl = mustTemplate("fare",
	"{{.source_city}} నుండి {{.dest_city}} కి వెళ్ళే {{.bus_type}} బస్సు ({{.bus_reg}}) యొక్క ఛార్జీ {{.amount}} రూపాయలు. బస్సు బయలుదేరే సమయం {{.departure_time}}. ")

func fareSpec() *moduleSpec {
	return &moduleSpec{
		id:          models.ModuleFare,
		required:    []string{models.ParamSourceCity, models.ParamDestinationCity},
		baseFilters: 2,
		build:       buildFare,
		shape: rowShape{
			columns:   []string{"amount", "currency", "bus_type", "bus_reg", "departure_time", "route_name", "source_city", "dest_city"},
			durations: []int{4},
		},
		tmpl: fareTmpl,
	}
}

func buildFare(p params) (*query.Query, []warning) {
	q := query.New(fareBase).
		Where("src.city = ?", p[models.ParamSourceCity]).
		Where("dst.city = ?", p[models.ParamDestinationCity])
	return q, nil
}
