// internal/enquiry/status.go
package enquiry

import (
	"bus-enquiry-engine/internal/enquiry/query"
	"bus-enquiry-engine/internal/models"
)

// Running status of services departing the source terminal. Source falls
// back to the kiosk's home city when the speaker named none.

const busStatusBase = `SELECT s.status, s.departure_time, b.registration, r.name, src.city AS source_city, dst.city AS destination_city FROM schedules s JOIN buses b ON s.bus_id = b.bus_id JOIN routes r ON s.route_id = r.route_id JOIN stops src ON r.source_stop_id = src.stop_id JOIN stops dst ON r.destination_stop_id = dst.stop_id`

var busStatusTmpl = mustTemplate("bus_status",
	"{{.source_city}} నుండి {{.dest_city}} కి వెళ్ళే బస్సు ({{.bus_reg}}) ప్రస్తుత స్థితి {{.status}}. బయలుదేరే సమయం {{.departure_time}}. ")

func busStatusSpec() *moduleSpec {
	return &moduleSpec{
		id:                   models.ModuleBusStatus,
		required:             []string{models.ParamSourceCity},
		sourceDefaultsToHome: true,
		baseFilters:          1,
		build:                buildBusStatus,
		shape: rowShape{
			columns:   []string{"status", "departure_time", "bus_reg", "route_name", "source_city", "dest_city"},
			durations: []int{1},
		},
		order: &ordering{column: 1},
		tmpl:  busStatusTmpl,
	}
}

func buildBusStatus(p params) (*query.Query, []warning) {
	q := query.New(busStatusBase).
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
