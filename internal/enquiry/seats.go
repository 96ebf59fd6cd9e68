// internal/enquiry/seats.go
package enquiry

import (
	"bus-enquiry-engine/internal/enquiry/query"
	"bus-enquiry-engine/internal/models"
)

// Seats still open on each scheduled service between two cities. Open seats
// are capacity minus confirmed bookings, counted at query time.

const seatAvailabilityBase = `SELECT s.schedule_id, b.registration, b.type, r.name, src.city AS source_city, dst.city AS destination_city, b.capacity, (b.capacity - (SELECT COUNT(*) FROM bookings WHERE bookings.schedule_id = s.schedule_id)) AS seats_available FROM schedules s JOIN buses b ON s.bus_id = b.bus_id JOIN routes r ON s.route_id = r.route_id JOIN stops src ON r.source_stop_id = src.stop_id JOIN stops dst ON r.destination_stop_id = dst.stop_id`

var seatAvailabilityTmpl = mustTemplate("seat_availability",
	"{{.source_city}} నుండి {{.dest_city}} కి వెళ్ళే {{.bus_type}} బస్సు ({{.bus_reg}}) లో {{.seats_available}} సీట్లు ఖాళీగా ఉన్నాయి. ")

func seatAvailabilitySpec() *moduleSpec {
	return &moduleSpec{
		id:          models.ModuleSeatAvailability,
		required:    []string{models.ParamSourceCity, models.ParamDestinationCity},
		baseFilters: 2,
		build:       buildSeatAvailability,
		shape: rowShape{
			columns: []string{"schedule_id", "bus_reg", "bus_type", "route_name", "source_city", "dest_city", "capacity", "seats_available"},
		},
		tmpl: seatAvailabilityTmpl,
	}
}

func buildSeatAvailability(p params) (*query.Query, []warning) {
	q := query.New(seatAvailabilityBase).
		Where("src.city = ?", p[models.ParamSourceCity]).
		Where("dst.city = ?", p[models.ParamDestinationCity])

	if v, ok := p.get(models.ParamBusType); ok {
		q.Where("b.type = ?", v)
	}

	return q, nil
}
