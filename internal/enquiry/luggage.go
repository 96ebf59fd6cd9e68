// internal/enquiry/luggage.go
package enquiry

import (
	"strconv"

	"bus-enquiry-engine/internal/enquiry/query"
	"bus-enquiry-engine/internal/models"
)

// Luggage charge for carrying a parcel of the spoken weight between two
// cities. Policies are joined through the scheduled buses on the route, so
// only bus types that actually serve it are priced. The dispatcher runs the
// pricing calculator on each row and emits raw price lines rather than
// spoken sentences. Weight is fatal when malformed because the price is
// meaningless without it.

const luggageBase = `SELECT src.city AS source_city, dst.city AS destination_city, r.distance_km, b.type, lp.allowed_weight_kg, lp.extra_charge_per_kg, lp.parcel_cost_per_kg FROM routes r JOIN stops src ON r.source_stop_id = src.stop_id JOIN stops dst ON r.destination_stop_id = dst.stop_id JOIN schedules sc ON r.route_id = sc.route_id JOIN buses b ON sc.bus_id = b.bus_id JOIN luggage_policies lp ON b.type = lp.bus_type`

func luggageSpec() *moduleSpec {
	return &moduleSpec{
		id:          models.ModuleLuggage,
		required:    []string{models.ParamSourceCity, models.ParamDestinationCity, models.ParamWeight},
		baseFilters: 2,
		build:       buildLuggage,
		shape: rowShape{
			columns: []string{"source_city", "dest_city", "distance_km", "bus_type", "allowed_weight_kg", "extra_charge_per_kg", "parcel_cost_per_kg"},
		},
		price: true,
	}
}

func buildLuggage(p params) (*query.Query, []warning) {
	q := query.New(luggageBase).
		Where("src.city = ?", p[models.ParamSourceCity]).
		Where("dst.city = ?", p[models.ParamDestinationCity])
	return q, nil
}

// parseWeight reads the spoken weight as whole kilograms.
func parseWeight(v string) (int64, error) {
	return strconv.ParseInt(v, 10, 64)
}
