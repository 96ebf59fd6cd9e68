// internal/enquiry/special.go
package enquiry

import (
	"bus-enquiry-engine/internal/models"
)

// Festival and special-occasion services. The module is part of the dispatch
// contract but no timetable data backs it yet, so it answers with an empty
// result instead of an unknown-module failure.
// TODO: back this with a special_services table once operations publishes
// the festival timetable feed.

func specialServiceSpec() *moduleSpec {
	return &moduleSpec{
		id:                   models.ModuleSpecialService,
		sourceDefaultsToHome: true,
		stub:                 true,
	}
}
