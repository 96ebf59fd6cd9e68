// internal/models/modules.go
package models

// ModuleID identifies one of the nine enquiry modules. The set is closed;
// the registry refuses anything else before touching the store.
type ModuleID string

const (
	ModuleNextBus          ModuleID = "Bus_Enquiry_Next_Bus"
	ModuleLastBus          ModuleID = "Bus_Enquiry_Last_Bus"
	ModuleFare             ModuleID = "Fare_Enquiry"
	ModulePlatform         ModuleID = "Platform_Enquiry"
	ModuleSeatAvailability ModuleID = "Seat_Availability_Enquiry"
	ModuleLuggage          ModuleID = "Luggage_Enquiry"
	ModuleBusStatus        ModuleID = "Bus_Status_Enquiry"
	ModuleMultiCity        ModuleID = "Multiple_City_Enquiry"
	ModuleSpecialService   ModuleID = "Special_Service_Enquiry"
)

// AllModules lists every registered module identifier.
func AllModules() []ModuleID {
	return []ModuleID{
		ModuleNextBus,
		ModuleLastBus,
		ModuleFare,
		ModulePlatform,
		ModuleSeatAvailability,
		ModuleLuggage,
		ModuleBusStatus,
		ModuleMultiCity,
		ModuleSpecialService,
	}
}

// Parameter names as emitted by the extraction service.
const (
	ParamSourceCity        = "Source_City"
	ParamDestinationCity   = "Destination_City"
	ParamBusType           = "Bus_Type"
	ParamServiceNumber     = "Service_Number"
	ParamBusNumber         = "Bus_Number"
	ParamLastDepartureTime = "Last_Departure_Time"
	ParamTimeFrame         = "Time_Frame"
	ParamWeight            = "Weight"
	ParamIntermediateCity  = "Intermediate_City"
	ParamOccasion          = "Festival_Special_Occasion"
)
