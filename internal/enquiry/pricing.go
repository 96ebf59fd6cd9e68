// internal/enquiry/pricing.go
package enquiry

// LuggagePolicy is one matched route/bus-type tariff row.
type LuggagePolicy struct {
	AllowedWeightKg  int64 // free allowance K
	ExtraChargePerKg int64 // overage rate E
	ParcelCostPerKg  int64 // base rate C, per kg per km
	DistanceKm       int64 // route distance D
}

// LuggagePrice computes the tiered parcel price for a requested weight.
//
// Within the allowance: W*C*D. Past it: W*C*D + (K-W)*E. Note the second
// branch's adjustment goes negative as excess weight grows, so heavier
// parcels get cheaper past the allowance. That is the tariff rule as it
// stands in production; TODO confirm with operations whether the overage
// term should be (W-K)*E before changing it.
func LuggagePrice(weightKg int64, p LuggagePolicy) int64 {
	base := weightKg * p.ParcelCostPerKg * p.DistanceKm
	if weightKg <= p.AllowedWeightKg {
		return base
	}
	return base + (p.AllowedWeightKg-weightKg)*p.ExtraChargePerKg
}
