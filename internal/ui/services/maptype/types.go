package maptype

import "geographia/internal/domain"

// Map styles per layer
const (
	StyleOutdoors         = "mapbox://styles/mapbox/outdoors-v12"
	StyleSatelliteStreets = "mapbox://styles/mapbox/satellite-streets-v12"
	StyleGeographic       = "mapbox://styles/ationno/cmdrr2mla000801s2hxgn57r0"
	StyleHistoric         = "mapbox://styles/ationno/cmdrr5wsp00lm01qpbjfrfhsl"
	StyleStandard         = "mapbox://styles/mapbox/standard"
)

// StyleFor returns the map style used while t is selected
func StyleFor(t domain.LocationType) string {
	switch t {
	case domain.TypeDefault:
		return StyleOutdoors
	case domain.TypeRural:
		return StyleSatelliteStreets
	case domain.TypeGeographic:
		return StyleGeographic
	case domain.TypeHistoric:
		return StyleHistoric
	default:
		return StyleStandard
	}
}

// Filter returns the locations visible for t. The default type shows everything.
func Filter(locations []domain.Location, t domain.LocationType) []domain.Location {
	if t == domain.TypeDefault {
		out := make([]domain.Location, len(locations))
		copy(out, locations)
		return out
	}
	var out []domain.Location
	for _, loc := range locations {
		if loc.Type == t {
			out = append(out, loc)
		}
	}
	return out
}

// Next returns the type after t in selector order, wrapping around
func Next(t domain.LocationType) domain.LocationType {
	for i, known := range domain.LocationTypes {
		if known == t {
			return domain.LocationTypes[(i+1)%len(domain.LocationTypes)]
		}
	}
	return domain.TypeDefault
}
