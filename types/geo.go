package types

import "math"

const earthRadiusKm = 6371.0

// CalculateDistance returns the haversine distance in kilometers.
func CalculateDistance(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	dlat := (lat2 - lat1) * math.Pi / 180.0
	dlng := (lng2 - lng1) * math.Pi / 180.0

	a := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// TraceDistance sums the leg distances of an ordered lat/lon trace.
func TraceDistance(lats, lons []float64) float64 {
	total := 0.0
	for i := 0; i+1 < len(lats) && i+1 < len(lons); i++ {
		total += CalculateDistance(lats[i], lons[i], lats[i+1], lons[i+1])
	}
	return total
}

func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
