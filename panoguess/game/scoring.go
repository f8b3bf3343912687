package game

import "math"

const (
	// MaxPanoramaMoves is the move ceiling: guesses above it are rejected,
	// and a guess at the ceiling earns no move bonus.
	MaxPanoramaMoves = 5

	// DistanceErrorLimitKm is the error ceiling: at or beyond it a guess
	// scores zero.
	DistanceErrorLimitKm = 2000.0

	earthRadiusKm = 6371.0
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}

// Distance returns the great-circle distance between two points in
// kilometers using the haversine formula. Flat Euclidean distance would be
// badly wrong at country scale.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180.0
	lng1 := a.Lng * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	lng2 := b.Lng * math.Pi / 180.0

	dLat := lat2 - lat1
	dLng := lng2 - lng1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Score converts a distance error, elapsed time and move count into points.
//
// Guesses at or beyond the error ceiling score zero. Otherwise a move bonus
// rewards solving without exploring (0 moves: 100, 1 move: 50, 2..4 moves:
// 10 per move, at the ceiling: nothing), and an accuracy component scales
// with how close the guess landed; within the first 60 seconds unused time
// is worth 5 points per second on the same scale.
func Score(distanceErrorKm float64, durationSeconds, movesUsed int) float64 {
	if distanceErrorKm >= DistanceErrorLimitKm {
		return 0
	}

	var score float64
	if movesUsed < MaxPanoramaMoves {
		switch movesUsed {
		case 0:
			score += 100
		case 1:
			score += 50
		default:
			score += float64(movesUsed) * 10
		}
	}

	if durationSeconds <= 60 {
		score += (float64(60-durationSeconds)*5 + (DistanceErrorLimitKm - distanceErrorKm)) / 10
	} else {
		score += (DistanceErrorLimitKm - distanceErrorKm) / 10
	}

	return score
}
