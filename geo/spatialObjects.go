package geo

import (
	"math"
)

// Point is a set of <latitude, longitude> coordinates.
type Point struct {
	Lat  float64 //latitude, eg. 29.260799° N
	Long float64 //longitude, eg. 94.87287° W
}

// LegalCoord returns true if the given coordinates are legal.
// lat=-90 and lon=-180 are permitted because they're useful in search rectangles.
func LegalCoord(lat, long float64) bool {
	return lat <= 90.0 && lat >= -90.0 && long <= 180.0 && long >= -180.0
}

// Rectangle consists of two <lat,long> Points.
// "max" contains the point with the highest latitude and the hightest longitude
// "min" contains the point with the lowest latitude and the lowest longitude
type Rectangle struct {
	max Point
	min Point
}

// Max returns the highest (most north-eastern) <lat,long> Point of the rectangle.
func (a *Rectangle) Max() Point { return a.max }

// Min returns the lowest (most south-western) <lat,long> Point of the rectangle.
func (a *Rectangle) Min() Point { return a.min }

// SplitViewRect maps any rectangular view of the earth to a set of
// non-overlapping, valid rectangles.
// More than one rectangle is needed if the view crosses the date line
// or a pole. (the latter is'nt supported yet)
func SplitViewRect(minLat, minLong, maxLat, maxLong float64) []Rectangle {
	// reject troublesome special values
	for _, f := range [...]float64{minLat, minLong, maxLat, maxLong} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	}
	if maxLong-minLong >= 360.0 {
		// all longtitudes
		minLong = -180
		maxLong = 180
	} else {
		// move
		for minLong < -180.0 {
			minLong += 360.0
		}
		for minLong > 180.0 {
			minLong -= 360.0
		}
		for maxLong < -180.0 {
			maxLong += 360.0
		}
		for maxLong > 180.0 {
			maxLong -= 360.0
		}
	}

	if maxLat < minLat || maxLat < -90.0 || minLat > 90 {
		return nil // doesn't make sense to wrap from one pole to another
	}
	if maxLat-minLat >= 180.0 {
		// all latitudes
		minLat = -90
		maxLat = 90
	}

	if maxLong >= minLong && minLat >= -90.0 && maxLat <= 90.0 {
		// single
		return []Rectangle{Rectangle{
			min: Point{minLat, minLong},
			max: Point{maxLat, maxLong},
		}}
	} else if maxLong < minLong && minLat >= -90.0 && maxLat <= 90.0 {
		return []Rectangle{
			Rectangle{min: Point{minLat, -180.0}, max: Point{maxLat, maxLong}}, // west
			Rectangle{min: Point{minLat, minLong}, max: Point{maxLat, 180.0}},  // east
		}
	}
	return nil // TODO mirroring around poles (not encountered from the web view)
	// if math.Abs(maxLon-minLon) > 45.0 we must be careful to avoid overlapping
	// if the date line is visible a horizontal split isn't enough, so drop that
	// above/below the latitude closest to the pole all latitudes are visible,
	// and then there is a smaller rectangle next to it with height equal to the
	// reflected difference in latitude.
}
