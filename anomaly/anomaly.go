// Package anomaly runs the fixed battery of spoofing/anomaly detectors over
// a vessel's history and the event just appended to it.
package anomaly

import (
	"fmt"
	"math"
	"time"

	"github.com/aisentinel/aisentinel/circlefit"
	"github.com/aisentinel/aisentinel/vessel"
)

const (
	transmissionGapThreshold  = 600.0 // seconds
	positionJumpThresholdNM   = 10.0
	speedAnomalyThresholdKts  = 40.0
	headingChangeThresholdDeg = 90.0

	circleDetectionWindow  = 45 * time.Minute
	circleMinPoints        = 3
	circleMaxResidualDeg   = 0.0001
	circleMinRadiusDeg     = 0.1 / 60
	circleMaxRadiusDeg     = 2.0 / 60
	circleUniformityRad    = 0.03
	circleSOGStdThreshold  = 0.5
)

// Detect evaluates every detector, in order, against history (which must
// already include the just-appended point as its last element) and returns
// the alert from the last detector that fired, or nil if none did.
func Detect(history []vessel.HistoryPoint) *vessel.Alert {
	if len(history) == 0 {
		return nil
	}
	current := history[len(history)-1]
	var alert *vessel.Alert

	if a := transmissionGap(current); a != nil {
		alert = a
	}
	if a := positionJump(history, current); a != nil {
		alert = a
	}
	if a := identitySwap(history, current); a != nil {
		alert = a
	}
	if a := speedAnomaly(current); a != nil {
		alert = a
	}
	if a := courseChangeAnomaly(current); a != nil {
		alert = a
	}
	if a := circleSpoofing(history, current); a != nil {
		alert = a
	}
	return alert
}

func transmissionGap(current vessel.HistoryPoint) *vessel.Alert {
	if current.TimeDiff == nil || *current.TimeDiff <= transmissionGapThreshold {
		return nil
	}
	minutes := int(*current.TimeDiff) / 60
	return &vessel.Alert{
		MMSI:      current.MMSI,
		Timestamp: current.Timestamp,
		Type:      vessel.AlertTransmissionGap,
		Message: fmt.Sprintf("ALERT: Vessel %d went dark for %d min near (%.5f,%.5f)",
			current.MMSI, minutes, current.Lat, current.Lon),
	}
}

// penultimate returns the point two back from the just-appended current
// point, i.e. the point before the immediately preceding one, matching the
// reference implementation's comparison target for jump/identity checks.
func penultimate(history []vessel.HistoryPoint) (vessel.HistoryPoint, bool) {
	if len(history) < 3 {
		return vessel.HistoryPoint{}, false
	}
	return history[len(history)-3], true
}

func positionJump(history []vessel.HistoryPoint, current vessel.HistoryPoint) *vessel.Alert {
	prev, ok := penultimate(history)
	if !ok {
		return nil
	}
	dist := math.Hypot(current.Lat-prev.Lat, current.Lon-prev.Lon) * 60 // rough nautical miles
	if dist <= positionJumpThresholdNM {
		return nil
	}
	return &vessel.Alert{
		MMSI:      current.MMSI,
		Timestamp: current.Timestamp,
		Type:      vessel.AlertPositionJump,
		Message: fmt.Sprintf("ALERT: Vessel %d jumped %.1f NM at %s (possible spoofing)",
			current.MMSI, dist, current.Timestamp.Format(time.RFC3339)),
	}
}

func identitySwap(history []vessel.HistoryPoint, current vessel.HistoryPoint) *vessel.Alert {
	prev, ok := penultimate(history)
	if !ok || prev.ShipName == "" || current.ShipName == "" || prev.ShipName == current.ShipName {
		return nil
	}
	return &vessel.Alert{
		MMSI:      current.MMSI,
		Timestamp: current.Timestamp,
		Type:      vessel.AlertIdentitySwap,
		Message: fmt.Sprintf("ALERT: Vessel %d changed name from '%s' to '%s' at %s",
			current.MMSI, prev.ShipName, current.ShipName, current.Timestamp.Format(time.RFC3339)),
	}
}

func speedAnomaly(current vessel.HistoryPoint) *vessel.Alert {
	if current.SOG == nil || *current.SOG <= speedAnomalyThresholdKts {
		return nil
	}
	return &vessel.Alert{
		MMSI:      current.MMSI,
		Timestamp: current.Timestamp,
		Type:      vessel.AlertSpeedAnomaly,
		Message: fmt.Sprintf("ALERT: Vessel %d reported implausible speed %.1f knots at %s",
			current.MMSI, *current.SOG, current.Timestamp.Format(time.RFC3339)),
	}
}

func courseChangeAnomaly(current vessel.HistoryPoint) *vessel.Alert {
	if current.DeltaHeading == nil || math.Abs(*current.DeltaHeading) <= headingChangeThresholdDeg {
		return nil
	}
	return &vessel.Alert{
		MMSI:      current.MMSI,
		Timestamp: current.Timestamp,
		Type:      vessel.AlertCourseChangeAnomaly,
		Message: fmt.Sprintf("ALERT: Vessel %d changed heading by %.1f° at %s",
			current.MMSI, *current.DeltaHeading, current.Timestamp.Format(time.RFC3339)),
	}
}

func circleSpoofing(history []vessel.HistoryPoint, current vessel.HistoryPoint) *vessel.Alert {
	if len(history) < circleMinPoints {
		return nil
	}
	cutoff := current.Timestamp.Add(-circleDetectionWindow)
	var xs, ys, sogs []float64
	for _, pt := range history {
		if pt.Timestamp.Before(cutoff) {
			continue
		}
		if pt.Lat == 0 && pt.Lon == 0 {
			continue // matches the reference implementation's truthiness check on lat/lon
		}
		xs = append(xs, pt.Lat)
		ys = append(ys, pt.Lon)
		if pt.SOG != nil {
			sogs = append(sogs, *pt.SOG)
		}
	}
	if len(xs) < circleMinPoints {
		return nil
	}
	res, err := circlefit.Fit(xs, ys)
	if err != nil {
		return nil
	}
	if res.Radius < circleMinRadiusDeg || res.Radius > circleMaxRadiusDeg {
		return nil
	}
	if res.Residual > circleMaxResidualDeg {
		return nil
	}
	if angularStd(xs, ys, res.CenterX, res.CenterY) > circleUniformityRad {
		return nil
	}
	if len(sogs) < circleMinPoints {
		return nil
	}
	if stdDev(sogs) > circleSOGStdThreshold {
		return nil
	}
	return &vessel.Alert{
		MMSI:      current.MMSI,
		Timestamp: current.Timestamp,
		Type:      vessel.AlertCircleSpoofing,
		Message: fmt.Sprintf("ALERT: Vessel %d detected with possible circle spoofing pattern (r=%.2fnm)",
			current.MMSI, res.Radius*60),
	}
}

// angularStd computes the standard deviation of consecutive angular
// differences of each point as seen from the fitted center, after
// unwrapping — a near-uniform spacing is evidence of an artificially
// circular, constant-rate track.
func angularStd(xs, ys []float64, cx, cy float64) float64 {
	thetas := make([]float64, len(xs))
	for i := range xs {
		thetas[i] = math.Atan2(cy-ys[i], cx-xs[i])
	}
	unwrap(thetas)
	if len(thetas) < 2 {
		return 0
	}
	diffs := make([]float64, len(thetas)-1)
	for i := 1; i < len(thetas); i++ {
		diffs[i-1] = thetas[i] - thetas[i-1]
	}
	return stdDev(diffs)
}

func unwrap(angles []float64) {
	for i := 1; i < len(angles); i++ {
		d := angles[i] - angles[i-1]
		for d > math.Pi {
			angles[i] -= 2 * math.Pi
			d = angles[i] - angles[i-1]
		}
		for d < -math.Pi {
			angles[i] += 2 * math.Pi
			d = angles[i] - angles[i-1]
		}
	}
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff / float64(len(values)))
}
