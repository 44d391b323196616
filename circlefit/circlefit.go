// Package circlefit fits an algebraic (Kåsa) least-squares circle through a
// set of points, used by the anomaly engine's circular-spoofing detector.
package circlefit

import (
	"errors"
	"math"
)

// ErrInsufficientPoints is returned when fewer than three points are given;
// a circle isn't determined by fewer.
var ErrInsufficientPoints = errors.New("circlefit: need at least 3 points")

// ErrSingular is returned when the points are degenerate (e.g. collinear)
// and the normal-equation matrix isn't invertible.
var ErrSingular = errors.New("circlefit: degenerate point set")

// Result is a fitted circle and how well it matches the input points.
type Result struct {
	CenterX  float64
	CenterY  float64
	Radius   float64
	Residual float64 // RMS distance of each point to the fitted circle
}

// Fit solves the Kåsa algebraic circle fit: for each point (x,y) the row
// (2x, 2y, 1) of A and the value x²+y² of b, solve A·[xc,yc,d]ᵀ = b by least
// squares via the 3x3 normal equations AᵀA·v = Aᵀb, then
// r = sqrt(xc²+yc²+d). The system is solved in coordinates relative to the
// points' centroid, which keeps it well conditioned for small circles far
// from the origin; the center is shifted back before it is returned.
func Fit(xs, ys []float64) (Result, error) {
	n := len(xs)
	if n != len(ys) {
		return Result{}, errors.New("circlefit: xs and ys have different lengths")
	}
	if n < 3 {
		return Result{}, ErrInsufficientPoints
	}

	var mx, my float64
	for i := 0; i < n; i++ {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	// Accumulate AᵀA (symmetric 3x3) and Aᵀb (3x1) in closed form, avoiding
	// materializing A.
	var sx, sy, sxx, syy, sxy, sx3, sy3, sx2y, sxy2, n_ float64
	n_ = float64(n)
	for i := 0; i < n; i++ {
		x, y := xs[i]-mx, ys[i]-my
		x2, y2 := x*x, y*y
		sx += x
		sy += y
		sxx += x2
		syy += y2
		sxy += x * y
		sx3 += x2 * x
		sy3 += y2 * y
		sx2y += x2 * y
		sxy2 += x * y2
	}

	// AᵀA = [[4*sxx, 4*sxy, 2*sx], [4*sxy, 4*syy, 2*sy], [2*sx, 2*sy, n_]]
	// Aᵀb = [2*(sx3+sxy2), 2*(sy3+sx2y), sxx+syy]
	m := [3][3]float64{
		{4 * sxx, 4 * sxy, 2 * sx},
		{4 * sxy, 4 * syy, 2 * sy},
		{2 * sx, 2 * sy, n_},
	}
	rhs := [3]float64{
		2 * (sx3 + sxy2),
		2 * (sy3 + sx2y),
		sxx + syy,
	}

	v, err := solve3(m, rhs)
	if err != nil {
		return Result{}, ErrSingular
	}
	xc, yc, d := v[0], v[1], v[2]
	r2 := xc*xc + yc*yc + d
	if r2 < 0 {
		return Result{}, ErrSingular
	}
	radius := math.Sqrt(r2)
	xc, yc = xc+mx, yc+my

	var sumSq float64
	for i := 0; i < n; i++ {
		dist := math.Hypot(xs[i]-xc, ys[i]-yc)
		diff := dist - radius
		sumSq += diff * diff
	}
	residual := math.Sqrt(sumSq / n_)

	return Result{CenterX: xc, CenterY: yc, Radius: radius, Residual: residual}, nil
}

// solve3 solves m·v = rhs for a 3x3 matrix via Cramer's rule.
func solve3(m [3][3]float64, rhs [3]float64) ([3]float64, error) {
	det := det3(m)
	if math.Abs(det) < 1e-18 {
		return [3]float64{}, ErrSingular
	}
	var v [3]float64
	for col := 0; col < 3; col++ {
		mc := m
		for row := 0; row < 3; row++ {
			mc[row][col] = rhs[row]
		}
		v[col] = det3(mc) / det
	}
	return v, nil
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}
