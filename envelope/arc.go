package envelope

import "math"

// degenerateGuard is the numerical threshold below which the
// perpendicular-bisector determinant is treated as zero (spec.md §4.4).
const degenerateGuard = 1e-10

// threePointCircle fits a circle through p1, p2, p3, handling the
// degenerate all-equal and two-equal cases, and the near-collinear case
// via the determinant guard (falls back to the midpoint of the outer
// chord with radius 0, which degenerates the arc to a straight segment for
// envelope purposes — testable property 4).
func threePointCircle(p1, p2, p3 [2]float64) (centre [2]float64, radius float64) {
	if p1 == p2 && p2 == p3 {
		return p1, 0
	}
	if p1 == p2 {
		return midpoint(p1, p3), dist(p1, p3) / 2
	}
	if p2 == p3 {
		return midpoint(p1, p3), dist(p1, p3) / 2
	}
	if p1 == p3 {
		return midpoint(p1, p2), dist(p1, p2) / 2
	}

	ax, ay := p1[0], p1[1]
	bx, by := p2[0], p2[1]
	cx, cy := p3[0], p3[1]

	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if math.Abs(d) < degenerateGuard {
		centre = midpoint(p1, p3)
		radius = 0
		return
	}

	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy

	ux := (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d
	uy := (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d

	centre = [2]float64{ux, uy}
	radius = dist(centre, p1)
	return
}

func midpoint(a, b [2]float64) [2]float64 {
	return [2]float64{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
}

func dist(a, b [2]float64) float64 {
	dx, dy := a[0]-b[0], a[1]-b[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// angleDeg computes the angle of p around centre, in degrees, measured
// clockwise from north: 0=north, 90=east, 180=south, 270=west. Result is
// in [0, 360).
func angleDeg(centre, p [2]float64) float64 {
	dx, dy := p[0]-centre[0], p[1]-centre[1]
	a := 90 - math.Atan2(dy, dx)*180/math.Pi
	return wrap360(a)
}

func wrap360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// wrap180 brings a into (-180, 180].
func wrap180(a float64) float64 {
	a = wrap360(a)
	if a > 180 {
		a -= 360
	}
	return a
}

// sweepArc derives the signed swept arc-angle start->mid->end: the arc
// runs in whichever direction (increasing or decreasing angle) reaches mid
// before end, which is well-defined regardless of winding direction because
// mid is guaranteed to lie between start and end along the traversed arc.
// The result lies in [-360, 360]; start == end with a distinct mid is the
// full circle.
func sweepArc(start, mid, end float64) float64 {
	s := wrap360(end - start)
	m := wrap360(mid - start)
	if m <= s {
		return s
	}
	return s - 360
}

// arcContains reports whether angle theta (degrees, any real value) lies
// within the arc swept from start through start+arc (arc may be
// negative). |arc| >= 360 denotes the full circle.
func arcContains(theta, start, arc float64) bool {
	if math.Abs(arc) >= 360 {
		return true
	}
	if arc >= 0 {
		d := wrap360(theta - start)
		return d <= arc
	}
	d := wrap360(start - theta)
	return d <= -arc
}

// cardinalPoints returns the four compass points of the circle
// (centre.x+r at angle 90, centre.x-r at 270, centre.y+r at 0,
// centre.y-r at 180) paired with their angle.
func cardinalPoints(centre [2]float64, r float64) [4]struct {
	pt    [2]float64
	angle float64
} {
	return [4]struct {
		pt    [2]float64
		angle float64
	}{
		{[2]float64{centre[0], centre[1] + r}, 0},
		{[2]float64{centre[0] + r, centre[1]}, 90},
		{[2]float64{centre[0], centre[1] - r}, 180},
		{[2]float64{centre[0] - r, centre[1]}, 270},
	}
}
