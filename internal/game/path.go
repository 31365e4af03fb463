package game

import "github.com/go-gl/mathgl/mgl64"

// PathFollower moves the ship's rail frame along the course. The flight
// controller sets its speed and reads its progress.
type PathFollower interface {
	Position() float64 // distance travelled along the path
	Length() float64
	SetSpeed(speed float64)
	SetEnabled(on bool)
	Enabled() bool
	Tick(dt float64)
	// Frame returns the current point on the path and the orientation
	// facing along it.
	Frame() (mgl64.Vec3, mgl64.Quat)
}

// RailCart follows a polyline at a settable speed.
type RailCart struct {
	points   []mgl64.Vec3
	cumul    []float64 // distance from start to points[i]
	position float64
	speed    float64
	enabled  bool
}

// NewRailCart builds a cart on the given waypoints. Fewer than two points
// produce a zero-length path.
func NewRailCart(points []mgl64.Vec3) *RailCart {
	rc := &RailCart{
		points:  append([]mgl64.Vec3(nil), points...),
		cumul:   make([]float64, len(points)),
		enabled: true,
	}
	for i := 1; i < len(points); i++ {
		rc.cumul[i] = rc.cumul[i-1] + points[i].Sub(points[i-1]).Len()
	}
	return rc
}

// Points returns the waypoints.
func (rc *RailCart) Points() []mgl64.Vec3 { return rc.points }

// Position returns distance travelled.
func (rc *RailCart) Position() float64 { return rc.position }

// SetPosition jumps to distance d along the path.
func (rc *RailCart) SetPosition(d float64) {
	rc.position = mgl64.Clamp(d, 0, rc.Length())
}

// Length returns total path length.
func (rc *RailCart) Length() float64 {
	if len(rc.cumul) == 0 {
		return 0
	}
	return rc.cumul[len(rc.cumul)-1]
}

// Speed returns the current speed.
func (rc *RailCart) Speed() float64 { return rc.speed }

// SetSpeed sets units per second along the path.
func (rc *RailCart) SetSpeed(speed float64) { rc.speed = speed }

// SetEnabled starts or stops the cart.
func (rc *RailCart) SetEnabled(on bool) { rc.enabled = on }

// Enabled reports whether the cart moves on Tick.
func (rc *RailCart) Enabled() bool { return rc.enabled }

// Tick advances the cart, stopping at the end of the path.
func (rc *RailCart) Tick(dt float64) {
	if !rc.enabled {
		return
	}
	rc.SetPosition(rc.position + rc.speed*dt)
}

// Frame returns the point at the current distance and the rotation facing
// along the segment it lies on.
func (rc *RailCart) Frame() (mgl64.Vec3, mgl64.Quat) {
	return rc.Sample(rc.position)
}

// Sample returns the point and heading at distance d.
func (rc *RailCart) Sample(d float64) (mgl64.Vec3, mgl64.Quat) {
	switch len(rc.points) {
	case 0:
		return mgl64.Vec3{}, mgl64.QuatIdent()
	case 1:
		return rc.points[0], mgl64.QuatIdent()
	}
	d = mgl64.Clamp(d, 0, rc.Length())
	seg := len(rc.points) - 2
	for i := 1; i < len(rc.cumul); i++ {
		if d <= rc.cumul[i] {
			seg = i - 1
			break
		}
	}
	a, b := rc.points[seg], rc.points[seg+1]
	segLen := rc.cumul[seg+1] - rc.cumul[seg]
	t := 0.0
	if segLen > 0 {
		t = (d - rc.cumul[seg]) / segLen
	}
	return lerpVec3(a, b, t), LookRotation(b.Sub(a))
}
