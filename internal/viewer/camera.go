package viewer

import (
	"math"

	"github.com/Garsondee/Rail-Shooter/internal/game"
	"github.com/go-gl/mathgl/mgl64"
)

// Chase offsets in the followed frame: above and behind.
var (
	railsEyeOffset = mgl64.Vec3{0, 2, -12}
	freeEyeOffset  = mgl64.Vec3{0, 2.5, -10}
)

const nearPlane = 0.5

// Camera is the two virtual chase cameras behind one projection. It
// implements game.CameraRig; the camera with the higher priority follows.
type Camera struct {
	priority map[game.CameraID]int
	eye      mgl64.Vec3
	rot      mgl64.Quat
	fov      float64 // vertical, degrees
	width    float64
	height   float64
}

// NewCamera creates a rig that starts on the rails camera.
func NewCamera(width, height int) *Camera {
	return &Camera{
		priority: map[game.CameraID]int{game.CameraOnRails: 2, game.CameraFreeFlight: 1},
		rot:      mgl64.QuatIdent(),
		fov:      45,
		width:    float64(width),
		height:   float64(height),
	}
}

// SetPriority implements game.CameraRig.
func (c *Camera) SetPriority(cam game.CameraID, p int) {
	c.priority[cam] = p
}

// Active returns the camera with the highest priority. Ties go to rails.
func (c *Camera) Active() game.CameraID {
	if c.priority[game.CameraFreeFlight] > c.priority[game.CameraOnRails] {
		return game.CameraFreeFlight
	}
	return game.CameraOnRails
}

// Resize changes the projection target size.
func (c *Camera) Resize(width, height int) {
	c.width, c.height = float64(width), float64(height)
}

// Follow places the active camera behind the ship. The camera holds still
// while the wreck falls.
func (c *Camera) Follow(s *game.Session) {
	if s.Death.Running() || s.Death.Done() {
		return
	}
	c.fov = s.Flight.FOV()
	if c.Active() == game.CameraFreeFlight {
		c.rot = s.Flight.WorldRotation()
		c.eye = s.Flight.WorldPosition().Add(c.rot.Rotate(freeEyeOffset))
		return
	}
	origin, rot := s.Path.Frame()
	c.rot = rot
	c.eye = origin.Add(rot.Rotate(railsEyeOffset))
}

// Eye returns the camera position.
func (c *Camera) Eye() mgl64.Vec3 { return c.eye }

// Project maps a world point to screen pixels. depth is the distance along
// the view axis; ok is false behind the near plane.
func (c *Camera) Project(p mgl64.Vec3) (x, y, depth float64, ok bool) {
	rel := c.rot.Conjugate().Rotate(p.Sub(c.eye))
	if rel.Z() < nearPlane {
		return 0, 0, rel.Z(), false
	}
	f := c.focal()
	x = c.width/2 + f*rel.X()/rel.Z()
	y = c.height/2 - f*rel.Y()/rel.Z()
	return x, y, rel.Z(), true
}

// ScaleAt returns how many pixels one world unit covers at depth.
func (c *Camera) ScaleAt(depth float64) float64 {
	if depth < nearPlane {
		depth = nearPlane
	}
	return c.focal() / depth
}

func (c *Camera) focal() float64 {
	fov := c.fov
	if fov <= 0 || fov >= 180 {
		fov = 45
	}
	half := mgl64.DegToRad(fov) / 2
	return (c.height / 2) / math.Tan(half)
}
