package game

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Collider tags. A projectile never hits a collider carrying its owner tag.
const (
	TagPlayer  = "Player"
	TagEnemy   = "Enemy"
	TagRing    = "Ring"
	TagScenery = "Scenery"
)

// EntityID identifies a collider and the capabilities attached to it.
type EntityID int

// Layer is a coarse collision filter.
type Layer int

const (
	LayerDefault     Layer = iota
	LayerPassthrough       // ignored by projectiles and ray casts
)

// Shape selects the collider volume.
type Shape int

const (
	ShapeSphere Shape = iota
	ShapeBox
)

// Activatable is anything that can be switched on and off by gameplay,
// e.g. a defeated enemy or a passed ring.
type Activatable interface {
	SetActive(on bool)
}

// Collider is a sphere or axis-aligned box registered with the World.
type Collider struct {
	ID          EntityID
	Label       string
	Tag         string
	Layer       Layer
	Shape       Shape
	Center      mgl64.Vec3
	Radius      float64    // sphere only
	HalfExtents mgl64.Vec3 // box only
	enabled     bool
}

// SetActive enables or disables the collider.
func (c *Collider) SetActive(on bool) { c.enabled = on }

// Enabled reports whether queries see this collider.
func (c *Collider) Enabled() bool { return c.enabled }

// RayHit is one collider crossed by a ray or sweep.
type RayHit struct {
	Collider *Collider
	T        float64 // segment parameter in [0,1]
	Distance float64
}

// World holds every collider plus lookup tables for the capabilities attached
// to them. Registration order is kept so queries are deterministic.
type World struct {
	colliders []*Collider
	byID      map[EntityID]*Collider
	health    map[EntityID]*Health
	nextID    EntityID
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		byID:   make(map[EntityID]*Collider),
		health: make(map[EntityID]*Health),
		nextID: 1,
	}
}

func (w *World) add(c *Collider) *Collider {
	c.ID = w.nextID
	w.nextID++
	c.enabled = true
	w.colliders = append(w.colliders, c)
	w.byID[c.ID] = c
	return c
}

// AddSphere registers a sphere collider.
func (w *World) AddSphere(label, tag string, layer Layer, center mgl64.Vec3, radius float64) *Collider {
	return w.add(&Collider{Label: label, Tag: tag, Layer: layer, Shape: ShapeSphere, Center: center, Radius: radius})
}

// AddBox registers an axis-aligned box collider.
func (w *World) AddBox(label, tag string, layer Layer, center, halfExtents mgl64.Vec3) *Collider {
	return w.add(&Collider{Label: label, Tag: tag, Layer: layer, Shape: ShapeBox, Center: center, HalfExtents: halfExtents})
}

// Collider looks up a collider by ID.
func (w *World) Collider(id EntityID) (*Collider, bool) {
	c, ok := w.byID[id]
	return c, ok
}

// Colliders returns all colliders in registration order.
func (w *World) Colliders() []*Collider {
	return w.colliders
}

// Find returns the first collider registered under label.
func (w *World) Find(label string) (*Collider, bool) {
	for _, c := range w.colliders {
		if c.Label == label {
			return c, true
		}
	}
	return nil, false
}

// AttachHealth makes h the Health capability of the collider id.
func (w *World) AttachHealth(id EntityID, h *Health) {
	w.health[id] = h
}

// HealthOf returns the Health attached to id, if any.
func (w *World) HealthOf(id EntityID) (*Health, bool) {
	h, ok := w.health[id]
	return h, ok
}

// Raycast returns the first enabled, non-passthrough collider hit by a ray
// from origin along dir within maxDist. Colliders containing the origin are
// skipped, as is the collider named by ignore (0 ignores nothing).
func (w *World) Raycast(origin, dir mgl64.Vec3, maxDist float64, ignore EntityID) (RayHit, bool) {
	if dir.Len() < 1e-12 || maxDist <= 0 {
		return RayHit{}, false
	}
	end := origin.Add(dir.Normalize().Mul(maxDist))
	best := RayHit{T: math.Inf(1)}
	found := false
	for _, c := range w.colliders {
		if !c.enabled || c.Layer == LayerPassthrough || c.ID == ignore {
			continue
		}
		t, inside, ok := segmentHitT(c, origin, end, 0)
		if !ok || inside {
			continue
		}
		if t < best.T {
			best = RayHit{Collider: c, T: t, Distance: t * maxDist}
			found = true
		}
	}
	return best, found
}

// Sweep returns every enabled collider touched by a sphere of the given radius
// moving from `from` to `to`, nearest first. Layers are not filtered here;
// callers decide what counts.
func (w *World) Sweep(from, to mgl64.Vec3, radius float64) []RayHit {
	length := to.Sub(from).Len()
	var hits []RayHit
	for _, c := range w.colliders {
		if !c.enabled {
			continue
		}
		t, _, ok := segmentHitT(c, from, to, radius)
		if !ok {
			continue
		}
		hits = append(hits, RayHit{Collider: c, T: t, Distance: t * length})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].T < hits[j].T })
	return hits
}

// Overlapping returns enabled colliders intersecting the sphere (center, radius).
func (w *World) Overlapping(center mgl64.Vec3, radius float64) []*Collider {
	var out []*Collider
	for _, c := range w.colliders {
		if !c.enabled {
			continue
		}
		if _, _, ok := segmentHitT(c, center, center, radius); ok {
			out = append(out, c)
		}
	}
	return out
}

// segmentHitT returns the first parameter t in [0,1] at which the segment
// from->to enters c grown by inflate. inside is true when `from` already lies
// within the volume (t is then 0).
func segmentHitT(c *Collider, from, to mgl64.Vec3, inflate float64) (t float64, inside bool, ok bool) {
	switch c.Shape {
	case ShapeBox:
		ext := c.HalfExtents.Add(mgl64.Vec3{inflate, inflate, inflate})
		return segmentAABBHitT(from, to, c.Center.Sub(ext), c.Center.Add(ext))
	default:
		return segmentSphereHitT(from, to, c.Center, c.Radius+inflate)
	}
}

func segmentSphereHitT(from, to, center mgl64.Vec3, r float64) (float64, bool, bool) {
	m := from.Sub(center)
	c := m.Dot(m) - r*r
	if c <= 0 {
		return 0, true, true
	}
	d := to.Sub(from)
	a := d.Dot(d)
	if a < 1e-12 {
		return 0, false, false
	}
	b := m.Dot(d)
	if b > 0 {
		// Starting outside and moving away.
		return 0, false, false
	}
	disc := b*b - a*c
	if disc < 0 {
		return 0, false, false
	}
	t := (-b - math.Sqrt(disc)) / a
	if t < 0 || t > 1 {
		return 0, false, false
	}
	return t, false, true
}

// segmentAABBHitT is the slab test: clip [0,1] against each axis in turn.
func segmentAABBHitT(from, to, lo, hi mgl64.Vec3) (float64, bool, bool) {
	d := to.Sub(from)
	tMin := 0.0
	tMax := 1.0
	for axis := 0; axis < 3; axis++ {
		if math.Abs(d[axis]) < 1e-12 {
			if from[axis] < lo[axis] || from[axis] > hi[axis] {
				return 0, false, false
			}
			continue
		}
		inv := 1.0 / d[axis]
		t1 := (lo[axis] - from[axis]) * inv
		t2 := (hi[axis] - from[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false, false
		}
	}
	inside := from[0] >= lo[0] && from[0] <= hi[0] &&
		from[1] >= lo[1] && from[1] <= hi[1] &&
		from[2] >= lo[2] && from[2] <= hi[2]
	return tMin, inside, true
}
