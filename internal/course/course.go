// Package course loads rail shooter levels from YAML files and places their
// entities into a game session.
package course

import (
	"errors"
	"fmt"
	"os"

	"github.com/Garsondee/Rail-Shooter/internal/game"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoPath         = errors.New("course path needs at least two points")
	ErrBadPoint       = errors.New("point must have exactly three coordinates")
	ErrDuplicateLabel = errors.New("duplicate entity label")
	ErrReservedLabel  = errors.New("label is reserved for the player ship")
)

// Point is an x, y, z triple written as a YAML sequence.
type Point []float64

// Vec converts p to a vector. Callers validate the length first.
func (p Point) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p[0], p[1], p[2]}
}

// Placement positions a turret, saucer or ring. Yaw only applies to turrets.
type Placement struct {
	Label    string  `yaml:"label"`
	Position Point   `yaml:"position"`
	Yaw      float64 `yaml:"yaw,omitempty"`
}

// Block is an axis-aligned piece of scenery.
type Block struct {
	Label       string `yaml:"label"`
	Position    Point  `yaml:"position"`
	HalfExtents Point  `yaml:"halfExtents"`
}

// Course is one level.
type Course struct {
	Name    string      `yaml:"name"`
	Path    []Point     `yaml:"path"`
	Turrets []Placement `yaml:"turrets,omitempty"`
	Saucers []Placement `yaml:"saucers,omitempty"`
	Rings   []Placement `yaml:"rings,omitempty"`
	Scenery []Block     `yaml:"scenery,omitempty"`
}

// Load reads and validates a course file.
func Load(path string) (*Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading course: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("course %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates course YAML. Entities without a label are
// named after their kind and position in the list.
func Parse(data []byte) (*Course, error) {
	var c Course
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding course: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Marshal encodes c back to YAML.
func (c *Course) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks the path, every coordinate and label uniqueness, filling
// in missing labels.
func (c *Course) Validate() error {
	if len(c.Path) < 2 {
		return ErrNoPath
	}
	for i, p := range c.Path {
		if len(p) != 3 {
			return fmt.Errorf("path[%d]: %w", i, ErrBadPoint)
		}
	}

	seen := map[string]bool{}
	check := func(kind string, i int, label *string, pts ...Point) error {
		if *label == "" {
			*label = fmt.Sprintf("%s-%d", kind, i+1)
		}
		for _, p := range pts {
			if len(p) != 3 {
				return fmt.Errorf("%s %q: %w", kind, *label, ErrBadPoint)
			}
		}
		if *label == game.PlayerLabel {
			return fmt.Errorf("%s %q: %w", kind, *label, ErrReservedLabel)
		}
		if seen[*label] {
			return fmt.Errorf("%s %q: %w", kind, *label, ErrDuplicateLabel)
		}
		seen[*label] = true
		return nil
	}

	for i := range c.Turrets {
		if err := check("turret", i, &c.Turrets[i].Label, c.Turrets[i].Position); err != nil {
			return err
		}
	}
	for i := range c.Saucers {
		if err := check("saucer", i, &c.Saucers[i].Label, c.Saucers[i].Position); err != nil {
			return err
		}
	}
	for i := range c.Rings {
		if err := check("ring", i, &c.Rings[i].Label, c.Rings[i].Position); err != nil {
			return err
		}
	}
	for i := range c.Scenery {
		b := &c.Scenery[i]
		if err := check("scenery", i, &b.Label, b.Position, b.HalfExtents); err != nil {
			return err
		}
	}
	return nil
}

// Points returns the rail path.
func (c *Course) Points() []mgl64.Vec3 {
	pts := make([]mgl64.Vec3, len(c.Path))
	for i, p := range c.Path {
		pts[i] = p.Vec()
	}
	return pts
}

// Tuning is the per-kind enemy configuration used when populating.
type Tuning struct {
	Turret game.TurretConfig
	Saucer game.SaucerConfig
}

// DefaultTuning returns stock turret and saucer configs.
func DefaultTuning() Tuning {
	return Tuning{Turret: game.DefaultTurretConfig(), Saucer: game.DefaultSaucerConfig()}
}

// Populate adds every course entity to s.
func (c *Course) Populate(s *game.Session, t Tuning) {
	for _, b := range c.Scenery {
		s.AddScenery(b.Label, b.Position.Vec(), b.HalfExtents.Vec())
	}
	for _, r := range c.Rings {
		s.AddRing(r.Label, r.Position.Vec())
	}
	for _, sc := range c.Saucers {
		s.AddSaucer(sc.Label, sc.Position.Vec(), t.Saucer)
	}
	for _, tu := range c.Turrets {
		s.AddTurret(tu.Label, tu.Position.Vec(), game.YawQuat(tu.Yaw), t.Turret)
	}
}

// NewSession builds a session on the course path and populates it.
func (c *Course) NewSession(cfg game.SessionConfig, t Tuning, deps game.SessionDeps) *game.Session {
	s := game.NewSession(cfg, game.NewRailCart(c.Points()), deps)
	c.Populate(s, t)
	return s
}
