package game

import "github.com/go-gl/mathgl/mgl64"

// AimConfig tunes the reticle that drives on-rails steering.
type AimConfig struct {
	MaxRadius   float64 `mapstructure:"maxRadius"`   // max offset of the close target
	ReturnSpeed float64 `mapstructure:"returnSpeed"` // recentre rate; steering uses half
	Deadzone    float64 `mapstructure:"deadzone"`
	InvertY     bool    `mapstructure:"invertY"`
}

// DefaultAimConfig returns the stock reticle tuning.
func DefaultAimConfig() AimConfig {
	return AimConfig{MaxRadius: 1, ReturnSpeed: 5, Deadzone: 0.1, InvertY: true}
}

// AimTarget follows the stick with a lag. Its offset, divided by MaxRadius,
// is the steering vector used on rails.
type AimTarget struct {
	cfg    AimConfig
	offset mgl64.Vec2
}

// NewAimTarget creates a centred reticle.
func NewAimTarget(cfg AimConfig) *AimTarget {
	if cfg.MaxRadius <= 0 {
		cfg.MaxRadius = 1
	}
	return &AimTarget{cfg: cfg}
}

// SetInvertY changes the vertical stick sense.
func (a *AimTarget) SetInvertY(on bool) { a.cfg.InvertY = on }

// InvertY reports the vertical stick sense.
func (a *AimTarget) InvertY() bool { return a.cfg.InvertY }

// Offset returns the current reticle offset.
func (a *AimTarget) Offset() mgl64.Vec2 { return a.offset }

// Steering returns the offset normalised to [-1,1] on each axis.
func (a *AimTarget) Steering() mgl64.Vec2 {
	return a.offset.Mul(1 / a.cfg.MaxRadius)
}

// Update moves the reticle toward the stick position.
func (a *AimTarget) Update(stick mgl64.Vec2, dt float64) {
	v := stick
	if a.cfg.InvertY {
		v[1] = -v[1]
	}
	if v.Len() < a.cfg.Deadzone {
		v = mgl64.Vec2{}
	}

	var desired mgl64.Vec2
	if mag := v.Len(); mag > 0 {
		desired = v.Normalize().Mul(min(mag, 1) * a.cfg.MaxRadius)
	}

	speed := a.cfg.ReturnSpeed * 0.5
	if v.Len() == 0 {
		speed = a.cfg.ReturnSpeed
	}
	a.offset = lerpVec2(a.offset, desired, dt*speed)
}

// Reset recentres the reticle.
func (a *AimTarget) Reset() { a.offset = mgl64.Vec2{} }
