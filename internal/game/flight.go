package game

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// FlightMode selects how the ship moves.
type FlightMode int

const (
	ModeOnRails    FlightMode = iota // carried by the path, steering within the viewport
	ModeFreeFlight                   // flies forward under its own heading
)

func (m FlightMode) String() string {
	switch m {
	case ModeOnRails:
		return "on-rails"
	case ModeFreeFlight:
		return "free-flight"
	default:
		return "unknown"
	}
}

// CameraID names the two virtual cameras.
type CameraID int

const (
	CameraOnRails CameraID = iota
	CameraFreeFlight
)

// CameraRig decides which virtual camera renders; the higher priority wins.
type CameraRig interface {
	SetPriority(cam CameraID, priority int)
}

// Viewport converts between rail-local offsets and normalised viewport
// coordinates, where [0,1] on X and Y is on screen.
type Viewport interface {
	ToViewport(local mgl64.Vec3) mgl64.Vec3
	FromViewport(vp mgl64.Vec3) mgl64.Vec3
}

// FrameViewport is a fixed rectangle centred on the rail frame.
type FrameViewport struct {
	HalfWidth  float64
	HalfHeight float64
}

// ToViewport maps local X/Y in [-half, half] onto [0,1].
func (v FrameViewport) ToViewport(local mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		(local.X() + v.HalfWidth) / (2 * v.HalfWidth),
		(local.Y() + v.HalfHeight) / (2 * v.HalfHeight),
		local.Z(),
	}
}

// FromViewport is the inverse of ToViewport.
func (v FrameViewport) FromViewport(vp mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		vp.X()*2*v.HalfWidth - v.HalfWidth,
		vp.Y()*2*v.HalfHeight - v.HalfHeight,
		vp.Z(),
	}
}

// FlightConfig is the ship tuning. Speeds are units/s, angles degrees,
// times seconds.
type FlightConfig struct {
	BaseSpeed       float64 `mapstructure:"baseSpeed"`
	BoostDelta      float64 `mapstructure:"boostDelta"`
	BrakeDelta      float64 `mapstructure:"brakeDelta"`
	SteeringSpeed   float64 `mapstructure:"steeringSpeed"`
	SpeedSmoothTime float64 `mapstructure:"speedSmoothTime"`

	FuelDuration     float64 `mapstructure:"fuelDuration"`     // seconds of boost on a full tank
	FuelRecoveryRate float64 `mapstructure:"fuelRecoveryRate"` // seconds of fuel regained per second
	RechargeDelay    float64 `mapstructure:"rechargeDelay"`

	MaxRollAngle             float64 `mapstructure:"maxRollAngle"`
	MaxYawAngle              float64 `mapstructure:"maxYawAngle"`
	MaxPitchAngle            float64 `mapstructure:"maxPitchAngle"`
	TiltResponsiveness       float64 `mapstructure:"tiltResponsiveness"`
	FreeFlightResponsiveness float64 `mapstructure:"freeFlightResponsiveness"`
	FreeFlightStrafeFactor   float64 `mapstructure:"freeFlightStrafeFactor"`
	BarrelRollDuration       float64 `mapstructure:"barrelRollDuration"`
	FireCooldown             float64 `mapstructure:"fireCooldown"`
	PositionTransitionSpeed  float64 `mapstructure:"positionTransitionSpeed"`
	NormalZOffset            float64 `mapstructure:"normalZOffset"`
	BoostZOffset             float64 `mapstructure:"boostZOffset"`
	BrakeZOffset             float64 `mapstructure:"brakeZOffset"`
	NormalFOV                float64 `mapstructure:"normalFOV"`
	BoostFOV                 float64 `mapstructure:"boostFOV"`
	BrakeFOV                 float64 `mapstructure:"brakeFOV"`
	ViewportHalfWidth        float64 `mapstructure:"viewportHalfWidth"`
	ViewportHalfHeight       float64 `mapstructure:"viewportHalfHeight"`
	HullRadius               float64 `mapstructure:"hullRadius"`
	MaxHealth                int     `mapstructure:"maxHealth"`
	MuzzleSpread             float64 `mapstructure:"muzzleSpread"` // lateral distance of each muzzle
}

// DefaultFlightConfig returns the stock ship tuning.
func DefaultFlightConfig() FlightConfig {
	return FlightConfig{
		BaseSpeed:                5,
		BoostDelta:               10,
		BrakeDelta:               5,
		SteeringSpeed:            15,
		SpeedSmoothTime:          0.2,
		FuelDuration:             2,
		FuelRecoveryRate:         1,
		RechargeDelay:            0.4,
		MaxRollAngle:             60,
		MaxYawAngle:              45,
		MaxPitchAngle:            35,
		TiltResponsiveness:       15,
		FreeFlightResponsiveness: 10,
		FreeFlightStrafeFactor:   0.5,
		BarrelRollDuration:       0.4,
		FireCooldown:             0.1,
		PositionTransitionSpeed:  5,
		NormalZOffset:            0,
		BoostZOffset:             1,
		BrakeZOffset:             -0.5,
		NormalFOV:                45,
		BoostFOV:                 60,
		BrakeFOV:                 35,
		ViewportHalfWidth:        8,
		ViewportHalfHeight:       4.5,
		HullRadius:               1,
		MaxHealth:                100,
		MuzzleSpread:             0.6,
	}
}

// FlightState is a read-only snapshot for HUD and tests.
type FlightState struct {
	Mode         FlightMode
	CurrentSpeed float64
	TargetSpeed  float64
	FuelRatio    float64
	Boosting     bool
	Braking      bool
	Rolling      bool
	RollAngle    float64
	RollProgress float64 // [0,1] through the current roll
}

// FlightDeps are the collaborators of a FlightController. Path is required;
// the rest may be nil.
type FlightDeps struct {
	Path     PathFollower
	Cameras  CameraRig
	Viewport Viewport
	Aim      *AimTarget
	Pool     *ProjectilePool
	World    *World
	Bus      *EventBus
	Log      zerolog.Logger
}

// FlightController runs the player ship: flight mode, speed and fuel,
// steering, mesh tilt, barrel rolls, firing and mission completion.
type FlightController struct {
	cfg FlightConfig

	mode            FlightMode
	enabled         bool
	inputEnabled    bool
	missionComplete bool

	currentSpeed  float64
	targetSpeed   float64
	speedVelocity float64

	fuel             float64
	rechargeCooldown float64
	boosting         bool
	braking          bool

	rolling    bool
	rollTimer  float64
	rollTarget float64
	rollAngle  float64

	fireTimer float64

	rawSteer  mgl64.Vec2
	steer     mgl64.Vec2 // steering applied on the last tick
	freeSteer mgl64.Vec2
	local     mgl64.Vec3 // offset from the rail frame
	freePos   mgl64.Vec3
	heading   mgl64.Quat
	meshRot   mgl64.Quat
	zOffset   float64
	fov       float64

	path     PathFollower
	cams     CameraRig
	viewport Viewport
	aim      *AimTarget
	pool     *ProjectilePool
	world    *World
	collider *Collider
	health   *Health
	bus      *EventBus
	log      zerolog.Logger

	// ShotsFired counts lasers spawned.
	ShotsFired int
}

// NewFlightController builds the player ship. Without a path follower the
// controller logs an error and stays disabled.
func NewFlightController(cfg FlightConfig, deps FlightDeps) *FlightController {
	fc := &FlightController{
		cfg:          cfg,
		mode:         ModeOnRails,
		enabled:      true,
		inputEnabled: true,
		currentSpeed: cfg.BaseSpeed,
		targetSpeed:  cfg.BaseSpeed,
		fuel:         cfg.FuelDuration,
		heading:      mgl64.QuatIdent(),
		meshRot:      mgl64.QuatIdent(),
		zOffset:      cfg.NormalZOffset,
		fov:          cfg.NormalFOV,
		fireTimer:    cfg.FireCooldown,
		path:         deps.Path,
		cams:         deps.Cameras,
		viewport:     deps.Viewport,
		aim:          deps.Aim,
		pool:         deps.Pool,
		world:        deps.World,
		bus:          deps.Bus,
		log:          deps.Log.With().Str("component", "flight").Logger(),
	}
	if fc.viewport == nil {
		fc.viewport = FrameViewport{HalfWidth: cfg.ViewportHalfWidth, HalfHeight: cfg.ViewportHalfHeight}
	}
	if fc.world != nil {
		fc.collider = fc.world.AddSphere(PlayerLabel, TagPlayer, LayerDefault, mgl64.Vec3{}, cfg.HullRadius)
		fc.health = NewHealth(PlayerLabel, cfg.MaxHealth, nil, fc.bus, deps.Log)
		fc.world.AttachHealth(fc.collider.ID, fc.health)
	}
	fc.bus.Subscribe(EventPaused, func(Event) {
		fc.inputEnabled = false
		fc.releaseHeld()
	})
	fc.bus.Subscribe(EventResumed, func(Event) { fc.inputEnabled = true })

	if fc.path == nil {
		fc.log.Error().Msg("no path follower, flight controller disabled")
		fc.enabled = false
		return fc
	}
	fc.path.SetSpeed(fc.currentSpeed)
	fc.syncCollider()
	return fc
}

// Enabled reports whether the controller still accepts ticks.
func (fc *FlightController) Enabled() bool { return fc.enabled }

// InputEnabled reports whether commands are accepted (false while paused).
func (fc *FlightController) InputEnabled() bool { return fc.inputEnabled }

// Mode returns the current flight mode.
func (fc *FlightController) Mode() FlightMode { return fc.mode }

// Health returns the player ship's health, nil without a world.
func (fc *FlightController) Health() *Health { return fc.health }

// MissionComplete reports whether the end of the path was reached.
func (fc *FlightController) MissionComplete() bool { return fc.missionComplete }

// FuelRatio returns remaining boost fuel in [0,1].
func (fc *FlightController) FuelRatio() float64 {
	if fc.cfg.FuelDuration <= 0 {
		return 0
	}
	return fc.fuel / fc.cfg.FuelDuration
}

// State returns a snapshot of the flight state.
func (fc *FlightController) State() FlightState {
	progress := 0.0
	if fc.rolling && fc.cfg.BarrelRollDuration > 0 {
		progress = clamp01(fc.rollTimer / fc.cfg.BarrelRollDuration)
	}
	return FlightState{
		Mode:         fc.mode,
		CurrentSpeed: fc.currentSpeed,
		TargetSpeed:  fc.targetSpeed,
		FuelRatio:    fc.FuelRatio(),
		Boosting:     fc.boosting,
		Braking:      fc.braking,
		Rolling:      fc.rolling,
		RollAngle:    fc.rollAngle,
		RollProgress: progress,
	}
}

// LocalOffset returns the on-rails offset from the rail frame.
func (fc *FlightController) LocalOffset() mgl64.Vec3 { return fc.local }

// MeshRotation returns the visual tilt of the ship mesh.
func (fc *FlightController) MeshRotation() mgl64.Quat { return fc.meshRot }

// Steering returns the steering vector applied on the last tick.
func (fc *FlightController) Steering() mgl64.Vec2 { return fc.steer }

// ZOffset returns the mesh's forward offset from boost/brake.
func (fc *FlightController) ZOffset() float64 { return fc.zOffset }

// FOV returns the on-rails camera field of view in degrees.
func (fc *FlightController) FOV() float64 { return fc.fov }

// WorldPosition returns the ship position in world space.
func (fc *FlightController) WorldPosition() mgl64.Vec3 {
	if fc.mode == ModeFreeFlight || fc.path == nil {
		return fc.freePos
	}
	origin, rot := fc.path.Frame()
	return origin.Add(rot.Rotate(fc.local))
}

// WorldRotation returns the ship body orientation (without mesh tilt).
func (fc *FlightController) WorldRotation() mgl64.Quat {
	if fc.mode == ModeFreeFlight || fc.path == nil {
		return fc.heading
	}
	_, rot := fc.path.Frame()
	return rot
}

// TargetPosition lets turrets aim at the ship.
func (fc *FlightController) TargetPosition() mgl64.Vec3 { return fc.WorldPosition() }

// TargetCollider lets turrets confirm line of sight against the ship.
func (fc *FlightController) TargetCollider() EntityID {
	if fc.collider == nil {
		return 0
	}
	return fc.collider.ID
}

// ApplyInput feeds one frame of input. Events are dropped while paused or
// disabled, and the stick reads as centred.
func (fc *FlightController) ApplyInput(frame InputFrame) {
	if !fc.enabled || !fc.inputEnabled {
		fc.rawSteer = mgl64.Vec2{}
		return
	}
	fc.rawSteer = frame.Steer
	for _, ev := range frame.Events {
		switch ev.Action {
		case ActionBoost:
			fc.SetBoost(ev.Pressed)
		case ActionBrake:
			fc.SetBrake(ev.Pressed)
		case ActionFire:
			if ev.Pressed {
				fc.Fire()
			}
		case ActionRollLeft:
			if ev.Pressed {
				fc.TriggerBarrelRoll(-1)
			}
		case ActionRollRight:
			if ev.Pressed {
				fc.TriggerBarrelRoll(1)
			}
		case ActionToggleMode:
			if ev.Pressed {
				fc.ToggleFlightMode()
			}
		}
	}
}

// Tick advances the ship by dt seconds.
func (fc *FlightController) Tick(dt float64) {
	if !fc.enabled {
		return
	}
	fc.fireTimer += dt

	if fc.mode == ModeOnRails {
		fc.handleOnRails(dt)
	} else {
		fc.handleFreeFlight(dt)
	}

	if fc.rechargeCooldown > 0 {
		fc.rechargeCooldown -= dt
	}
	fc.updateFuel(dt)
	fc.updateBarrelRoll(dt)

	fc.currentSpeed = smoothDamp(fc.currentSpeed, fc.targetSpeed, &fc.speedVelocity, fc.cfg.SpeedSmoothTime, dt)
	fc.updateVisualOffsets(dt)

	if fc.mode == ModeOnRails {
		fc.path.SetSpeed(fc.currentSpeed)
	}
	fc.syncCollider()
	fc.checkMissionComplete()
}

func (fc *FlightController) handleOnRails(dt float64) {
	steer := fc.rawSteer
	if fc.aim != nil {
		fc.aim.Update(fc.rawSteer, dt)
		steer = fc.aim.Steering()
	}
	fc.steer = steer

	strafe := mgl64.Vec3{steer.X(), steer.Y(), 0}.Mul(fc.cfg.SteeringSpeed * dt)
	fc.local = fc.clampToViewport(fc.local.Add(strafe))

	pitch := -steer.Y() * fc.cfg.MaxPitchAngle
	yaw := steer.X() * fc.cfg.MaxYawAngle
	roll := -steer.X()*fc.cfg.MaxRollAngle + fc.rollAngle
	fc.meshRot = lerpQuat(fc.meshRot, Euler(pitch, yaw, roll), fc.cfg.TiltResponsiveness*dt)
}

func (fc *FlightController) clampToViewport(local mgl64.Vec3) mgl64.Vec3 {
	vp := fc.viewport.ToViewport(local)
	vp[0] = clamp01(vp[0])
	vp[1] = clamp01(vp[1])
	return fc.viewport.FromViewport(vp)
}

func (fc *FlightController) handleFreeFlight(dt float64) {
	target := mgl64.Vec2{fc.rawSteer.X(), -fc.rawSteer.Y()}
	fc.freeSteer = lerpVec2(fc.freeSteer, target, fc.cfg.SteeringSpeed*dt)
	s := fc.freeSteer
	fc.steer = s

	// Heading stays fixed; the stick only strafes.
	strafe := fc.currentSpeed * fc.cfg.FreeFlightStrafeFactor * dt
	fc.freePos = fc.freePos.
		Add(Forward(fc.heading).Mul(fc.currentSpeed * dt)).
		Add(Right(fc.heading).Mul(s.X() * strafe)).
		Add(Up(fc.heading).Mul(s.Y() * strafe))

	target3 := Euler(-s.Y()*fc.cfg.MaxPitchAngle, s.X()*fc.cfg.MaxYawAngle, -s.X()*fc.cfg.MaxRollAngle)
	fc.meshRot = lerpQuat(fc.meshRot, target3, fc.cfg.FreeFlightResponsiveness*dt)
}

// releaseHeld drops boost, brake and the stick, as if every held control was
// let go. Releases that happen while paused are never delivered.
func (fc *FlightController) releaseHeld() {
	fc.SetBoost(false)
	fc.SetBrake(false)
	fc.rawSteer = mgl64.Vec2{}
}

// SetBoost handles the boost button. Boost engages only on a full tank.
func (fc *FlightController) SetBoost(pressed bool) {
	if pressed && fc.FuelRatio() >= 1 {
		fc.boosting = true
		fc.braking = false
		fc.targetSpeed = fc.cfg.BaseSpeed + fc.cfg.BoostDelta
		return
	}
	fc.boosting = false
	if !fc.braking {
		fc.targetSpeed = fc.cfg.BaseSpeed
	}
}

// SetBrake handles the brake button. Brake engages only on a full tank.
func (fc *FlightController) SetBrake(pressed bool) {
	if pressed && fc.FuelRatio() >= 1 {
		fc.braking = true
		fc.boosting = false
		fc.targetSpeed = fc.cfg.BaseSpeed - fc.cfg.BrakeDelta
		return
	}
	fc.braking = false
	if !fc.boosting {
		fc.targetSpeed = fc.cfg.BaseSpeed
	}
}

// updateFuel drains while boosting or braking and refills only once the
// recharge cooldown has run out.
func (fc *FlightController) updateFuel(dt float64) {
	if (fc.boosting || fc.braking) && fc.fuel > 0 {
		fc.fuel -= dt
		fc.rechargeCooldown = fc.cfg.RechargeDelay
		if fc.fuel <= 0 {
			fc.fuel = 0
			fc.boosting = false
			fc.braking = false
			fc.targetSpeed = fc.cfg.BaseSpeed
			fc.log.Debug().Msg("fuel exhausted")
		}
		return
	}
	if !fc.boosting && !fc.braking && fc.rechargeCooldown <= 0 {
		fc.fuel = min(fc.cfg.FuelDuration, fc.fuel+dt*fc.cfg.FuelRecoveryRate)
	}
}

// TriggerBarrelRoll starts a full roll; dir -1 rolls left, +1 right.
// Ignored while a roll is in progress.
func (fc *FlightController) TriggerBarrelRoll(dir int) {
	if fc.rolling || dir == 0 {
		return
	}
	fc.rolling = true
	fc.rollTimer = 0
	fc.rollTarget = fc.rollAngle + 360*float64(-dir)
}

func (fc *FlightController) updateBarrelRoll(dt float64) {
	if !fc.rolling {
		return
	}
	fc.rollTimer += dt
	t := 1.0
	if fc.cfg.BarrelRollDuration > 0 {
		t = clamp01(fc.rollTimer / fc.cfg.BarrelRollDuration)
	}
	fc.rollAngle = lerp(0, fc.rollTarget, smoothStep(0, 1, t))
	if t >= 1 {
		fc.rolling = false
		fc.rollAngle = 0
	}
}

// ToggleFlightMode swaps between on-rails and free flight and hands render
// priority to the matching camera.
func (fc *FlightController) ToggleFlightMode() {
	if !fc.enabled {
		return
	}
	if fc.mode == ModeOnRails {
		fc.setPriorities(1, 2)
		fc.freePos = fc.WorldPosition()
		fc.heading = fc.WorldRotation()
		fc.freeSteer = mgl64.Vec2{}
		fc.mode = ModeFreeFlight
		fc.path.SetEnabled(false)
		fc.bus.Publish(Event{Kind: EventCameraChanged, Source: "player", Value: int(CameraFreeFlight)})
	} else {
		fc.setPriorities(2, 1)
		fc.mode = ModeOnRails
		fc.path.SetEnabled(true)
		fc.bus.Publish(Event{Kind: EventCameraChanged, Source: "player", Value: int(CameraOnRails)})
	}
	fc.log.Info().Stringer("mode", fc.mode).Msg("flight mode changed")
}

func (fc *FlightController) setPriorities(rails, free int) {
	if fc.cams == nil {
		return
	}
	fc.cams.SetPriority(CameraOnRails, rails)
	fc.cams.SetPriority(CameraFreeFlight, free)
}

// Fire spawns a laser from each muzzle if the cooldown allows.
func (fc *FlightController) Fire() {
	if !fc.enabled || fc.pool == nil {
		return
	}
	if fc.fireTimer < fc.cfg.FireCooldown {
		return
	}
	fc.fireTimer = 0

	pos := fc.WorldPosition()
	rot := fc.WorldRotation()
	for _, side := range []float64{-1, 1} {
		muzzle := pos.Add(rot.Rotate(mgl64.Vec3{side * fc.cfg.MuzzleSpread, 0, fc.cfg.HullRadius}))
		fc.pool.Fire(muzzle, rot, TagPlayer)
		fc.ShotsFired++
	}
}

func (fc *FlightController) updateVisualOffsets(dt float64) {
	targetZ, targetFOV := fc.cfg.NormalZOffset, fc.cfg.NormalFOV
	switch {
	case fc.boosting:
		targetZ, targetFOV = fc.cfg.BoostZOffset, fc.cfg.BoostFOV
	case fc.braking:
		targetZ, targetFOV = fc.cfg.BrakeZOffset, fc.cfg.BrakeFOV
	}
	rate := fc.cfg.PositionTransitionSpeed * dt
	fc.zOffset = lerp(fc.zOffset, targetZ, rate)
	fc.fov = lerp(fc.fov, targetFOV, rate)
}

func (fc *FlightController) syncCollider() {
	if fc.collider != nil {
		fc.collider.Center = fc.WorldPosition()
	}
}

func (fc *FlightController) checkMissionComplete() {
	if fc.missionComplete {
		return
	}
	if fc.path.Position() >= fc.path.Length() {
		fc.missionComplete = true
		fc.log.Info().Float64("distance", fc.path.Position()).Msg("mission complete, end of path reached")
		fc.Disable()
		fc.bus.Publish(Event{Kind: EventMissionComplete, Source: "player"})
	}
}

// Disable stops all movement, input and collision. Safe to call repeatedly.
func (fc *FlightController) Disable() {
	if !fc.enabled {
		return
	}
	fc.enabled = false
	fc.boosting = false
	fc.braking = false
	fc.rawSteer = mgl64.Vec2{}
	if fc.path != nil {
		fc.path.SetEnabled(false)
	}
	if fc.collider != nil {
		fc.collider.SetActive(false)
	}
	fc.log.Info().Msg("flight controller disabled")
}

// Reset restores the ship for a new play session on a path rewound by the
// caller.
func (fc *FlightController) Reset() {
	fc.mode = ModeOnRails
	fc.enabled = fc.path != nil
	fc.missionComplete = false
	fc.currentSpeed = fc.cfg.BaseSpeed
	fc.targetSpeed = fc.cfg.BaseSpeed
	fc.speedVelocity = 0
	fc.fuel = fc.cfg.FuelDuration
	fc.rechargeCooldown = 0
	fc.boosting, fc.braking = false, false
	fc.rolling, fc.rollTimer, fc.rollTarget, fc.rollAngle = false, 0, 0, 0
	fc.fireTimer = fc.cfg.FireCooldown
	fc.rawSteer, fc.steer, fc.freeSteer = mgl64.Vec2{}, mgl64.Vec2{}, mgl64.Vec2{}
	fc.local = mgl64.Vec3{}
	fc.meshRot = mgl64.QuatIdent()
	fc.zOffset, fc.fov = fc.cfg.NormalZOffset, fc.cfg.NormalFOV
	if fc.aim != nil {
		fc.aim.Reset()
	}
	if fc.path != nil {
		fc.path.SetEnabled(true)
		fc.path.SetSpeed(fc.currentSpeed)
	}
	fc.setPriorities(2, 1)
	if fc.collider != nil {
		fc.collider.SetActive(true)
	}
	if fc.health != nil {
		fc.health.Reset()
	}
	fc.syncCollider()
}
