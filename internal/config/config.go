// Package config loads the rail shooter tuning through viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Garsondee/Rail-Shooter/internal/game"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "railshooter.cfg.yaml"

// PoolConfig sizes the projectile pools.
type PoolConfig struct {
	Player int `mapstructure:"player"`
	Enemy  int `mapstructure:"enemy"`
}

// StoreConfig locates the settings and run-history database.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ViewerConfig sizes the debug window.
type ViewerConfig struct {
	Title  string `mapstructure:"title"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

// TelemetryConfig toggles the otel counters.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config is the typed form of every key set by Load.
type Config struct {
	LogLevel string `mapstructure:"logLevel"`
	LogFile  string `mapstructure:"logFile"`
	Seed     int64  `mapstructure:"seed"`
	Course   string `mapstructure:"course"`

	Flight     game.FlightConfig   `mapstructure:"flight"`
	Aim        game.AimConfig      `mapstructure:"aim"`
	Turret     game.TurretConfig   `mapstructure:"turret"`
	Saucer     game.SaucerConfig   `mapstructure:"saucer"`
	Projectile game.ProjectileSpec `mapstructure:"projectile"`
	Pools      PoolConfig          `mapstructure:"pools"`
	Store      StoreConfig         `mapstructure:"store"`
	Viewer     ViewerConfig        `mapstructure:"viewer"`
	Telemetry  TelemetryConfig     `mapstructure:"telemetry"`
}

// Load sets default values and reads FileName from configDir. A missing file
// leaves the defaults in place; a malformed one is an error. Keys can also be
// overridden from RAILSHOOTER_* environment variables.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFile", "")
	viper.SetDefault("seed", 1)
	viper.SetDefault("course", "")

	f := game.DefaultFlightConfig()
	viper.SetDefault("flight.baseSpeed", f.BaseSpeed)
	viper.SetDefault("flight.boostDelta", f.BoostDelta)
	viper.SetDefault("flight.brakeDelta", f.BrakeDelta)
	viper.SetDefault("flight.steeringSpeed", f.SteeringSpeed)
	viper.SetDefault("flight.speedSmoothTime", f.SpeedSmoothTime)
	viper.SetDefault("flight.fuelDuration", f.FuelDuration)
	viper.SetDefault("flight.fuelRecoveryRate", f.FuelRecoveryRate)
	viper.SetDefault("flight.rechargeDelay", f.RechargeDelay)
	viper.SetDefault("flight.maxRollAngle", f.MaxRollAngle)
	viper.SetDefault("flight.maxYawAngle", f.MaxYawAngle)
	viper.SetDefault("flight.maxPitchAngle", f.MaxPitchAngle)
	viper.SetDefault("flight.tiltResponsiveness", f.TiltResponsiveness)
	viper.SetDefault("flight.freeFlightResponsiveness", f.FreeFlightResponsiveness)
	viper.SetDefault("flight.freeFlightStrafeFactor", f.FreeFlightStrafeFactor)
	viper.SetDefault("flight.barrelRollDuration", f.BarrelRollDuration)
	viper.SetDefault("flight.fireCooldown", f.FireCooldown)
	viper.SetDefault("flight.positionTransitionSpeed", f.PositionTransitionSpeed)
	viper.SetDefault("flight.normalZOffset", f.NormalZOffset)
	viper.SetDefault("flight.boostZOffset", f.BoostZOffset)
	viper.SetDefault("flight.brakeZOffset", f.BrakeZOffset)
	viper.SetDefault("flight.normalFOV", f.NormalFOV)
	viper.SetDefault("flight.boostFOV", f.BoostFOV)
	viper.SetDefault("flight.brakeFOV", f.BrakeFOV)
	viper.SetDefault("flight.viewportHalfWidth", f.ViewportHalfWidth)
	viper.SetDefault("flight.viewportHalfHeight", f.ViewportHalfHeight)
	viper.SetDefault("flight.hullRadius", f.HullRadius)
	viper.SetDefault("flight.maxHealth", f.MaxHealth)
	viper.SetDefault("flight.muzzleSpread", f.MuzzleSpread)

	a := game.DefaultAimConfig()
	viper.SetDefault("aim.maxRadius", a.MaxRadius)
	viper.SetDefault("aim.returnSpeed", a.ReturnSpeed)
	viper.SetDefault("aim.deadzone", a.Deadzone)
	viper.SetDefault("aim.invertY", a.InvertY)

	tc := game.DefaultTurretConfig()
	viper.SetDefault("turret.detectionRadius", tc.DetectionRadius)
	viper.SetDefault("turret.fieldOfView", tc.FieldOfView)
	viper.SetDefault("turret.rotationSpeed", tc.RotationSpeed)
	viper.SetDefault("turret.fireRate", tc.FireRate)
	viper.SetDefault("turret.aimTolerance", tc.AimTolerance)
	viper.SetDefault("turret.maxHealth", tc.MaxHealth)
	viper.SetDefault("turret.bodyRadius", tc.BodyRadius)

	sc := game.DefaultSaucerConfig()
	viper.SetDefault("saucer.hoverHeight", sc.HoverHeight)
	viper.SetDefault("saucer.hoverSpeed", sc.HoverSpeed)
	viper.SetDefault("saucer.spinSpeed", sc.SpinSpeed)
	viper.SetDefault("saucer.maxHealth", sc.MaxHealth)
	viper.SetDefault("saucer.bodyRadius", sc.BodyRadius)
	viper.SetDefault("saucer.maxHoverPhase", sc.MaxHoverPhase)

	p := game.DefaultProjectileSpec()
	viper.SetDefault("projectile.speed", p.Speed)
	viper.SetDefault("projectile.lifetime", p.Lifetime)
	viper.SetDefault("projectile.damage", p.Damage)
	viper.SetDefault("projectile.radius", p.Radius)

	s := game.DefaultSessionConfig()
	viper.SetDefault("pools.player", s.PlayerPoolSize)
	viper.SetDefault("pools.enemy", s.EnemyPoolSize)

	viper.SetDefault("store.path", "./railshooter.db")

	viper.SetDefault("viewer.title", "Rail Shooter")
	viper.SetDefault("viewer.width", 1280)
	viper.SetDefault("viewer.height", 720)

	viper.SetDefault("telemetry.enabled", true)

	viper.SetEnvPrefix("RAILSHOOTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("yaml")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// Get unmarshals the loaded keys into a Config. Turret head and muzzle
// offsets are not configurable and keep their stock values.
func Get() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	def := game.DefaultTurretConfig()
	cfg.Turret.HeadOffset = def.HeadOffset
	cfg.Turret.MuzzleOffset = def.MuzzleOffset
	return cfg, nil
}

// Session converts the loaded tuning to a session config.
func (c Config) Session() game.SessionConfig {
	return game.SessionConfig{
		Flight:         c.Flight,
		Aim:            c.Aim,
		Projectile:     c.Projectile,
		PlayerPoolSize: c.Pools.Player,
		EnemyPoolSize:  c.Pools.Enemy,
		Seed:           c.Seed,
	}
}

// ConfigFile returns the path of the file that was read, or "" when running
// on defaults.
func ConfigFile() string {
	return viper.ConfigFileUsed()
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
