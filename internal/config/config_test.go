package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `
logLevel: debug
seed: 42
course: courses/canyon.yaml
flight:
  baseSpeed: 8
  fuelDuration: 3
aim:
  invertY: false
turret:
  fireRate: 0.5
pools:
  enemy: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 8.0, viper.GetFloat64("flight.baseSpeed"))
	assert.Equal(t, filepath.Join(dir, FileName), ConfigFile())

	c, err := Get()
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, "courses/canyon.yaml", c.Course)
	assert.Equal(t, 8.0, c.Flight.BaseSpeed)
	assert.Equal(t, 3.0, c.Flight.FuelDuration)
	assert.Equal(t, 10.0, c.Flight.BoostDelta, "unset keys keep their defaults")
	assert.False(t, c.Aim.InvertY)
	assert.Equal(t, 0.5, c.Turret.FireRate)
	assert.Equal(t, 4, c.Pools.Enemy)
	assert.Equal(t, 20, c.Pools.Player)
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{}\n"), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./railshooter.db", viper.GetString("store.path"))
	assert.Equal(t, 5.0, viper.GetFloat64("flight.baseSpeed"))
	assert.Equal(t, 10.0, viper.GetFloat64("flight.boostDelta"))
	assert.Equal(t, 5.0, viper.GetFloat64("flight.brakeDelta"))
	assert.Equal(t, 2.0, viper.GetFloat64("flight.fuelDuration"))
	assert.Equal(t, 0.4, viper.GetFloat64("flight.rechargeDelay"))
	assert.Equal(t, 0.1, viper.GetFloat64("flight.fireCooldown"))
	assert.Equal(t, true, viper.GetBool("aim.invertY"))
	assert.Equal(t, 25.0, viper.GetFloat64("turret.detectionRadius"))
	assert.Equal(t, 90.0, viper.GetFloat64("turret.fieldOfView"))
	assert.Equal(t, 1.0, viper.GetFloat64("turret.fireRate"))
	assert.Equal(t, 5.0, viper.GetFloat64("turret.aimTolerance"))
	assert.Equal(t, 25, viper.GetInt("saucer.maxHealth"))
	assert.Equal(t, 100.0, viper.GetFloat64("projectile.speed"))
	assert.Equal(t, 2.0, viper.GetFloat64("projectile.lifetime"))
	assert.Equal(t, 10, viper.GetInt("projectile.damage"))
	assert.Equal(t, 20, viper.GetInt("pools.player"))
	assert.Equal(t, 10, viper.GetInt("pools.enemy"))
	assert.Equal(t, true, viper.GetBool("telemetry.enabled"))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(filepath.Join(t.TempDir(), "nonexistent"))
	require.NoError(t, err)
	assert.Equal(t, "", ConfigFile())

	c, err := Get()
	require.NoError(t, err)
	assert.Equal(t, 5.0, c.Flight.BaseSpeed)
	assert.Equal(t, 1280, c.Viewer.Width)
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("flight: [unclosed\n"), 0644))

	err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("RAILSHOOTER_FLIGHT_BASESPEED", "12")
	t.Setenv("RAILSHOOTER_LOGLEVEL", "warn")

	require.NoError(t, Load(t.TempDir()))

	c, err := Get()
	require.NoError(t, err)
	assert.Equal(t, 12.0, c.Flight.BaseSpeed)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestConfig_Session(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(t.TempDir()))

	c, err := Get()
	require.NoError(t, err)
	s := c.Session()
	assert.Equal(t, c.Flight, s.Flight)
	assert.Equal(t, c.Aim, s.Aim)
	assert.Equal(t, c.Projectile, s.Projectile)
	assert.Equal(t, 20, s.PlayerPoolSize)
	assert.Equal(t, 10, s.EnemyPoolSize)
	assert.Equal(t, int64(1), s.Seed)
	assert.Equal(t, 1.5, c.Turret.MuzzleOffset.Z(), "offsets keep stock values")
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
	viper.Set("flag", true)
	assert.True(t, GetBool("flag"))
}
