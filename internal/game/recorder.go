package game

// Recorder receives gameplay counters. internal/telemetry implements it with
// OpenTelemetry instruments; nopRecorder is used when none is supplied.
type Recorder interface {
	ProjectileFired(pool string)
	PoolGrew(pool string, size int)
	EnemyDefeated(label string)
	RingPassed()
}

type nopRecorder struct{}

func (nopRecorder) ProjectileFired(string) {}
func (nopRecorder) PoolGrew(string, int)   {}
func (nopRecorder) EnemyDefeated(string)   {}
func (nopRecorder) RingPassed()            {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
