package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Local axes. Forward is +Z, matching the course files.
var (
	axisForward = mgl64.Vec3{0, 0, 1}
	axisRight   = mgl64.Vec3{1, 0, 0}
	axisUp      = mgl64.Vec3{0, 1, 0}
)

// Forward returns the +Z axis rotated by q.
func Forward(q mgl64.Quat) mgl64.Vec3 {
	return q.Rotate(axisForward)
}

// Right returns the +X axis rotated by q.
func Right(q mgl64.Quat) mgl64.Vec3 {
	return q.Rotate(axisRight)
}

// Up returns the +Y axis rotated by q.
func Up(q mgl64.Quat) mgl64.Vec3 {
	return q.Rotate(axisUp)
}

// LookRotation returns the rotation that points +Z along dir with +Y kept as
// close to world up as possible, so turning paths do not roll. A zero
// direction yields the identity; a vertical one falls back to the shortest arc.
func LookRotation(dir mgl64.Vec3) mgl64.Quat {
	if dir.Len() < 1e-9 {
		return mgl64.QuatIdent()
	}
	f := dir.Normalize()
	r := axisUp.Cross(f)
	if r.Len() < 1e-9 {
		return mgl64.QuatBetweenVectors(axisForward, f)
	}
	r = r.Normalize()
	u := f.Cross(r)
	return mgl64.Mat4ToQuat(mgl64.Mat3FromCols(r, u, f).Mat4()).Normalize()
}

// AngleBetween returns the unsigned angle between a and b in degrees.
func AngleBetween(a, b mgl64.Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la < 1e-9 || lb < 1e-9 {
		return 0
	}
	cos := mgl64.Clamp(a.Dot(b)/(la*lb), -1, 1)
	return mgl64.RadToDeg(math.Acos(cos))
}

// Euler builds a rotation from pitch (X), yaw (Y) and roll (Z) in degrees.
// Roll is applied first, then pitch, then yaw.
func Euler(pitch, yaw, roll float64) mgl64.Quat {
	return mgl64.AnglesToQuat(
		mgl64.DegToRad(yaw),
		mgl64.DegToRad(pitch),
		mgl64.DegToRad(roll),
		mgl64.YXZ,
	)
}

// YawQuat rotates about the world up axis by deg degrees.
func YawQuat(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), axisUp)
}

// lerpQuat is a normalized lerp with t clamped to [0,1].
func lerpQuat(a, b mgl64.Quat, t float64) mgl64.Quat {
	t = clamp01(t)
	// Take the short way round.
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatNlerp(a, b, t)
}

// slerpQuat is a spherical interpolation with t clamped to [0,1].
func slerpQuat(a, b mgl64.Quat, t float64) mgl64.Quat {
	return mgl64.QuatSlerp(a, b, clamp01(t)).Normalize()
}

func clamp01(v float64) float64 {
	return mgl64.Clamp(v, 0, 1)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*clamp01(t)
}

func lerpVec2(a, b mgl64.Vec2, t float64) mgl64.Vec2 {
	t = clamp01(t)
	return a.Add(b.Sub(a).Mul(t))
}

func lerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	t = clamp01(t)
	return a.Add(b.Sub(a).Mul(t))
}

// smoothStep eases t in [0,1] with 3t²-2t³ and maps it onto [from,to].
func smoothStep(from, to, t float64) float64 {
	t = clamp01(t)
	t = -2*t*t*t + 3*t*t
	return to*t + from*(1-t)
}

// smoothDamp moves current toward target like a critically damped spring.
// velocity carries state between calls.
func smoothDamp(current, target float64, velocity *float64, smoothTime, dt float64) float64 {
	if dt <= 0 {
		return current
	}
	smoothTime = math.Max(0.0001, smoothTime)
	omega := 2 / smoothTime
	x := omega * dt
	exp := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)
	change := current - target
	temp := (*velocity + omega*change) * dt
	*velocity = (*velocity - omega*temp) * exp
	out := target + (change+temp)*exp
	// Do not overshoot.
	if (target-current > 0) == (out > target) {
		out = target
		*velocity = (out - target) / dt
	}
	return out
}

// normalizeDegrees wraps an angle to [-180, 180].
func normalizeDegrees(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}
