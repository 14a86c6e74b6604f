package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AngleVectors converts pitch/yaw/roll degrees into forward, right and up
// unit vectors.
func AngleVectors(angles mgl64.Vec3) (forward, right, up mgl64.Vec3) {
	sy, cy := math.Sincos(mgl64.DegToRad(angles[Yaw]))
	sp, cp := math.Sincos(mgl64.DegToRad(angles[Pitch]))
	sr, cr := math.Sincos(mgl64.DegToRad(angles[Roll]))

	forward = mgl64.Vec3{cp * cy, cp * sy, -sp}
	right = mgl64.Vec3{
		-sr*sp*cy + cr*sy,
		-sr*sp*sy - cr*cy,
		-sr * cp,
	}
	up = mgl64.Vec3{
		cr*sp*cy + sr*sy,
		cr*sp*sy - sr*cy,
		cr * cp,
	}
	return forward, right, up
}

// ProjectSource offsets point by (forward, right, up) distances along the
// given axes. The vertical component is applied in world space.
func ProjectSource(point, offset, forward, right mgl64.Vec3) mgl64.Vec3 {
	p := point.Add(forward.Mul(offset[0])).Add(right.Mul(offset[1]))
	p[2] += offset[2]
	return p
}

// Angle2Short packs degrees into the 16-bit network angle representation.
func Angle2Short(deg float64) int16 {
	return int16(int(deg*65536/360) & 65535)
}
