package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// result in radians
func QuatToEuler(q mgl64.Quat) (e mgl64.Vec3) {
	sinr_cosp := 2 * (q.W*q.X() + q.Y()*q.Z())
	cosr_cosp := 1 - 2*(q.X()*q.X()+q.Y()*q.Y())
	e[0] = math.Atan2(sinr_cosp, cosr_cosp)

	sinp := 2 * (q.W*q.Y() - q.Z()*q.X())
	if math.Abs(sinp) >= 1 {
		e[1] = math.Copysign(math.Pi/2, sinp)
	} else {
		e[1] = math.Asin(sinp)
	}

	siny_cosp := 2 * (q.W*q.Z() + q.X()*q.Y())
	cosy_cosp := 1 - 2*(q.Y()*q.Y()+q.Z()*q.Z())
	e[2] = math.Atan2(siny_cosp, cosy_cosp)

	return e
}

func RadiansToDegreeV3(v mgl64.Vec3) mgl64.Vec3 {
	return v.Mul(180.0 / math.Pi)
}

// Decompose splits an affine matrix into translation, rotation (euler XYZ,
// radians) and scale. Mirroring is folded into a negative X scale.
func Decompose(m mgl64.Mat4) (translation, rotation, scale mgl64.Vec3) {
	translation = m.Col(3).Vec3()
	c0, c1, c2 := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
	scale = mgl64.Vec3{c0.Len(), c1.Len(), c2.Len()}
	if m.Mat3().Det() < 0 {
		scale[0] = -scale[0]
	}
	for i := range scale {
		if scale[i] == 0 {
			return translation, rotation, scale
		}
	}

	r := mgl64.Ident4()
	r.SetCol(0, c0.Mul(1/scale[0]).Vec4(0))
	r.SetCol(1, c1.Mul(1/scale[1]).Vec4(0))
	r.SetCol(2, c2.Mul(1/scale[2]).Vec4(0))
	rotation = QuatToEuler(mgl64.Mat4ToQuat(r).Normalize())
	return translation, rotation, scale
}
