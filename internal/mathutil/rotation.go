package mathutil

import "github.com/go-gl/mathgl/mgl64"

// RotateX returns a 4×4 rotation around the X axis. Angle in degrees.
func RotateX(deg float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DX(mgl64.DegToRad(deg))
}

// RotateY returns a 4×4 rotation around the Y axis. Angle in degrees.
func RotateY(deg float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DY(mgl64.DegToRad(deg))
}

// RotateZ returns a 4×4 rotation around the Z axis. Angle in degrees.
func RotateZ(deg float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DZ(mgl64.DegToRad(deg))
}

// RotateAxis dispatches to RotateX/Y/Z.
func RotateAxis(axis int, deg float64) mgl64.Mat4 {
	switch axis {
	case 0:
		return RotateX(deg)
	case 1:
		return RotateY(deg)
	case 2:
		return RotateZ(deg)
	}
	return mgl64.Ident4()
}

// RotateTowards returns the rotation that takes +Y onto the direction of v.
// A zero vector yields identity.
func RotateTowards(v mgl64.Vec3) mgl64.Mat4 {
	l := v.Len()
	if l < 1e-12 {
		return mgl64.Ident4()
	}
	return mgl64.QuatBetweenVectors(mgl64.Vec3{0, 1, 0}, v.Mul(1/l)).Mat4()
}
