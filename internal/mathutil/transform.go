package mathutil

import "github.com/go-gl/mathgl/mgl64"

// Scale returns a 4×4 scale matrix.
func Scale(v mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Scale3D(v[0], v[1], v[2])
}

// Translate returns a 4×4 translation matrix.
func Translate(v mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(v[0], v[1], v[2])
}

// Compose multiplies left to right: Compose(a, b, c) == a × b × c.
func Compose(ms ...mgl64.Mat4) mgl64.Mat4 {
	out := mgl64.Ident4()
	for _, m := range ms {
		out = out.Mul4(m)
	}
	return out
}

// TRS builds Translate(t) × r × Scale(s).
func TRS(t mgl64.Vec3, r mgl64.Mat4, s mgl64.Vec3) mgl64.Mat4 {
	return Translate(t).Mul4(r).Mul4(Scale(s))
}

// TransformPoint transforms a point (w=1) by m.
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDir transforms a direction (w=0) by m.
func TransformDir(m mgl64.Mat4, d mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}

// Normalize returns v scaled to unit length, or the zero vector when v is
// (nearly) zero. mgl64's Normalize divides by zero in that case.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}
