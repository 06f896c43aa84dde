package value

import "github.com/x448/float16"

// Lerp mixes two values of the same TypeID at parameter t in [0, 1].
// Mixable types are the half/float/double scalars, their vector, quat, and
// matrix composites, timecodes, role-typed variants thereof, and 1-D
// arrays of all of these (arrays mix element-wise and require equal
// lengths). ok is false for everything else; callers fall back to held
// semantics.
func Lerp(a, b Value, t float64) (Value, bool) {
	if a.TypeID() != b.TypeID() {
		return Value{}, false
	}
	mixed, ok := lerpUnderlying(a, b, t)
	if !ok {
		return Value{}, false
	}
	// Restore the role tag of the inputs.
	out, err := Retype(mixed, a.TypeID())
	if err != nil {
		return Value{}, false
	}
	return out, true
}

func lerpUnderlying(a, b Value, t float64) (Value, bool) {
	switch a.UnderlyingTypeID() {
	case TypeHalf:
		return lerpAs(a, b, t, lerpHalf)
	case TypeFloat:
		return lerpAs(a, b, t, lerpF32)
	case TypeDouble:
		return lerpAs(a, b, t, lerpF64)
	case TypeTimeCode:
		return lerpAs(a, b, t, func(x, y TimeCode, t float64) TimeCode {
			return TimeCode(lerpF64(float64(x), float64(y), t))
		})
	case TypeHalf2:
		return lerpAs(a, b, t, lerpArr2[Half2](lerpHalf))
	case TypeHalf3:
		return lerpAs(a, b, t, lerpArr3[Half3](lerpHalf))
	case TypeHalf4:
		return lerpAs(a, b, t, lerpArr4[Half4](lerpHalf))
	case TypeFloat2:
		return lerpAs(a, b, t, lerpArr2[Float2](lerpF32))
	case TypeFloat3:
		return lerpAs(a, b, t, lerpArr3[Float3](lerpF32))
	case TypeFloat4:
		return lerpAs(a, b, t, lerpArr4[Float4](lerpF32))
	case TypeDouble2:
		return lerpAs(a, b, t, lerpArr2[Double2](lerpF64))
	case TypeDouble3:
		return lerpAs(a, b, t, lerpArr3[Double3](lerpF64))
	case TypeDouble4:
		return lerpAs(a, b, t, lerpArr4[Double4](lerpF64))
	case TypeQuath:
		return lerpAs(a, b, t, lerpArr4[Quath](lerpHalf))
	case TypeQuatf:
		return lerpAs(a, b, t, lerpArr4[Quatf](lerpF32))
	case TypeQuatd:
		return lerpAs(a, b, t, lerpArr4[Quatd](lerpF64))
	case TypeMatrix2d:
		return lerpAs(a, b, t, lerpMat2)
	case TypeMatrix3d:
		return lerpAs(a, b, t, lerpMat3)
	case TypeMatrix4d:
		return lerpAs(a, b, t, lerpMat4)

	case TypeHalf | ArrayBit:
		return lerpSliceAs(a, b, t, lerpHalf)
	case TypeFloat | ArrayBit:
		return lerpSliceAs(a, b, t, lerpF32)
	case TypeDouble | ArrayBit:
		return lerpSliceAs(a, b, t, lerpF64)
	case TypeHalf2 | ArrayBit:
		return lerpSliceAs(a, b, t, lerpArr2[Half2](lerpHalf))
	case TypeHalf3 | ArrayBit:
		return lerpSliceAs(a, b, t, lerpArr3[Half3](lerpHalf))
	case TypeHalf4 | ArrayBit:
		return lerpSliceAs(a, b, t, lerpArr4[Half4](lerpHalf))
	case TypeFloat2 | ArrayBit:
		return lerpSliceAs(a, b, t, lerpArr2[Float2](lerpF32))
	case TypeFloat3 | ArrayBit:
		return lerpSliceAs(a, b, t, lerpArr3[Float3](lerpF32))
	case TypeFloat4 | ArrayBit:
		return lerpSliceAs(a, b, t, lerpArr4[Float4](lerpF32))
	case TypeDouble2 | ArrayBit:
		return lerpSliceAs(a, b, t, lerpArr2[Double2](lerpF64))
	case TypeDouble3 | ArrayBit:
		return lerpSliceAs(a, b, t, lerpArr3[Double3](lerpF64))
	case TypeDouble4 | ArrayBit:
		return lerpSliceAs(a, b, t, lerpArr4[Double4](lerpF64))
	case TypeQuath | ArrayBit:
		return lerpSliceAs(a, b, t, lerpArr4[Quath](lerpHalf))
	case TypeQuatf | ArrayBit:
		return lerpSliceAs(a, b, t, lerpArr4[Quatf](lerpF32))
	case TypeQuatd | ArrayBit:
		return lerpSliceAs(a, b, t, lerpArr4[Quatd](lerpF64))
	case TypeMatrix2d | ArrayBit:
		return lerpSliceAs(a, b, t, lerpMat2)
	case TypeMatrix3d | ArrayBit:
		return lerpSliceAs(a, b, t, lerpMat3)
	case TypeMatrix4d | ArrayBit:
		return lerpSliceAs(a, b, t, lerpMat4)
	}
	return Value{}, false
}

func lerpAs[T any](a, b Value, t float64, mix func(T, T, float64) T) (Value, bool) {
	av, ok := As[T](a)
	if !ok {
		return Value{}, false
	}
	bv, ok := As[T](b)
	if !ok {
		return Value{}, false
	}
	return New(mix(av, bv, t)), true
}

func lerpSliceAs[T any](a, b Value, t float64, mix func(T, T, float64) T) (Value, bool) {
	av, ok := As[[]T](a)
	if !ok {
		return Value{}, false
	}
	bv, ok := As[[]T](b)
	if !ok || len(av) != len(bv) {
		return Value{}, false
	}
	out := make([]T, len(av))
	for i := range av {
		out[i] = mix(av[i], bv[i], t)
	}
	return New(out), true
}

func lerpF64(a, b, t float64) float64 { return a + t*(b-a) }

func lerpF32(a, b float32, t float64) float32 {
	return a + float32(t)*(b-a)
}

func lerpHalf(a, b Half, t float64) Half {
	return float16.Fromfloat32(lerpF32(a.Float32(), b.Float32(), t))
}

func lerpArr2[A ~[2]E, E any](mix func(E, E, float64) E) func(A, A, float64) A {
	return func(a, b A, t float64) A {
		return A{mix(a[0], b[0], t), mix(a[1], b[1], t)}
	}
}

func lerpArr3[A ~[3]E, E any](mix func(E, E, float64) E) func(A, A, float64) A {
	return func(a, b A, t float64) A {
		return A{mix(a[0], b[0], t), mix(a[1], b[1], t), mix(a[2], b[2], t)}
	}
}

func lerpArr4[A ~[4]E, E any](mix func(E, E, float64) E) func(A, A, float64) A {
	return func(a, b A, t float64) A {
		return A{mix(a[0], b[0], t), mix(a[1], b[1], t), mix(a[2], b[2], t), mix(a[3], b[3], t)}
	}
}

func lerpMat2(a, b Matrix2d, t float64) Matrix2d {
	var out Matrix2d
	for i := range a {
		for j := range a[i] {
			out[i][j] = lerpF64(a[i][j], b[i][j], t)
		}
	}
	return out
}

func lerpMat3(a, b Matrix3d, t float64) Matrix3d {
	var out Matrix3d
	for i := range a {
		for j := range a[i] {
			out[i][j] = lerpF64(a[i][j], b[i][j], t)
		}
	}
	return out
}

func lerpMat4(a, b Matrix4d, t float64) Matrix4d {
	var out Matrix4d
	for i := range a {
		for j := range a[i] {
			out[i][j] = lerpF64(a[i][j], b[i][j], t)
		}
	}
	return out
}
