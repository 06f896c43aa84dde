package value

// Widen converts v to a higher-precision layout losslessly: half widens
// to float or double, float widens to double, component-wise for vectors
// and element-wise for arrays. target names the desired POD id (role ids
// are re-tagged by the caller). ok is false when no lossless widening
// exists between the two layouts.
func Widen(v Value, target TypeID) (Value, bool) {
	if v.TypeID() == target {
		return v, true
	}
	src := v.UnderlyingTypeID()

	if src.IsArray() != target.IsArray() {
		return Value{}, false
	}
	if src.IsArray() {
		out, ok := widenSlice(v, src.Elem(), target.Elem())
		return out, ok
	}
	return widenScalar(v, src, target)
}

func widenScalar(v Value, src, target TypeID) (Value, bool) {
	switch {
	case src == TypeHalf && target == TypeFloat:
		return mapAs(v, func(h Half) float32 { return h.Float32() })
	case src == TypeHalf && target == TypeDouble:
		return mapAs(v, func(h Half) float64 { return float64(h.Float32()) })
	case src == TypeFloat && target == TypeDouble:
		return mapAs(v, func(f float32) float64 { return float64(f) })

	case src == TypeHalf2 && target == TypeFloat2:
		return mapAs(v, widen2[Half2, Float2](halfToF32))
	case src == TypeHalf2 && target == TypeDouble2:
		return mapAs(v, widen2[Half2, Double2](halfToF64))
	case src == TypeFloat2 && target == TypeDouble2:
		return mapAs(v, widen2[Float2, Double2](f32ToF64))

	case src == TypeHalf3 && target == TypeFloat3:
		return mapAs(v, widen3[Half3, Float3](halfToF32))
	case src == TypeHalf3 && target == TypeDouble3:
		return mapAs(v, widen3[Half3, Double3](halfToF64))
	case src == TypeFloat3 && target == TypeDouble3:
		return mapAs(v, widen3[Float3, Double3](f32ToF64))

	case src == TypeHalf4 && target == TypeFloat4:
		return mapAs(v, widen4[Half4, Float4](halfToF32))
	case src == TypeHalf4 && target == TypeDouble4:
		return mapAs(v, widen4[Half4, Double4](halfToF64))
	case src == TypeFloat4 && target == TypeDouble4:
		return mapAs(v, widen4[Float4, Double4](f32ToF64))

	case src == TypeQuath && target == TypeQuatf:
		return mapAs(v, widen4[Quath, Quatf](halfToF32))
	case src == TypeQuath && target == TypeQuatd:
		return mapAs(v, widen4[Quath, Quatd](halfToF64))
	case src == TypeQuatf && target == TypeQuatd:
		return mapAs(v, widen4[Quatf, Quatd](f32ToF64))
	}
	return Value{}, false
}

func widenSlice(v Value, srcElem, targetElem TypeID) (Value, bool) {
	switch {
	case srcElem == TypeHalf && targetElem == TypeFloat:
		return mapSlice(v, func(h Half) float32 { return h.Float32() })
	case srcElem == TypeHalf && targetElem == TypeDouble:
		return mapSlice(v, func(h Half) float64 { return float64(h.Float32()) })
	case srcElem == TypeFloat && targetElem == TypeDouble:
		return mapSlice(v, f32ToF64)

	case srcElem == TypeHalf2 && targetElem == TypeFloat2:
		return mapSlice(v, widen2[Half2, Float2](halfToF32))
	case srcElem == TypeHalf2 && targetElem == TypeDouble2:
		return mapSlice(v, widen2[Half2, Double2](halfToF64))
	case srcElem == TypeFloat2 && targetElem == TypeDouble2:
		return mapSlice(v, widen2[Float2, Double2](f32ToF64))

	case srcElem == TypeHalf3 && targetElem == TypeFloat3:
		return mapSlice(v, widen3[Half3, Float3](halfToF32))
	case srcElem == TypeHalf3 && targetElem == TypeDouble3:
		return mapSlice(v, widen3[Half3, Double3](halfToF64))
	case srcElem == TypeFloat3 && targetElem == TypeDouble3:
		return mapSlice(v, widen3[Float3, Double3](f32ToF64))

	case srcElem == TypeHalf4 && targetElem == TypeFloat4:
		return mapSlice(v, widen4[Half4, Float4](halfToF32))
	case srcElem == TypeHalf4 && targetElem == TypeDouble4:
		return mapSlice(v, widen4[Half4, Double4](halfToF64))
	case srcElem == TypeFloat4 && targetElem == TypeDouble4:
		return mapSlice(v, widen4[Float4, Double4](f32ToF64))

	case srcElem == TypeQuath && targetElem == TypeQuatf:
		return mapSlice(v, widen4[Quath, Quatf](halfToF32))
	case srcElem == TypeQuath && targetElem == TypeQuatd:
		return mapSlice(v, widen4[Quath, Quatd](halfToF64))
	case srcElem == TypeQuatf && targetElem == TypeQuatd:
		return mapSlice(v, widen4[Quatf, Quatd](f32ToF64))
	}
	return Value{}, false
}

func halfToF32(h Half) float32   { return h.Float32() }
func halfToF64(h Half) float64   { return float64(h.Float32()) }
func f32ToF64(f float32) float64 { return float64(f) }

func widen2[A ~[2]E, B ~[2]F, E, F any](fn func(E) F) func(A) B {
	return func(a A) B { return B{fn(a[0]), fn(a[1])} }
}

func widen3[A ~[3]E, B ~[3]F, E, F any](fn func(E) F) func(A) B {
	return func(a A) B { return B{fn(a[0]), fn(a[1]), fn(a[2])} }
}

func widen4[A ~[4]E, B ~[4]F, E, F any](fn func(E) F) func(A) B {
	return func(a A) B { return B{fn(a[0]), fn(a[1]), fn(a[2]), fn(a[3])} }
}

func mapAs[S, D any](v Value, fn func(S) D) (Value, bool) {
	s, ok := As[S](v)
	if !ok {
		return Value{}, false
	}
	return New(fn(s)), true
}

func mapSlice[S, D any](v Value, fn func(S) D) (Value, bool) {
	s, ok := As[[]S](v)
	if !ok {
		return Value{}, false
	}
	out := make([]D, len(s))
	for i := range s {
		out[i] = fn(s[i])
	}
	return New(out), true
}
