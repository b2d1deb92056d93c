package reducescatter

import "cmp"

// Op is the binary-operator contract the algorithms fold over a group's
// input vectors. Apply reduces in into inout element-wise, leaving the
// result in inout (inout <- in (op) inout) - the same left/right
// convention the source's ompi_op_reduce(op, in, inout, count, dtype)
// uses, which is what lets the doubling variant preserve left-to-right
// evaluation order for non-commutative operators (see doubling.go).
//
// Commutative must report true only if Apply(a,b) and Apply(b,a) always
// agree element-wise; Halving requires it and falls back to Basic when
// it's false.
type Op[T any] struct {
	Apply       func(in, inout []T) error
	Commutative bool
}

// Numeric constrains the element types the built-in arithmetic
// operators (Sum, Product) accept.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Integer constrains the element types XorOp accepts.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func elementwise[T any](f func(a, b T) T) func(in, inout []T) error {
	return func(in, inout []T) error {
		for i := range inout {
			inout[i] = f(in[i], inout[i])
		}
		return nil
	}
}

// SumOp returns a commutative element-wise sum operator.
func SumOp[T Numeric]() Op[T] {
	return Op[T]{Apply: elementwise(func(a, b T) T { return a + b }), Commutative: true}
}

// ProductOp returns a commutative element-wise product operator.
func ProductOp[T Numeric]() Op[T] {
	return Op[T]{Apply: elementwise(func(a, b T) T { return a * b }), Commutative: true}
}

// MaxOp returns a commutative element-wise maximum operator.
func MaxOp[T cmp.Ordered]() Op[T] {
	return Op[T]{Apply: elementwise(func(a, b T) T {
		if a > b {
			return a
		}
		return b
	}), Commutative: true}
}

// MinOp returns a commutative element-wise minimum operator.
func MinOp[T cmp.Ordered]() Op[T] {
	return Op[T]{Apply: elementwise(func(a, b T) T {
		if a < b {
			return a
		}
		return b
	}), Commutative: true}
}

// XorOp returns a commutative element-wise bitwise-xor operator.
func XorOp[T Integer]() Op[T] {
	return Op[T]{Apply: elementwise(func(a, b T) T { return a ^ b }), Commutative: true}
}

// ConcatOp returns a non-commutative operator concatenating string
// elements, in-order - used by tests to exercise order-preservation
// (spec scenario: non-commutative string-concat-as-triples).
func ConcatOp() Op[string] {
	return Op[string]{Apply: elementwise(func(a, b string) string { return a + b }), Commutative: false}
}
