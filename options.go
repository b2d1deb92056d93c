package reducescatter

import "github.com/rs/zerolog"

// Algorithm names one of the three CORE implementations, or Auto to let
// Select choose.
type Algorithm int

const (
	AlgorithmAuto Algorithm = iota
	AlgorithmBasic
	AlgorithmDoubling
	AlgorithmHalving
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmBasic:
		return "basic"
	case AlgorithmDoubling:
		return "doubling"
	case AlgorithmHalving:
		return "halving"
	default:
		return "auto"
	}
}

// config is resolved once per call from the supplied Options; zero
// value options are ignored rather than erroring; invalid combinations
// have no observable effect, in line with this package's collective
// calls being cheap, one-shot, and not worth panicking over.
type config[T any] struct {
	algorithm Algorithm
	logger    zerolog.Logger
	allocator Allocator[T]
	datatype  Datatype[T]
	engine    *DatatypeEngine
}

// Option configures one reduce-scatter-block call.
type Option[T any] func(*config[T])

// WithAlgorithm pins the algorithm instead of leaving it to Select.
func WithAlgorithm[T any](a Algorithm) Option[T] {
	return func(c *config[T]) { c.algorithm = a }
}

// WithLogger attaches a zerolog.Logger; by default nothing is logged.
func WithLogger[T any](l zerolog.Logger) Option[T] {
	return func(c *config[T]) { c.logger = l }
}

// WithAllocator overrides scratch-buffer allocation, e.g. with a
// counting Allocator in tests.
func WithAllocator[T any](a Allocator[T]) Option[T] {
	return func(c *config[T]) {
		if a != nil {
			c.allocator = a
		}
	}
}

// WithDatatype overrides the element Datatype, e.g. with Padded to
// exercise a non-zero span/gap.
func WithDatatype[T any](dt Datatype[T]) Option[T] {
	return func(c *config[T]) {
		if dt != nil {
			c.datatype = dt
		}
	}
}

// WithDatatypeEngine overrides the indexed-pattern commit/destroy
// engine, e.g. with one primed to fail, to test cleanup.
func WithDatatypeEngine[T any](e *DatatypeEngine) Option[T] {
	return func(c *config[T]) {
		if e != nil {
			c.engine = e
		}
	}
}

func resolveOptions[T any](opts []Option[T]) config[T] {
	c := config[T]{
		algorithm: AlgorithmAuto,
		logger:    zerolog.Nop(),
		allocator: NewAllocator[T](),
		datatype:  Contiguous[T]{},
		engine:    NewDatatypeEngine(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}
