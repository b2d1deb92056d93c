// Package reducescatter implements the block reduce-scatter collective:
// given p peers each holding a contiguous vector of p*m elements, reduce
// the vectors element-wise with a caller-supplied binary operator and
// leave peer i with the i-th m-element block of the result.
//
// Three interchangeable algorithms are provided, selectable explicitly
// (WithAlgorithm) or left to Select: Basic (reduce then scatter, via the
// group's wider Reduce/Scatter collectives), Doubling (recursive distance
// doubling - any operator, any group size, order-preserving) and Halving
// (recursive vector halving - commutative operators only, lower bandwidth,
// falls back to Basic otherwise).
//
// The package does not implement a transport. Callers supply a Group,
// the narrow send/receive/reduce/scatter contract the algorithms need;
// internal/fabric provides an in-memory simulation of one for tests and
// for cmd/rsbdemo.
package reducescatter
