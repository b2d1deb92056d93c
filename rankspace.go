package reducescatter

// RoundDown returns the lowest rank, of the power-of-two-width subtree
// containing n, i.e. floor(n/f)*f. f is a power of two in every caller.
//
// RoundDown(10, 4) == 8, RoundDown(6, 3) == 6, RoundDown(14, 3) == 12.
func RoundDown(n, f int) int {
	return (n / f) * f
}

// NextPow2LEQ returns the largest power of two <= p, for p >= 1.
func NextPow2LEQ(p int) int {
	n := 1
	for n<<1 <= p {
		n <<= 1
	}
	return n
}

// RangeSum returns sum_{i=a}^{b} w(i), where w(i) = 2 for i <= r and
// w(i) = 1 for i > r. Used by the halving variant to translate a
// virtual-rank block range into a physical element count: in the
// folded power-of-two virtual group, the first nprocs_rem virtual
// ranks each absorbed an even neighbor and so own two physical blocks;
// the rest own one.
func RangeSum(a, b, r int) int {
	switch {
	case r < a:
		return b - a + 1
	case r > b:
		return 2 * (b - a + 1)
	default:
		return 2*(r-a+1) + (b - r)
	}
}
