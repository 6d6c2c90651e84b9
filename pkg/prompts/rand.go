package prompts

// Rand is the source of the two deliberately nondeterministic parts of a
// prompt: the recognition check and the disposition jitter.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// between returns a uniform integer in [lo, hi].
func between(r Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}
