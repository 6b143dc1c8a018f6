package chem

// stubRand is a deterministic Rand for tests. Float64 always returns Value,
// Intn always returns IntValue, NormFloat64 returns 0, and Perm is the
// identity permutation.
type stubRand struct {
	Value    float64
	IntValue int
}

func (s *stubRand) Float64() float64     { return s.Value }
func (s *stubRand) Intn(n int) int       { return s.IntValue % n }
func (s *stubRand) NormFloat64() float64 { return 0 }
func (s *stubRand) Perm(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
