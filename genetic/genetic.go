// Package genetic provides a generic, generational evolutionary search engine
// 1. Has zero knowledge of the solution encoding; operators are injected
// 2. Minimizes the score: lower is better
// 3. All randomness flows from one seeded generator owned by the Engine
// 4. Fitness evaluation may run in parallel, everything else is sequential
package genetic

import (
	"math/rand/v2"
)

// --- Concrete Operator Implementations ---

// TournamentSelector implements tournament selection without replacement
// Each tournament samples distinct members and picks the lowest score
type TournamentSelector[S Solution, F Numeric] struct {
	// TournamentSize is the number of candidates to compete in each tournament
	TournamentSize int
	// Clone deep-copies the winner so callers never alias pool members
	Clone CloneFunc[S]

	scratch []int
}

// Select implements the Selector interface using tournament selection
func (ts *TournamentSelector[S, F]) Select(pool *Pool[S, F], size int, rng *rand.Rand) []Candidate[S, F] {
	poolSize := len(pool.Members)
	if poolSize == 0 || size <= 0 {
		return nil
	}

	// Clamp to the pool so sampling without replacement always succeeds
	tournSize := min(ts.TournamentSize, poolSize)
	if tournSize < 1 {
		tournSize = 1
	}

	selected := make([]Candidate[S, F], 0, size)
	for len(selected) < size {
		winner := pool.Members[ts.tournament(pool.Members, tournSize, rng)]
		if ts.Clone != nil {
			winner.Data = ts.Clone(winner.Data)
		}
		selected = append(selected, winner)
	}
	return selected
}

// tournament draws k distinct indices by partial Fisher-Yates and returns the
// index of the lowest score; ties go to the first drawn
func (ts *TournamentSelector[S, F]) tournament(members []Candidate[S, F], k int, rng *rand.Rand) int {
	n := len(members)
	if cap(ts.scratch) < n {
		ts.scratch = make([]int, n)
	}
	idx := ts.scratch[:n]
	for i := range idx {
		idx[i] = i
	}

	best := -1
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
		if best < 0 || members[idx[i]].Score < members[best].Score {
			best = idx[i]
		}
	}
	return best
}
