package wiring

import "fmt"

// Validate reports whether t is a permutation of [0, n).
func Validate(t MappingTable, n int) error {
	if t.Len() != n {
		return fmt.Errorf("%w: have %d entries, want %d", ErrLengthMismatch, t.Len(), n)
	}
	seen := make([]bool, n)
	for hw, d := range t.idx {
		if d < 0 || d >= n {
			return fmt.Errorf("%w: led %d maps to %d, outside [0,%d)", ErrNonBijectiveMapping, hw, d, n)
		}
		if seen[d] {
			return fmt.Errorf("%w: design index %d mapped twice (led %d)", ErrNonBijectiveMapping, d, hw)
		}
		seen[d] = true
	}
	return nil
}
