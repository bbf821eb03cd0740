// internal/rules/rules.go
//
// Set validity and hint search.
// Responsibilities:
//   - IsSet: the per-attribute all-same-or-all-different predicate.
//   - AllSets / CountSets / SetExists: scans over every 3-combination.
//   - FindHint: count of valid sets plus one sampled set for a partial reveal.
//
// Notes:
//   - Everything here is pure; randomness only enters through FindHint's Source.
//   - Scans are O(n^3); a 15-card board has 455 triples. Callers throttle.

package rules

import (
	"errors"
	"fmt"

	"github.com/robalobadob/sets/internal/cards"
	"github.com/robalobadob/sets/internal/random"
)

// ErrInvalidArity is returned when a candidate is not three distinct cards.
var ErrInvalidArity = errors.New("set candidate must be exactly three distinct cards")

// Triple is an unordered group of three cards, stored in board order.
type Triple [3]cards.Card

// IsSet validates a candidate of exactly three distinct cards.
func IsSet(candidate ...cards.Card) (bool, error) {
	if len(candidate) != 3 {
		return false, fmt.Errorf("%w: got %d", ErrInvalidArity, len(candidate))
	}
	a, b, c := candidate[0], candidate[1], candidate[2]
	if a == b || b == c || a == c {
		return false, fmt.Errorf("%w: duplicate card", ErrInvalidArity)
	}
	return valid(a, b, c), nil
}

// valid applies the rule without arity checks. For each attribute the
// three values must not contain exactly two distinct values.
func valid(a, b, c cards.Card) bool {
	for _, attr := range cards.Attributes {
		x, y, z := a[attr], b[attr], c[attr]
		distinct := 1
		if y != x {
			distinct++
		}
		if z != x && z != y {
			distinct++
		}
		if distinct == 2 {
			return false
		}
	}
	return true
}

// Third returns the unique card completing a set with a and b.
// Per attribute: equal values repeat, different values take the remaining one.
func Third(a, b cards.Card) cards.Card {
	var c cards.Card
	for _, attr := range cards.Attributes {
		c[attr] = uint8((2*cards.NumValues - int(a[attr]) - int(b[attr])) % cards.NumValues)
	}
	return c
}

// eachTriple visits i<j<k over n items until fn returns false.
func eachTriple(n int, fn func(i, j, k int) bool) {
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				if !fn(i, j, k) {
					return
				}
			}
		}
	}
}

// AllSets returns every valid triple among cs, in combination order.
func AllSets(cs []cards.Card) []Triple {
	var out []Triple
	eachTriple(len(cs), func(i, j, k int) bool {
		if valid(cs[i], cs[j], cs[k]) {
			out = append(out, Triple{cs[i], cs[j], cs[k]})
		}
		return true
	})
	return out
}

// CountSets returns the number of valid triples among cs.
func CountSets(cs []cards.Card) int {
	n := 0
	eachTriple(len(cs), func(i, j, k int) bool {
		if valid(cs[i], cs[j], cs[k]) {
			n++
		}
		return true
	})
	return n
}

// SetExists reports whether any valid triple exists, stopping at the first.
func SetExists(cs []cards.Card) bool {
	found := false
	eachTriple(len(cs), func(i, j, k int) bool {
		found = valid(cs[i], cs[j], cs[k])
		return !found
	})
	return found
}

// Hint is the result of a successful hint search.
type Hint struct {
	Count int    // number of valid sets among the scanned cards
	Set   Triple // one valid set chosen uniformly at random
}

// Revealed returns the two cards shown to the player; the third is withheld.
func (h Hint) Revealed() [2]cards.Card { return [2]cards.Card{h.Set[0], h.Set[1]} }

// FindHint scans cs and samples one valid set. ok is false when none exists.
func FindHint(cs []cards.Card, rng random.Source) (h Hint, ok bool) {
	sets := AllSets(cs)
	if len(sets) == 0 {
		return Hint{}, false
	}
	return Hint{Count: len(sets), Set: sets[rng.Intn(len(sets))]}, true
}
