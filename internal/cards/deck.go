// internal/cards/deck.go
//
// Deck construction and difficulty masks.
//
// Build filters the full attribute space through a Mask: every attribute whose
// bit is false is collapsed to one value picked uniformly at random. The
// result size is always 81 / 3^k for k collapsed attributes; anything else is
// an invariant violation and aborts session setup.

package cards

import (
	"errors"
	"fmt"

	"github.com/robalobadob/sets/internal/random"
)

// ErrInvariantViolation signals a deck generation defect, never bad input.
var ErrInvariantViolation = errors.New("invariant violation")

// Mask marks which attributes are in play, indexed by Attribute.
type Mask [NumAttributes]bool

// FullMask keeps every attribute active (Normal mode, 81 cards).
func FullMask() Mask { return Mask{true, true, true, true} }

// CollapseOne returns a mask with exactly one randomly chosen attribute
// disabled (Quickstart mode, 27 cards).
func CollapseOne(rng random.Source) Mask {
	m := FullMask()
	m[rng.Intn(NumAttributes)] = false
	return m
}

// Collapsed counts the attributes reduced to a single value.
func (m Mask) Collapsed() int {
	n := 0
	for _, on := range m {
		if !on {
			n++
		}
	}
	return n
}

// ExpectedSize is 81 / 3^Collapsed().
func (m Mask) ExpectedSize() int {
	size := FullDeckSize
	for i := 0; i < m.Collapsed(); i++ {
		size /= NumValues
	}
	return size
}

// Deck is the ordered list of card identities available to a session.
type Deck []Card

// Build returns a fresh deck for mask. The enumeration order is ID order
// restricted to surviving cards, so it is stable for a given set of fixed
// values.
func Build(mask Mask, rng random.Source) (Deck, error) {
	var fixed [NumAttributes]int
	for _, a := range Attributes {
		fixed[a] = -1
		if !mask[a] {
			fixed[a] = rng.Intn(NumValues)
		}
	}

	deck := make(Deck, 0, mask.ExpectedSize())
	for _, c := range All() {
		if keep(c, fixed) {
			deck = append(deck, c)
		}
	}
	if err := deck.check(mask); err != nil {
		return nil, err
	}
	return deck, nil
}

func keep(c Card, fixed [NumAttributes]int) bool {
	for a, v := range fixed {
		if v >= 0 && int(c[a]) != v {
			return false
		}
	}
	return true
}

// check asserts the size, range and uniqueness postconditions of Build.
func (d Deck) check(mask Mask) error {
	if want := mask.ExpectedSize(); len(d) != want {
		return fmt.Errorf("%w: deck has %d cards, want %d", ErrInvariantViolation, len(d), want)
	}
	seen := make(map[Card]struct{}, len(d))
	for _, c := range d {
		if !c.Valid() {
			return fmt.Errorf("%w: card value out of range %v", ErrInvariantViolation, [NumAttributes]uint8(c))
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: duplicate card %s", ErrInvariantViolation, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

// Index returns the position of c in the deck, or -1.
func (d Deck) Index(c Card) int {
	for i, x := range d {
		if x == c {
			return i
		}
	}
	return -1
}

// Contains reports whether c is in the deck.
func (d Deck) Contains(c Card) bool { return d.Index(c) >= 0 }

// Without returns a copy of the deck with c removed.
func (d Deck) Without(c Card) Deck {
	out := make(Deck, 0, len(d))
	for _, x := range d {
		if x != c {
			out = append(out, x)
		}
	}
	return out
}
