// internal/cards/cards.go
//
// Card identities for the Sets deck.
// Defines:
//   - Attribute: the four independent dimensions (color, shape, number, pattern).
//   - Card: an immutable tuple of one value per attribute.
//   - ID: a stable base-3 index derived from the tuple (0..80).
//
// Cards carry no presentation state; a renderer keys its own sprites by ID.

package cards

import (
	"errors"
	"fmt"
	"strings"
)

// Attribute identifies one card dimension.
type Attribute int

const (
	Color Attribute = iota
	Shape
	Number
	Pattern
)

const (
	// NumAttributes is the number of card dimensions.
	NumAttributes = 4
	// NumValues is the number of values each dimension can take.
	NumValues = 3
	// FullDeckSize is NumValues^NumAttributes.
	FullDeckSize = 81
)

// Attributes lists every dimension in enumeration order.
var Attributes = [NumAttributes]Attribute{Color, Shape, Number, Pattern}

var attributeNames = [NumAttributes]string{"color", "shape", "number", "pattern"}

var valueNames = [NumAttributes][NumValues]string{
	{"red", "purple", "green"},
	{"oval", "diamond", "squiggle"},
	{"one", "two", "three"},
	{"solid", "striped", "outlined"},
}

// ErrUnknownValue is returned when parsing an attribute value name fails.
var ErrUnknownValue = errors.New("unknown attribute value")

// ErrInvalidID is returned for identifiers outside 0..FullDeckSize-1.
var ErrInvalidID = errors.New("card id out of range")

// String returns the lowercase attribute name.
func (a Attribute) String() string {
	if a < 0 || int(a) >= NumAttributes {
		return "unknown"
	}
	return attributeNames[a]
}

// ValueName returns the display name of value v for attribute a.
func (a Attribute) ValueName(v uint8) string {
	if a < 0 || int(a) >= NumAttributes || int(v) >= NumValues {
		return "unknown"
	}
	return valueNames[a][v]
}

// ParseValue maps a value name (e.g. "squiggle") back to its index.
func (a Attribute) ParseValue(name string) (uint8, error) {
	if a < 0 || int(a) >= NumAttributes {
		return 0, fmt.Errorf("%w: attribute %d", ErrUnknownValue, a)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range valueNames[a] {
		if n == name {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownValue, a, name)
}

// ID is the stable index of a card in the full 81-card space.
type ID int

// Card is one value (0..NumValues-1) per attribute, indexed by Attribute.
type Card [NumAttributes]uint8

// New builds a card from its four attribute values.
func New(color, shape, number, pattern uint8) Card {
	return Card{color, shape, number, pattern}
}

// FromID decodes an identifier produced by Card.ID.
func FromID(id ID) (Card, error) {
	if id < 0 || int(id) >= FullDeckSize {
		return Card{}, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	var c Card
	div := 1
	for i := range c {
		c[i] = uint8((int(id) / div) % NumValues)
		div *= NumValues
	}
	return c, nil
}

// ID encodes the card as a base-3 number with Color as the lowest digit.
func (c Card) ID() ID {
	id, mul := 0, 1
	for _, v := range c {
		id += int(v) * mul
		mul *= NumValues
	}
	return ID(id)
}

// Get returns the card's value for attribute a.
func (c Card) Get(a Attribute) uint8 { return c[a] }

// Valid reports whether every attribute value is in range.
func (c Card) Valid() bool {
	for _, v := range c {
		if int(v) >= NumValues {
			return false
		}
	}
	return true
}

// String renders the card as "red oval one solid".
func (c Card) String() string {
	parts := make([]string, NumAttributes)
	for _, a := range Attributes {
		parts[a] = a.ValueName(c[a])
	}
	return strings.Join(parts, " ")
}

// All enumerates the full attribute space in ID order.
func All() []Card {
	out := make([]Card, FullDeckSize)
	for i := range out {
		out[i], _ = FromID(ID(i))
	}
	return out
}
