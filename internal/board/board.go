// internal/board/board.go
//
// Board bookkeeping for a single round.
// Responsibilities:
//   - Own the live deck (cards not yet matched) and the grid of drawn cards.
//   - Draw random columns, replace matched cards in place, add the one-time
//     extra column, and compact back onto the canonical grid.
//   - Hold the player's selection (0..3 positions) without evaluating it.
//
// Invariants:
//   - A card occupies at most one slot; a removed card never returns.
//   - Occupied slots never exceed Rows x (Cols+1), and the extra column is
//     added at most once per board.
//   - len(selection) <= 3.
//
// The board is a passive state holder; the game session decides when a
// selection is evaluated.

package board

import (
	"errors"
	"fmt"

	"github.com/robalobadob/sets/internal/cards"
	"github.com/robalobadob/sets/internal/random"
	"github.com/robalobadob/sets/internal/rules"
)

// MaxSelection is the selection size that triggers evaluation.
const MaxSelection = 3

var (
	// ErrOutOfBounds is returned for positions outside the current grid.
	ErrOutOfBounds = errors.New("position outside the board")
	// ErrEmptySlot is returned when a position holds no card.
	ErrEmptySlot = errors.New("no card at position")
	// ErrNotOnBoard is returned when a card is not currently drawn.
	ErrNotOnBoard = errors.New("card is not on the board")
	// ErrInvalidLayout is returned for non-positive grid dimensions.
	ErrInvalidLayout = errors.New("board layout needs at least one row and one column")
)

// Pos is a board coordinate. Col 0 is the leftmost column.
type Pos struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.Col, p.Row) }

// Placement records a card sitting at a position.
type Placement struct {
	Card cards.Card
	Pos  Pos
}

// Move records a card relocated during compaction.
type Move struct {
	Card     cards.Card
	From, To Pos
}

// Layout is the canonical grid size.
type Layout struct {
	Rows int
	Cols int
}

// Capacity is Rows x Cols.
func (l Layout) Capacity() int { return l.Rows * l.Cols }

// Board is the spatial arrangement of drawn, not-yet-matched cards.
type Board struct {
	layout    Layout
	cols      int
	rng       random.Source
	deck      cards.Deck
	slots     map[Pos]cards.Card
	used      map[cards.Card]Pos
	selection []Pos
	extraUsed bool
}

// New creates an empty board over a copy of deck. Call Deal to populate it.
func New(deck cards.Deck, layout Layout, rng random.Source) (*Board, error) {
	if layout.Rows < 1 || layout.Cols < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidLayout, layout.Rows, layout.Cols)
	}
	return &Board{
		layout: layout,
		cols:   layout.Cols,
		rng:    rng,
		deck:   append(cards.Deck(nil), deck...),
		slots:  make(map[Pos]cards.Card),
		used:   make(map[cards.Card]Pos),
	}, nil
}

// Deal fills every canonical column.
func (b *Board) Deal() []Placement {
	var out []Placement
	for col := 0; col < b.layout.Cols; col++ {
		placed, _ := b.DrawColumn(col, b.layout.Rows)
		out = append(out, placed...)
	}
	return out
}

// DrawColumn shuffles the cards not yet drawn and places up to count of them
// in the empty rows of col, top to bottom.
func (b *Board) DrawColumn(col, count int) ([]Placement, error) {
	if col < 0 || col >= b.cols {
		return nil, fmt.Errorf("%w: column %d", ErrOutOfBounds, col)
	}
	avail := b.available()
	b.rng.Shuffle(len(avail), func(i, j int) { avail[i], avail[j] = avail[j], avail[i] })

	var out []Placement
	for row := 0; row < b.layout.Rows && len(out) < count && len(avail) > 0; row++ {
		p := Pos{Col: col, Row: row}
		if _, taken := b.slots[p]; taken {
			continue
		}
		b.place(avail[0], p)
		out = append(out, Placement{Card: avail[0], Pos: p})
		avail = avail[1:]
	}
	return out, nil
}

// ReplaceAt removes c from the deck and the grid. When addReplacement is set
// and undrawn cards remain, one of them is drawn into the vacated slot.
func (b *Board) ReplaceAt(c cards.Card, addReplacement bool) (removed Placement, added *Placement, err error) {
	p, ok := b.used[c]
	if !ok {
		return Placement{}, nil, fmt.Errorf("%w: %s", ErrNotOnBoard, c)
	}
	b.unplace(c)
	b.deck = b.deck.Without(c)
	b.deselect(p)
	removed = Placement{Card: c, Pos: p}

	if addReplacement && b.CardsRemaining() > 0 {
		if pl, ok := b.drawOne(p); ok {
			added = &pl
		}
	}
	return removed, added, nil
}

// AddExtraColumn draws one more column of Rows cards to the right of the
// canonical grid. It reports false if the extra column was already used.
func (b *Board) AddExtraColumn() ([]Placement, bool) {
	if b.extraUsed {
		return nil, false
	}
	b.extraUsed = true
	if b.CardsRemaining() == 0 {
		return nil, true
	}
	b.cols = b.layout.Cols + 1
	placed, _ := b.DrawColumn(b.cols-1, b.layout.Rows)
	return placed, true
}

// Overflow reports whether more cards are drawn than the canonical grid holds.
// Matches made in this state are not replaced; the caller compacts instead.
func (b *Board) Overflow() bool { return len(b.used) > b.layout.Capacity() }

// Compact re-lays the drawn cards onto the canonical grid. Cards already in
// canonical columns stay put; cards beyond them move into empty canonical
// slots in column-major order. Empty canonical slots left afterwards are
// refilled from the undrawn cards.
func (b *Board) Compact() (moves []Move, added []Placement) {
	for col := b.layout.Cols; col < b.cols; col++ {
		for row := 0; row < b.layout.Rows; row++ {
			from := Pos{Col: col, Row: row}
			c, ok := b.slots[from]
			if !ok {
				continue
			}
			to, ok := b.firstEmptyCanonical()
			if !ok {
				continue
			}
			b.unplace(c)
			b.place(c, to)
			b.moveSelection(from, to)
			moves = append(moves, Move{Card: c, From: from, To: to})
		}
	}
	if !b.extraOccupied() {
		b.cols = b.layout.Cols
	}
	for b.CardsRemaining() > 0 {
		to, ok := b.firstEmptyCanonical()
		if !ok {
			break
		}
		pl, ok := b.drawOne(to)
		if !ok {
			break
		}
		added = append(added, pl)
	}
	return moves, added
}

// Clear removes every drawn card from the grid without replacement and
// without touching the deck. Used when a round ends.
func (b *Board) Clear() []Placement {
	out := b.Placements()
	for _, pl := range out {
		b.unplace(pl.Card)
	}
	b.selection = nil
	b.cols = b.layout.Cols
	return out
}

// SetExists reports whether any valid set is on the board.
func (b *Board) SetExists() bool { return rules.SetExists(b.Used()) }

// CountSets returns the number of valid sets on the board.
func (b *Board) CountSets() int { return rules.CountSets(b.Used()) }

// CardsRemaining is the number of deck cards not drawn, floored at zero.
func (b *Board) CardsRemaining() int {
	n := len(b.deck) - len(b.used)
	if n < 0 {
		return 0
	}
	return n
}

// DeckSize is the number of cards not yet matched (drawn or not).
func (b *Board) DeckSize() int { return len(b.deck) }

// Used returns the drawn cards in column-major slot order.
func (b *Board) Used() []cards.Card {
	pls := b.Placements()
	out := make([]cards.Card, len(pls))
	for i, pl := range pls {
		out[i] = pl.Card
	}
	return out
}

// Placements returns the occupied slots in column-major order.
func (b *Board) Placements() []Placement {
	out := make([]Placement, 0, len(b.used))
	for col := 0; col < b.cols; col++ {
		for row := 0; row < b.layout.Rows; row++ {
			p := Pos{Col: col, Row: row}
			if c, ok := b.slots[p]; ok {
				out = append(out, Placement{Card: c, Pos: p})
			}
		}
	}
	return out
}

// At returns the card at p.
func (b *Board) At(p Pos) (cards.Card, bool) {
	c, ok := b.slots[p]
	return c, ok
}

// PosOf returns the slot holding c.
func (b *Board) PosOf(c cards.Card) (Pos, bool) {
	p, ok := b.used[c]
	return p, ok
}

// Rows returns the number of rows.
func (b *Board) Rows() int { return b.layout.Rows }

// Cols returns the current number of columns, including an active extra one.
func (b *Board) Cols() int { return b.cols }

// ExtraColumnUsed reports whether AddExtraColumn has been called.
func (b *Board) ExtraColumnUsed() bool { return b.extraUsed }

func (b *Board) inBounds(p Pos) bool {
	return p.Col >= 0 && p.Col < b.cols && p.Row >= 0 && p.Row < b.layout.Rows
}

// available lists deck cards not on the grid, in deck order.
func (b *Board) available() []cards.Card {
	out := make([]cards.Card, 0, len(b.deck))
	for _, c := range b.deck {
		if _, drawn := b.used[c]; !drawn {
			out = append(out, c)
		}
	}
	return out
}

func (b *Board) drawOne(p Pos) (Placement, bool) {
	avail := b.available()
	if len(avail) == 0 {
		return Placement{}, false
	}
	c := avail[b.rng.Intn(len(avail))]
	b.place(c, p)
	return Placement{Card: c, Pos: p}, true
}

func (b *Board) place(c cards.Card, p Pos) {
	b.slots[p] = c
	b.used[c] = p
}

func (b *Board) unplace(c cards.Card) {
	if p, ok := b.used[c]; ok {
		delete(b.slots, p)
		delete(b.used, c)
	}
}

func (b *Board) firstEmptyCanonical() (Pos, bool) {
	for col := 0; col < b.layout.Cols; col++ {
		for row := 0; row < b.layout.Rows; row++ {
			p := Pos{Col: col, Row: row}
			if _, taken := b.slots[p]; !taken {
				return p, true
			}
		}
	}
	return Pos{}, false
}

func (b *Board) extraOccupied() bool {
	for p := range b.slots {
		if p.Col >= b.layout.Cols {
			return true
		}
	}
	return false
}
