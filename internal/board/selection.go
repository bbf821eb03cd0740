package board

import "github.com/robalobadob/sets/internal/cards"

// Toggle adds p to the selection if absent (and fewer than three are
// selected) or removes it if present. It returns the resulting selection.
func (b *Board) Toggle(p Pos) ([]Pos, error) {
	if !b.inBounds(p) {
		return b.Selection(), ErrOutOfBounds
	}
	if _, ok := b.slots[p]; !ok {
		return b.Selection(), ErrEmptySlot
	}
	if i := b.selected(p); i >= 0 {
		b.selection = append(b.selection[:i], b.selection[i+1:]...)
	} else if len(b.selection) < MaxSelection {
		b.selection = append(b.selection, p)
	}
	return b.Selection(), nil
}

// Select replaces the selection with the occupied positions in ps, keeping at
// most MaxSelection of them.
func (b *Board) Select(ps ...Pos) []Pos {
	b.selection = nil
	for _, p := range ps {
		if len(b.selection) == MaxSelection {
			break
		}
		if _, ok := b.slots[p]; ok && b.selected(p) < 0 {
			b.selection = append(b.selection, p)
		}
	}
	return b.Selection()
}

// Selection returns a copy of the selected positions in selection order.
func (b *Board) Selection() []Pos {
	return append([]Pos(nil), b.selection...)
}

// SelectedCards returns the cards under the selection.
func (b *Board) SelectedCards() []cards.Card {
	out := make([]cards.Card, 0, len(b.selection))
	for _, p := range b.selection {
		if c, ok := b.slots[p]; ok {
			out = append(out, c)
		}
	}
	return out
}

// ClearSelection unmarks every selected position.
func (b *Board) ClearSelection() { b.selection = nil }

func (b *Board) selected(p Pos) int {
	for i, q := range b.selection {
		if q == p {
			return i
		}
	}
	return -1
}

func (b *Board) deselect(p Pos) {
	if i := b.selected(p); i >= 0 {
		b.selection = append(b.selection[:i], b.selection[i+1:]...)
	}
}

func (b *Board) moveSelection(from, to Pos) {
	if i := b.selected(from); i >= 0 {
		b.selection[i] = to
	}
}
