package httpserver

import (
	"github.com/robalobadob/sets/internal/board"
	"github.com/robalobadob/sets/internal/cards"
	"github.com/robalobadob/sets/internal/game"
)

// cardView is the wire form of a card, with its slot when on the board.
type cardView struct {
	ID      cards.ID   `json:"id"`
	Color   string     `json:"color"`
	Shape   string     `json:"shape"`
	Number  string     `json:"number"`
	Pattern string     `json:"pattern"`
	Pos     *board.Pos `json:"pos,omitempty"`
}

func newCardView(c cards.Card, p *board.Pos) cardView {
	return cardView{
		ID:      c.ID(),
		Color:   cards.Color.ValueName(c.Get(cards.Color)),
		Shape:   cards.Shape.ValueName(c.Get(cards.Shape)),
		Number:  cards.Number.ValueName(c.Get(cards.Number)),
		Pattern: cards.Pattern.ValueName(c.Get(cards.Pattern)),
		Pos:     p,
	}
}

type statsView struct {
	Matches    int   `json:"matches"`
	Mismatches int   `json:"mismatches"`
	Hints      int   `json:"hints"`
	DurationMs int64 `json:"durationMs"`
}

type sessionView struct {
	ID              string      `json:"id"`
	State           game.State  `json:"state"`
	Mode            game.Mode   `json:"mode"`
	Score           int         `json:"score"`
	Rows            int         `json:"rows"`
	Cols            int         `json:"cols"`
	Cards           []cardView  `json:"cards"`
	Selection       []board.Pos `json:"selection"`
	CardsRemaining  int         `json:"cardsRemaining"`
	DeckSize        int         `json:"deckSize"`
	ExtraColumnUsed bool        `json:"extraColumnUsed"`
	Daily           string      `json:"daily,omitempty"`
	Seed            int64       `json:"seed"`
	Stats           statsView   `json:"stats"`
}

func newSessionView(s *game.Session) sessionView {
	v := s.Snapshot()
	out := sessionView{
		ID:              v.ID,
		State:           v.State,
		Mode:            v.Mode,
		Score:           v.Score,
		Rows:            v.Rows,
		Cols:            v.Cols,
		Cards:           make([]cardView, 0, len(v.Cards)),
		Selection:       v.Selection,
		CardsRemaining:  v.CardsRemaining,
		DeckSize:        v.DeckSize,
		ExtraColumnUsed: v.ExtraColumnUsed,
		Daily:           s.Daily,
		Seed:            s.Seed,
		Stats: statsView{
			Matches:    v.Stats.Matches,
			Mismatches: v.Stats.Mismatches,
			Hints:      v.Stats.Hints,
			DurationMs: v.Stats.Duration().Milliseconds(),
		},
	}
	if out.Selection == nil {
		out.Selection = []board.Pos{}
	}
	for _, pl := range v.Cards {
		p := pl.Pos
		out.Cards = append(out.Cards, newCardView(pl.Card, &p))
	}
	return out
}

type eventView struct {
	Kind  game.EventKind `json:"kind"`
	Card  *cardView      `json:"card,omitempty"`
	Pos   *board.Pos     `json:"pos,omitempty"`
	From  *board.Pos     `json:"from,omitempty"`
	Score *int           `json:"score,omitempty"`
	State game.State     `json:"state,omitempty"`
}

func newEventViews(events []game.Event) []eventView {
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		ev := eventView{Kind: e.Kind}
		switch e.Kind {
		case game.EventCardAdded, game.EventCardRemoved, game.EventCardMoved:
			c := newCardView(e.Card, nil)
			pos := e.Pos
			ev.Card, ev.Pos = &c, &pos
			if e.Kind == game.EventCardMoved {
				from := e.From
				ev.From = &from
			}
		case game.EventScoreChanged:
			score := e.Score
			ev.Score = &score
		case game.EventStateChanged:
			ev.State = e.State
		}
		out = append(out, ev)
	}
	return out
}

type hintView struct {
	Found         bool       `json:"found"`
	SetsRemaining int        `json:"setsRemaining"`
	Cards         []cardView `json:"cards,omitempty"`
}

func newHintView(h game.HintResult) *hintView {
	out := &hintView{Found: h.Found, SetsRemaining: h.SetsRemaining}
	if h.Found {
		for i, c := range h.Revealed {
			p := h.Positions[i]
			out.Cards = append(out.Cards, newCardView(c, &p))
		}
	}
	return out
}
