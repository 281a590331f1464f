package pipeline

import (
	"context"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

// Card is one player on the board.
type Card struct {
	Entry      model.PipelineEntry `json:"entry"`
	PlayerName string              `json:"player_name,omitempty"`
	Position   string              `json:"position,omitempty"`
	Terminal   bool                `json:"terminal"`
}

// Column holds the cards of one diamond slot.
type Column struct {
	Slot  model.Slot `json:"slot"`
	Cards []Card     `json:"cards"`
}

// Board is a positional view of a program's pipeline.
type Board struct {
	ProgramID string   `json:"program_id"`
	Columns   []Column `json:"columns"`
}

// Board buckets entries into diamond slots. The slot comes from the entry's
// position role when set, else from the player's current primary position.
// Every slot is present, in display order, even when empty.
func (s *Service) Board(ctx context.Context, programID string, filter model.Status) (Board, error) {
	const op = "pipeline.Board"
	entries, err := s.ListByStatus(ctx, programID, filter)
	if err != nil {
		return Board{}, err
	}
	players, err := s.players.ListPlayers(ctx)
	if err != nil {
		return Board{}, errs.Wrap(op, err)
	}
	byID := make(map[string]model.Candidate, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	slots := model.Slots()
	index := make(map[model.Slot]int, len(slots))
	b := Board{ProgramID: programID, Columns: make([]Column, len(slots))}
	for i, slot := range slots {
		index[slot] = i
		b.Columns[i] = Column{Slot: slot, Cards: []Card{}}
	}

	for _, e := range entries {
		p := byID[e.PlayerID]
		pos := e.PositionRole
		if pos == "" {
			pos = p.PrimaryPosition
		}
		i := index[model.SlotFor(pos)]
		b.Columns[i].Cards = append(b.Columns[i].Cards, Card{
			Entry:      e,
			PlayerName: p.Name,
			Position:   pos,
			Terminal:   e.Status.Terminal(),
		})
	}
	return b, nil
}
