package repository

import "github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithPlayers seeds the candidate pool.
func WithPlayers(players ...model.Candidate) Option {
	return func(s *MemoryStore) {
		for _, p := range players {
			s.players[p.ID] = cloneCandidate(p)
		}
	}
}

// WithNeeds seeds need profiles.
func WithNeeds(needs ...model.NeedProfile) Option {
	return func(s *MemoryStore) {
		for _, n := range needs {
			s.needs[n.ProgramID] = cloneNeeds(n)
		}
	}
}
