package discovery

import (
	"cmp"
	"slices"
	"strings"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

// StateCount is the number of candidates from one state, split by grad year.
type StateCount struct {
	Total      int         `json:"total"`
	ByGradYear map[int]int `json:"by_grad_year"`
}

// StateCounts groups a pool by upper-cased home state. Candidates without a
// state are not counted.
func StateCounts(pool []model.Candidate) map[string]StateCount {
	out := make(map[string]StateCount)
	for _, c := range pool {
		st := strings.ToUpper(strings.TrimSpace(c.State))
		if st == "" {
			continue
		}
		sc := out[st]
		if sc.ByGradYear == nil {
			sc.ByGradYear = make(map[int]int)
		}
		sc.Total++
		sc.ByGradYear[c.GradYear]++
		out[st] = sc
	}
	return out
}

// SearchByName returns the candidates whose name contains query, ignoring
// case, ordered by name then id. A blank query matches nothing.
func SearchByName(pool []model.Candidate, query string) []model.Candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Candidate, 0)
	if q == "" {
		return out
	}
	for _, c := range pool {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Candidate) int {
		if n := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
