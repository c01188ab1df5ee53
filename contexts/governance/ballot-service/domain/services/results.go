package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/ballot-service/domain/entities"
)

// OptionResult is one row of a ballot tally.
type OptionResult struct {
	OptionID int64           `json:"option_id"`
	Text     string          `json:"text"`
	Count    int             `json:"count"`
	Weight   decimal.Decimal `json:"weight"`
}

// ComputeResults tallies votes per option. Every option appears in the
// output, zero-vote options included, ordered by option id.
func ComputeResults(options []entities.BallotOption, votes []entities.Vote) []OptionResult {
	byOption := make(map[int64]*OptionResult, len(options))
	results := make([]OptionResult, 0, len(options))
	for _, option := range options {
		results = append(results, OptionResult{
			OptionID: option.ID,
			Text:     option.Text,
			Weight:   decimal.Zero,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].OptionID < results[j].OptionID })
	for i := range results {
		byOption[results[i].OptionID] = &results[i]
	}
	for _, vote := range votes {
		result, ok := byOption[vote.OptionID]
		if !ok {
			continue
		}
		result.Count++
		result.Weight = result.Weight.Add(vote.Weight)
	}
	return results
}
