package game

import "carnival/internal/types"

// GameState is the in-memory state of one game: its id and the ordered,
// append-only play history.
type GameState struct {
	ID      string
	History []types.PlayResult
}

func ToRecord(s GameState) types.GameRecord {
	return types.GameRecord{ID: s.ID, Results: cloneResults(s.History)}
}

func FromRecord(r types.GameRecord) GameState {
	return GameState{ID: r.ID, History: cloneResults(r.Results)}
}

func cloneResults(results []types.PlayResult) []types.PlayResult {
	if results == nil {
		return nil
	}
	out := make([]types.PlayResult, len(results))
	copy(out, results)
	return out
}
