package game

import "carnival/internal/types"

const baseWinningOdds = 0.5

// WinOdds is the chance of winning a play that starts at level.
func WinOdds(level int) float64 {
	return baseWinningOdds / float64(level+1)
}

// startingLevel applies the continuation rule: the same player keeps the
// previous level unless it already reached the top.
func startingLevel(history []types.PlayResult, playerID string) int {
	if len(history) == 0 {
		return 0
	}
	prev := history[len(history)-1]
	if prev.PlayerID == playerID && prev.Level < types.MaxLevel {
		return prev.Level
	}
	return 0
}

// playOnce computes the outcome of one play. It does not touch history.
func playOnce(def types.GameDefinition, history []types.PlayResult, playerID string, rng Rand) types.PlayResult {
	level := startingLevel(history, playerID)
	win := rng.Float64() < WinOdds(level)

	result := types.PlayResult{
		Name:     def.Name,
		PlayerID: playerID,
		Winner:   win,
	}
	if win {
		level++
		result.PrizeLevel = types.PrizeLevelFor(level)
		result.Reward = pickReward(def.Prizes.Tier(level), rng)
	}
	result.Level = level
	return result
}

func pickReward(tier []string, rng Rand) string {
	if len(tier) == 0 {
		return ""
	}
	return tier[rng.IntN(len(tier))]
}
