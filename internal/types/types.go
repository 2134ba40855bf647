package types

// Prize level labels, indexed by streak level 1-4.
const (
	PrizeSmall  = "small"
	PrizeMedium = "medium"
	PrizeLarge  = "large"
	PrizeGrand  = "grand"
)

// MaxLevel is the highest level a streak can reach.
const MaxLevel = 4

type Catalog struct {
	Games []GameDefinition `yaml:"games" json:"games"`
}

type GameDefinition struct {
	ID     string     `yaml:"id" json:"id"`
	Name   string     `yaml:"name" json:"name"`
	Theme  string     `yaml:"theme" json:"theme"`
	Prizes PrizeTiers `yaml:"prizes" json:"prizes"`
}

type PrizeTiers struct {
	Small  []string `yaml:"small" json:"small"`
	Medium []string `yaml:"medium" json:"medium"`
	Large  []string `yaml:"large" json:"large"`
	Grand  []string `yaml:"grand" json:"grand"`
}

// Tier returns the reward pool for a level, or nil outside 1-4.
func (p PrizeTiers) Tier(level int) []string {
	switch level {
	case 1:
		return p.Small
	case 2:
		return p.Medium
	case 3:
		return p.Large
	case 4:
		return p.Grand
	default:
		return nil
	}
}

// PrizeLevelFor returns the label for a level, or "" outside 1-4.
func PrizeLevelFor(level int) string {
	switch level {
	case 1:
		return PrizeSmall
	case 2:
		return PrizeMedium
	case 3:
		return PrizeLarge
	case 4:
		return PrizeGrand
	default:
		return ""
	}
}

type PlayResult struct {
	Name       string `json:"name"`
	PlayerID   string `json:"playerId"`
	Winner     bool   `json:"winner"`
	Level      int    `json:"level"`
	PrizeLevel string `json:"prizeLevel"`
	Reward     string `json:"reward"`
}

type GameData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Theme       string `json:"theme"`
	TimesPlayed int    `json:"timesPlayed"`
}

// GameRecord is the persisted projection of a game's play history.
type GameRecord struct {
	ID      string       `json:"id"`
	Results []PlayResult `json:"results"`
}
