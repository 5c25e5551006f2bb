package domain

// KeyPrefix namespaces every key grantdex writes to the KV store.
const KeyPrefix = "grantdex:"

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// StageConfig holds internal completion settings for one AI stage, not exposed to clients.
type StageConfig struct {
	System      string
	Temperature float32
	MaxTokens   int
}

// SectorStageConfig returns the settings for sector classification.
func SectorStageConfig() StageConfig {
	return StageConfig{
		System:      "You are an expert sector classifier. Always respond with valid JSON.",
		Temperature: 0.1,
		MaxTokens:   500,
	}
}

// MatchStageConfig returns the settings for keyword grant ranking.
func MatchStageConfig() StageConfig {
	return StageConfig{
		System:      "You are an expert grant matching system. Always respond with valid JSON.",
		Temperature: 0.3,
		MaxTokens:   2000,
	}
}

// BriefStageConfig returns the settings for project-brief matching.
func BriefStageConfig() StageConfig {
	return StageConfig{
		System: "You are an expert grants matching assistant. " +
			"Always respond with valid JSON only, following the exact format specified.",
		Temperature: 0.1,
		MaxTokens:   2000,
	}
}
