// Package textmatch decides whether two UI labels denote the same target.
package textmatch

// Mode selects how strictly two labels are compared.
type Mode string

// Mode values
const (
	ModeExact   Mode = "exact"
	ModePartial Mode = "partial"
)

// DefaultThreshold is the edit-distance similarity a fuzzy match must reach.
const DefaultThreshold = 0.7

// AntonymPair is a state-toggle wording pair, e.g. "follow" and "unfollow".
// Matching is checked in both directions.
type AntonymPair struct {
	Positive    string `yaml:"positive" json:"positive"`
	Negative    string `yaml:"negative" json:"negative"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Config controls a Matcher.
type Config struct {
	// Enabled=false makes text a non-constraint: every pair matches.
	Enabled                 bool          `yaml:"enabled" json:"enabled"`
	Mode                    Mode          `yaml:"mode" json:"mode"`
	AntonymCheckEnabled     bool          `yaml:"antonymCheckEnabled" json:"antonymCheckEnabled"`
	SemanticAnalysisEnabled bool          `yaml:"semanticAnalysisEnabled" json:"semanticAnalysisEnabled"`
	PartialMatchThreshold   float64       `yaml:"partialMatchThreshold" json:"partialMatchThreshold"`
	AntonymPairs            []AntonymPair `yaml:"antonymPairs" json:"antonymPairs,omitempty"`
	// BuiltinAntonyms adds BuiltinAntonymPairs and the generic "已X"/"取消X"
	// patterns to AntonymPairs.
	BuiltinAntonyms bool `yaml:"builtinAntonyms" json:"builtinAntonyms"`
}

// DefaultConfig returns partial matching with every check enabled.
func DefaultConfig() Config {
	return Config{
		Enabled:                 true,
		Mode:                    ModePartial,
		AntonymCheckEnabled:     true,
		SemanticAnalysisEnabled: true,
		PartialMatchThreshold:   DefaultThreshold,
		BuiltinAntonyms:         true,
	}
}

// ExactConfig returns strict matching on normalized text.
func ExactConfig() Config {
	cfg := DefaultConfig()
	cfg.Mode = ModeExact
	cfg.AntonymCheckEnabled = false
	return cfg
}

func (c Config) threshold() float64 {
	if c.PartialMatchThreshold <= 0 || c.PartialMatchThreshold > 1 {
		return DefaultThreshold
	}
	return c.PartialMatchThreshold
}
