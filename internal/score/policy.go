package score

// Policy is the versioned rule set the scoring engine applies. Every weight
// and list lives here so a rule change is a policy change, auditable and
// pinnable in tests, never an engine change.
type Policy struct {
	Version string `yaml:"version" json:"version"`

	// Source lists. Membership is exact, case-sensitive string match.
	TrustedSources    []string `yaml:"trusted_sources" json:"trusted_sources"`
	SuspiciousSources []string `yaml:"suspicious_sources" json:"suspicious_sources"`

	// Category reliability in (0,1]; categories absent from the table use
	// DefaultReliability.
	CategoryReliability map[string]float64 `yaml:"category_reliability" json:"category_reliability"`
	DefaultReliability  float64            `yaml:"default_reliability" json:"default_reliability"`

	// Phrases counted by lower-cased substring presence.
	SuspiciousKeywords []string `yaml:"suspicious_keywords" json:"suspicious_keywords"`

	// Weights.
	BaseScore        int     `yaml:"base_score" json:"base_score"`
	TrustedBonus     int     `yaml:"trusted_bonus" json:"trusted_bonus"`
	SuspiciousMalus  int     `yaml:"suspicious_malus" json:"suspicious_malus"`
	ReliabilityScale float64 `yaml:"reliability_scale" json:"reliability_scale"`
	KeywordPenalty   int     `yaml:"keyword_penalty" json:"keyword_penalty"`
	ShortTextLen     int     `yaml:"short_text_len" json:"short_text_len"`
	ShortTextPenalty int     `yaml:"short_text_penalty" json:"short_text_penalty"`
	LongTextLen      int     `yaml:"long_text_len" json:"long_text_len"`
	LongTextPenalty  int     `yaml:"long_text_penalty" json:"long_text_penalty"`
	UppercaseCutoff  float64 `yaml:"uppercase_cutoff" json:"uppercase_cutoff"`
	ShoutingPenalty  int     `yaml:"shouting_penalty" json:"shouting_penalty"`
	VerifyThreshold  int     `yaml:"verify_threshold" json:"verify_threshold"`
}

// DefaultPolicy returns the v1 rule set.
func DefaultPolicy() Policy {
	return Policy{
		Version: "v1",
		TrustedSources: []string{
			"Reuters", "AP News", "BBC", "The Guardian",
			"New York Times", "Washington Post", "Bloomberg",
		},
		SuspiciousSources: []string{
			"FakeNewsDaily", "ClickbaitNews", "ViralStories",
			"TruthSeeker", "UnverifiedNews",
		},
		CategoryReliability: map[string]float64{
			"Technology":    0.75,
			"Science":       0.80,
			"Health":        0.65,
			"Politics":      0.55,
			"Business":      0.70,
			"Entertainment": 0.60,
		},
		DefaultReliability: 0.60,
		SuspiciousKeywords: []string{
			"shocking", "unbelievable", "miracle", "secret",
			"they don't want you to know", "breaking", "exclusive",
			"you won't believe", "doctors hate", "instant cure",
		},
		BaseScore:        50,
		TrustedBonus:     30,
		SuspiciousMalus:  20,
		ReliabilityScale: 50,
		KeywordPenalty:   5,
		ShortTextLen:     30,
		ShortTextPenalty: 10,
		LongTextLen:      500,
		LongTextPenalty:  5,
		UppercaseCutoff:  0.3,
		ShoutingPenalty:  15,
		VerifyThreshold:  60,
	}
}

// Reliability looks up the category reliability, falling back to the default
// for unrecognized categories.
func (p Policy) Reliability(category string) float64 {
	if r, ok := p.CategoryReliability[category]; ok {
		return r
	}
	return p.DefaultReliability
}
