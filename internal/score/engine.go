// Package score computes a credibility verdict for a raw claim.
//
// The engine is total and pure: any input, however degenerate, yields a
// verdict, and the same claim always yields the same verdict. All tunables
// live in Policy.
package score

import (
	"math"
	"strings"

	"github.com/truthstream/truthstream/internal/model"
)

// Engine scores raw claims against a fixed policy. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	policy     Policy
	trusted    map[string]struct{}
	suspicious map[string]struct{}
}

// NewEngine creates an engine for the given policy.
func NewEngine(policy Policy) *Engine {
	e := &Engine{
		policy:     policy,
		trusted:    make(map[string]struct{}, len(policy.TrustedSources)),
		suspicious: make(map[string]struct{}, len(policy.SuspiciousSources)),
	}
	for _, s := range policy.TrustedSources {
		e.trusted[s] = struct{}{}
	}
	for _, s := range policy.SuspiciousSources {
		e.suspicious[s] = struct{}{}
	}
	return e
}

// Policy returns the rule set the engine was built with.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Score computes the verdict for a claim. There is no error path: empty text,
// unknown categories and unknown sources all map to defined adjustments.
func (e *Engine) Score(claim model.RawClaim) model.VerificationVerdict {
	p := e.policy
	credibility := p.BaseScore

	_, trusted := e.trusted[claim.Source]
	_, suspicious := e.suspicious[claim.Source]
	switch {
	case trusted:
		credibility += p.TrustedBonus
	case suspicious:
		credibility -= p.SuspiciousMalus
	}

	// Category adjustment rounds half away from zero, so reliability 0.70
	// yields exactly +5 and 0.55 exactly -3. Reliabilities are hundredths;
	// the delta is taken on the scaled integers because the float subtraction
	// (0.55-0.60 is -2.4999... in float64) would miss the .5 boundary.
	reliability := p.Reliability(claim.Category)
	deltaHundredths := math.Round(reliability*100) - math.Round(p.DefaultReliability*100)
	credibility += int(math.Round(deltaHundredths * p.ReliabilityScale / 100))

	keywordCount := e.countKeywords(claim.Text)
	credibility -= keywordCount * p.KeywordPenalty

	textLength := len(claim.Text)
	if textLength < p.ShortTextLen {
		credibility -= p.ShortTextPenalty
	} else if textLength > p.LongTextLen {
		credibility -= p.LongTextPenalty
	}

	if uppercaseRatio(claim.Text) > p.UppercaseCutoff {
		credibility -= p.ShoutingPenalty
	}

	if credibility < 0 {
		credibility = 0
	} else if credibility > 100 {
		credibility = 100
	}

	return model.VerificationVerdict{
		Verified:    credibility >= p.VerifyThreshold,
		Credibility: credibility,
		Details: model.VerificationDetails{
			SourceTrusted:          trusted,
			SourceSuspicious:       suspicious,
			SuspiciousKeywordCount: keywordCount,
			CategoryReliability:    reliability,
			TextLength:             textLength,
		},
	}
}

// countKeywords counts how many configured phrases appear in the text at
// least once (lower-cased substring match, each phrase counted once).
func (e *Engine) countKeywords(text string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, kw := range e.policy.SuspiciousKeywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}

// uppercaseRatio is the share of ASCII uppercase letters in the text. Empty
// text counts as zero rather than dividing by zero.
func uppercaseRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	upper := 0
	for i := 0; i < len(text); i++ {
		if text[i] >= 'A' && text[i] <= 'Z' {
			upper++
		}
	}
	return float64(upper) / float64(len(text))
}
