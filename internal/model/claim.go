package model

import "time"

// RawClaim represents an unverified factual assertion as published by a
// producer. It is immutable once published; re-delivery carries the same id.
type RawClaim struct {
	ID            string    `json:"id"`                      // Stable identifier, also the stream partition key
	Text          string    `json:"text"`                    // The assertion itself (1-1000 chars, producer-enforced)
	Category      string    `json:"category"`                // Topic area (unknown values tolerated)
	Source        string    `json:"source"`                  // Originating outlet or platform
	Timestamp     time.Time `json:"timestamp"`               // Origination time, not processing time
	UserSubmitted bool      `json:"userSubmitted,omitempty"` // True when submitted through the API rather than generated
}

// Category names recognized by the default scoring policy. Producers may send
// anything; unrecognized categories fall back to the default reliability.
const (
	CategoryTechnology    = "Technology"
	CategoryHealth        = "Health"
	CategoryPolitics      = "Politics"
	CategoryScience       = "Science"
	CategorySports        = "Sports"
	CategoryEntertainment = "Entertainment"
	CategoryBusiness      = "Business"
	CategoryEnvironment   = "Environment"
)

// Categories lists the enumerated category set in a stable order.
func Categories() []string {
	return []string{
		CategoryTechnology,
		CategoryHealth,
		CategoryPolitics,
		CategoryScience,
		CategorySports,
		CategoryEntertainment,
		CategoryBusiness,
		CategoryEnvironment,
	}
}

// VerificationDetails records the intermediate inputs the scoring engine used,
// so every verdict is explainable and test-pinnable.
type VerificationDetails struct {
	SourceTrusted          bool    `json:"sourceTrusted"`
	SourceSuspicious       bool    `json:"sourceSuspicious"`
	SuspiciousKeywordCount int     `json:"suspiciousKeywordCount"`
	CategoryReliability    float64 `json:"categoryReliability"`
	TextLength             int     `json:"textLength"`
}

// VerificationVerdict is the pure output of the scoring engine for one claim.
// Never mutated after creation.
type VerificationVerdict struct {
	Verified    bool                `json:"verified"`
	Credibility int                 `json:"credibility"` // 0-100
	Details     VerificationDetails `json:"verificationDetails"`
}

// VerifiedClaim is the sink document: the raw claim, its verdict, and the
// processing timestamp stamped by the sink at write time.
type VerifiedClaim struct {
	RawClaim
	VerificationVerdict
	ProcessedAt time.Time `json:"processedAt"`
}

// CredibilityRating maps a credibility score to a coarse human label.
func CredibilityRating(score int) string {
	switch {
	case score >= 80:
		return "Very High"
	case score >= 65:
		return "High"
	case score >= 50:
		return "Medium"
	case score >= 30:
		return "Low"
	default:
		return "Very Low"
	}
}
