package model

import "math"

// Diagnosis is the backend's explanation and remediation guidance for a
// failed transaction. It lives only as long as the panel showing it.
type Diagnosis struct {
	TransactionID           string      `json:"transaction_id"`
	FailureType             FailureType `json:"failure_type"`
	Diagnosis               string      `json:"diagnosis"`
	UserGuidance            string      `json:"user_guidance"`
	TechnicalDetails        string      `json:"technical_details"`
	EstimatedResolutionTime string      `json:"estimated_resolution_time"`
	ResolutionSteps         []string    `json:"resolution_steps"`
	ConfidenceScore         float64     `json:"confidence_score"`
	RetryRecommended        bool        `json:"retry_recommended"`
	ContactSupport          bool        `json:"contact_support"`
}

// Confidence returns the band for the diagnosis score.
func (d Diagnosis) Confidence() ConfidenceBand {
	return BandFor(d.ConfidenceScore)
}

// ConfidencePercent returns the score as a rounded percentage.
func (d Diagnosis) ConfidencePercent() int {
	return int(math.Round(d.ConfidenceScore * 100))
}

// ConfidenceBand buckets a confidence score for display.
type ConfidenceBand int

// Confidence bands, lowest first.
const (
	ConfidenceLow ConfidenceBand = iota
	ConfidenceMedium
	ConfidenceHigh
)

// Band thresholds. A score equal to a threshold belongs to the higher band.
const (
	HighConfidenceThreshold   = 0.8
	MediumConfidenceThreshold = 0.6
)

// BandFor maps a score to its band.
func BandFor(score float64) ConfidenceBand {
	switch {
	case score >= HighConfidenceThreshold:
		return ConfidenceHigh
	case score >= MediumConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// String returns "High", "Medium" or "Low".
func (b ConfidenceBand) String() string {
	switch b {
	case ConfidenceHigh:
		return "High"
	case ConfidenceMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// Severity names the colour band: success, warning or error.
func (b ConfidenceBand) Severity() string {
	switch b {
	case ConfidenceHigh:
		return "success"
	case ConfidenceMedium:
		return "warning"
	default:
		return "error"
	}
}
