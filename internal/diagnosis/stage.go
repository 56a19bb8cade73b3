package diagnosis

import "time"

// StageInterval is how long each progress stage is shown.
const StageInterval = time.Second

// Stage is a step of the progress indicator.
type Stage int

// Progress stages in order.
const (
	StageAnalyzing Stage = iota
	StageAIDiagnosis
	StageSolutionMapping
	StageComplete
)

// Stages returns every stage in order.
func Stages() []Stage {
	return []Stage{StageAnalyzing, StageAIDiagnosis, StageSolutionMapping, StageComplete}
}

// Label returns the display name.
func (s Stage) Label() string {
	switch s {
	case StageAnalyzing:
		return "Analyzing Transaction"
	case StageAIDiagnosis:
		return "AI Diagnosis"
	case StageSolutionMapping:
		return "Solution Mapping"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Progress returns completion in [0, 1].
func (s Stage) Progress() float64 {
	return float64(s) / float64(StageComplete)
}
