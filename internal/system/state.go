package system

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Phase is the step a generation run is in.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseLoading
	PhaseBuilding
	PhaseWriting
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseValidating:
		return "VALIDATING"
	case PhaseLoading:
		return "LOADING"
	case PhaseBuilding:
		return "BUILDING"
	case PhaseWriting:
		return "WRITING"
	case PhaseDone:
		return "DONE"
	case PhaseFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// ValidateTransition enforces validate -> load -> build -> write. Any phase
// may fail; finished runs may start again.
func ValidateTransition(from, to Phase) error {
	validTransitions := map[Phase][]Phase{
		PhaseIdle:       {PhaseValidating},
		PhaseValidating: {PhaseLoading, PhaseFailed},
		PhaseLoading:    {PhaseBuilding, PhaseFailed},
		PhaseBuilding:   {PhaseWriting, PhaseFailed},
		PhaseWriting:    {PhaseDone, PhaseFailed},
		PhaseDone:       {PhaseValidating},
		PhaseFailed:     {PhaseValidating},
	}

	allowed, exists := validTransitions[from]
	if !exists {
		return fmt.Errorf("invalid current phase: %s", from)
	}

	for _, validTo := range allowed {
		if validTo == to {
			return nil
		}
	}

	return fmt.Errorf("invalid phase transition: %s -> %s", from, to)
}

// RunResult summarises one successful generation run.
type RunResult struct {
	RunID      uuid.UUID     `json:"run_id"`
	Output     string        `json:"output"`
	Layout     string        `json:"layout"`
	Devices    int           `json:"devices"`
	Templates  int           `json:"templates"`
	Rows       int           `json:"rows"`
	FirstTagID int           `json:"first_tag_id"`
	LastTagID  int           `json:"last_tag_id"`
	Duration   time.Duration `json:"duration"`
}
