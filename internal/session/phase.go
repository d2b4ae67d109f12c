package session

import "fmt"

// Phase is a state of the session controller.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseProbed
	PhaseTargetsSelected
	PhaseModesSelected
	PhaseTaskCountSelected
	PhaseConfirmed
	PhaseBuilt
	PhaseRunningMode
	PhaseDone
	PhaseCancelled
	PhaseAborted
)

var phaseNames = [...]string{
	PhaseInit:              "init",
	PhaseProbed:            "probed",
	PhaseTargetsSelected:   "targets-selected",
	PhaseModesSelected:     "modes-selected",
	PhaseTaskCountSelected: "task-count-selected",
	PhaseConfirmed:         "confirmed",
	PhaseBuilt:             "built",
	PhaseRunningMode:       "running-mode",
	PhaseDone:              "done",
	PhaseCancelled:         "cancelled",
	PhaseAborted:           "aborted",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Terminal reports whether no further transition is possible.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseCancelled || p == PhaseAborted
}

// transitions lists the forward edges of the session. Cancelled and Aborted
// are reachable from every non-terminal phase and are not listed.
var transitions = map[Phase][]Phase{
	PhaseInit:              {PhaseProbed},
	PhaseProbed:            {PhaseTargetsSelected},
	PhaseTargetsSelected:   {PhaseModesSelected},
	PhaseModesSelected:     {PhaseTaskCountSelected},
	PhaseTaskCountSelected: {PhaseConfirmed},
	PhaseConfirmed:         {PhaseBuilt},
	PhaseBuilt:             {PhaseRunningMode},
	PhaseRunningMode:       {PhaseRunningMode, PhaseDone},
}

// CanTransition reports whether from → to is a legal step.
func CanTransition(from, to Phase) bool {
	if from.Terminal() {
		return false
	}
	if to == PhaseCancelled || to == PhaseAborted {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
