package model

// Action is a human-friendly operating mode for a timestep.
// Keep these values stable; they are intended for CSV output.
type Action string

const (
	ActionCharging    Action = "CHARGING"
	ActionIdle        Action = "IDLE"
	ActionDischarging Action = "DISCHARGING"
)

// ActionFromStep classifies a step by the energy that moved in or out of
// the battery. A step that does neither is IDLE, even with a full or
// empty battery and non-zero demand.
func ActionFromStep(s StepResult) Action {
	switch {
	case s.StoredKWh > 0:
		return ActionCharging
	case s.DischargedKWh > 0:
		return ActionDischarging
	default:
		return ActionIdle
	}
}
