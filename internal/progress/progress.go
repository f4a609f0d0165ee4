package progress

import "carslink-backend/internal/model"

// Step is one of the four ordinal repair steps shown to the client.
type Step string

const (
	StepReceived   Step = "received"
	StepDiagnosing Step = "diagnosing"
	StepInProgress Step = "in_progress"
	StepCompleted  Step = "completed"
)

// steps is the fixed UI progression, in order.
var steps = []Step{StepReceived, StepDiagnosing, StepInProgress, StepCompleted}

// appointmentSteps maps an appointment status onto a step when no tracking
// record exists. Cancelled maps to the first step but is rendered through the
// Cancelled branch, never the stepper.
var appointmentSteps = map[model.AppointmentStatus]Step{
	model.AppointmentPending:    StepReceived,
	model.AppointmentConfirmed:  StepReceived,
	model.AppointmentInProgress: StepInProgress,
	model.AppointmentCompleted:  StepCompleted,
	model.AppointmentCancelled:  StepReceived,
}

// Progress is the single derived repair-progress value computed from the
// appointment status and the optional tracking record.
type Progress struct {
	StepID    Step `json:"step_id"`
	StepIndex int  `json:"step_index"`
	// Cancelled marks the terminal branch that bypasses the stepper.
	Cancelled bool `json:"cancelled"`
}

// Derive reconciles the two independently written status enums. Precedence:
// a cancelled appointment always wins, even over a stale tracking row; then a
// tracking row wins verbatim; then the appointment status is mapped through
// the fixed table. Unknown values degrade to the first step.
func Derive(status model.AppointmentStatus, tracking *model.RepairTracking) Progress {
	if status == model.AppointmentCancelled {
		return Progress{StepID: StepReceived, StepIndex: 0, Cancelled: true}
	}

	if tracking != nil {
		step := Step(tracking.Status)
		return Progress{StepID: step, StepIndex: indexOf(step)}
	}

	step, ok := appointmentSteps[status]
	if !ok {
		step = StepReceived
	}
	return Progress{StepID: step, StepIndex: indexOf(step)}
}

func indexOf(step Step) int {
	for i, s := range steps {
		if s == step {
			return i
		}
	}
	return 0
}
