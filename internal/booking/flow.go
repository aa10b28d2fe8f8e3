package booking

import (
	"fmt"
	"strings"
)

// Flow selects one of the two wizard variants.
type Flow string

const (
	// FlowLong collects mentor, date, time and contact details in-app.
	FlowLong Flow = "long"
	// FlowShort hands scheduling to the mentor's external widget.
	FlowShort Flow = "short"
)

// DefaultFlow is used when no flow is configured.
const DefaultFlow = FlowShort

// ParseFlow accepts "long" or "short" in any case. Empty means DefaultFlow.
func ParseFlow(s string) (Flow, error) {
	switch Flow(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultFlow, nil
	case FlowLong:
		return FlowLong, nil
	case FlowShort:
		return FlowShort, nil
	}
	return "", fmt.Errorf("booking: unknown flow %q", s)
}

// StepKind names what a step does, independent of its position.
type StepKind string

const (
	StepChooseService StepKind = "choose_service"
	StepSelectMentor  StepKind = "select_mentor"
	StepPickDateTime  StepKind = "pick_date_time"
	StepEnterDetails  StepKind = "enter_details"
	StepSchedule      StepKind = "schedule_external"
	StepPayment       StepKind = "payment"
	StepConfirmed     StepKind = "confirmed"
)

var flowSteps = map[Flow][]StepKind{
	FlowLong:  {StepChooseService, StepSelectMentor, StepPickDateTime, StepEnterDetails, StepPayment, StepConfirmed},
	FlowShort: {StepChooseService, StepSchedule, StepPayment, StepConfirmed},
}

// Steps returns the flow's steps in order; step n is Steps()[n-1].
func (f Flow) Steps() []StepKind {
	return flowSteps[f]
}

// TerminalStep is the Confirmed step number.
func (f Flow) TerminalStep() int {
	return len(flowSteps[f])
}

// Kind returns the kind of step n.
func (f Flow) Kind(step int) StepKind {
	steps := flowSteps[f]
	if step < 1 || step > len(steps) {
		return ""
	}
	return steps[step-1]
}

// StepOf returns the step number of kind, or 0 if the flow lacks it.
func (f Flow) StepOf(kind StepKind) int {
	for i, k := range flowSteps[f] {
		if k == kind {
			return i + 1
		}
	}
	return 0
}

// SchedulingStep is where preselection of both service and mentor lands:
// the date/time step of the long flow or the external widget step.
func (f Flow) SchedulingStep() int {
	if f == FlowLong {
		return f.StepOf(StepPickDateTime)
	}
	return f.StepOf(StepSchedule)
}
