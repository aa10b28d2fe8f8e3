package booking

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("booking: session not found")
	// ErrStepBlocked is returned when Continue is pressed without the data
	// the current step requires.
	ErrStepBlocked = errors.New("booking: required selection missing for this step")
	// ErrWrongStep is returned for an action the current step does not offer.
	ErrWrongStep = errors.New("booking: action not available at this step")
	// ErrTerminal is returned for any mutation after confirmation.
	ErrTerminal = errors.New("booking: booking already confirmed")
	// ErrSubmitting is returned while a submission is in flight.
	ErrSubmitting = errors.New("booking: submission in progress")
	// ErrSubmitFailed is returned when the submission itself fails; the
	// session stays on the payment step.
	ErrSubmitFailed = errors.New("booking: submission failed")
	// ErrStaleSubmission is returned when a submission finishes after its
	// session was restarted.
	ErrStaleSubmission = errors.New("booking: session restarted during submission")
	// ErrUnknownService is returned when a service id does not resolve.
	ErrUnknownService = errors.New("booking: unknown service")
	// ErrUnknownMentor is returned when a mentor id does not resolve.
	ErrUnknownMentor = errors.New("booking: unknown mentor")
	// ErrNoExternalScheduling is returned when the short flow is given a
	// mentor without a scheduling widget.
	ErrNoExternalScheduling = errors.New("booking: mentor has no external scheduling link")
	// ErrInvalidSlot is returned for time slots outside the bookable day or
	// before a date is chosen.
	ErrInvalidSlot = errors.New("booking: invalid time slot")
	// ErrInvalidPaymentMethod is returned for methods other than card or upi.
	ErrInvalidPaymentMethod = errors.New("booking: invalid payment method")
	// ErrInvalidField is returned for unknown contact fields.
	ErrInvalidField = errors.New("booking: unknown contact field")
	// ErrInvalidNotification is returned for malformed scheduling payloads.
	ErrInvalidNotification = errors.New("booking: malformed scheduling notification")
)

// SubmitErrorMessage is shown when a submission fails.
const SubmitErrorMessage = "Failed to complete your booking. Please try again later."
