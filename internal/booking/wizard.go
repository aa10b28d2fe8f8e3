package booking

import (
	"fmt"
	"time"

	"github.com/mentoverse/mentoverse-platform/internal/catalog"
	"github.com/mentoverse/mentoverse-platform/internal/mentors"
)

const (
	dateLayout = "2006-01-02"
	slotLayout = "03:04 PM"
)

// State is everything a wizard session holds. It is what gets snapshotted.
type State struct {
	ID           string        `json:"id"`
	Flow         Flow          `json:"flow"`
	Generation   uint64        `json:"generation"`
	Draft        Draft         `json:"draft"`
	Submitting   bool          `json:"submitting"`
	SubmitCount  uint64        `json:"submitCount,omitempty"`
	SubmitError  string        `json:"submitError,omitempty"`
	LoadError    string        `json:"loadError,omitempty"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// SubmitTicket identifies one submission attempt. Its generation and attempt
// must still match the session when the attempt completes.
type SubmitTicket struct {
	SessionID  string
	Flow       Flow
	Generation uint64
	Attempt    uint64
	Draft      Draft
}

// Wizard is the booking state machine for one session. It is not safe for
// concurrent use; Manager serializes access.
type Wizard struct {
	state State
	loc   *time.Location
	now   func() time.Time
}

// NewWizard starts a session at step 1.
func NewWizard(id string, flow Flow, loc *time.Location) *Wizard {
	if loc == nil {
		loc = time.UTC
	}
	w := &Wizard{loc: loc, now: time.Now}
	now := w.now().UTC()
	w.state = State{ID: id, Flow: flow, Draft: Draft{Step: 1}, CreatedAt: now, UpdatedAt: now}
	return w
}

// RestoreWizard rebuilds a wizard from a snapshot.
func RestoreWizard(st State, loc *time.Location) *Wizard {
	if loc == nil {
		loc = time.UTC
	}
	return &Wizard{state: st, loc: loc, now: time.Now}
}

// State returns a copy of the session state.
func (w *Wizard) State() State {
	st := w.state
	st.Draft = w.state.Draft.clone()
	if w.state.Confirmation != nil {
		c := *w.state.Confirmation
		st.Confirmation = &c
	}
	return st
}

// Step returns the current step number.
func (w *Wizard) Step() int { return w.state.Draft.Step }

func (w *Wizard) touch() { w.state.UpdatedAt = w.now().UTC() }

func (w *Wizard) kind() StepKind { return w.state.Flow.Kind(w.state.Draft.Step) }

func (w *Wizard) terminal() bool { return w.state.Draft.Step == w.state.Flow.TerminalStep() }

// mutable guards every user edit.
func (w *Wizard) mutable() error {
	if w.terminal() {
		return ErrTerminal
	}
	if w.state.Submitting {
		return ErrSubmitting
	}
	return nil
}

func (w *Wizard) requireKind(kinds ...StepKind) error {
	if err := w.mutable(); err != nil {
		return err
	}
	current := w.kind()
	for _, k := range kinds {
		if current == k {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrWrongStep, current)
}

// SetLoadError records a data-load failure for the current step.
func (w *Wizard) SetLoadError(msg string) {
	w.state.LoadError = msg
	w.touch()
}

// Preselect seeds selections from inbound parameters. A service alone or a
// mentor alone stays on step 1; both jump to the scheduling step. In the
// short flow a mentor without a scheduling link is ignored.
func (w *Wizard) Preselect(service *catalog.Service, mentor *mentors.Mentor) {
	if w.state.Draft.Step != 1 {
		return
	}
	if mentor != nil && w.state.Flow == FlowShort && !mentor.CanScheduleExternally() {
		mentor = nil
	}
	if service != nil {
		s := *service
		w.state.Draft.Service = &s
	}
	if mentor != nil {
		m := *mentor
		w.state.Draft.Mentor = &m
	}
	if service != nil && mentor != nil {
		w.state.Draft.Step = w.state.Flow.SchedulingStep()
	}
	w.touch()
}

// SelectService records the service and advances immediately.
func (w *Wizard) SelectService(s catalog.Service) error {
	if err := w.requireKind(StepChooseService); err != nil {
		return err
	}
	w.state.Draft.Service = &s
	w.state.LoadError = ""
	w.state.Draft.Step++
	w.touch()
	return nil
}

// SelectMentor records the mentor. The long flow advances to date/time
// selection; the short flow stays so the widget can be used. Changing the
// mentor drops any schedule picked for the previous one.
func (w *Wizard) SelectMentor(m mentors.Mentor) error {
	if err := w.requireKind(StepSelectMentor, StepSchedule); err != nil {
		return err
	}
	if w.state.Flow == FlowShort && !m.CanScheduleExternally() {
		return ErrNoExternalScheduling
	}
	d := &w.state.Draft
	if d.Mentor != nil && d.Mentor.ID != m.ID {
		d.ScheduledDate, d.ScheduledTime = "", ""
	}
	d.Mentor = &m
	if w.state.Flow == FlowLong {
		d.Step++
	}
	w.touch()
	return nil
}

// SelectDate sets the date and always clears the time slot.
func (w *Wizard) SelectDate(date time.Time) error {
	if err := w.requireKind(StepPickDateTime); err != nil {
		return err
	}
	w.setDate(date.Format(dateLayout))
	w.touch()
	return nil
}

func (w *Wizard) setDate(date string) {
	w.state.Draft.ScheduledDate = date
	w.state.Draft.ScheduledTime = ""
}

// SelectTime sets a slot on the chosen date.
func (w *Wizard) SelectTime(slot string) error {
	if err := w.requireKind(StepPickDateTime); err != nil {
		return err
	}
	if w.state.Draft.ScheduledDate == "" || !mentors.IsValidSlot(slot) {
		return ErrInvalidSlot
	}
	w.state.Draft.ScheduledTime = slot
	w.touch()
	return nil
}

// SetContactField edits one contact field and clears that field's message.
func (w *Wizard) SetContactField(field, value string) error {
	if err := w.requireKind(StepEnterDetails); err != nil {
		return err
	}
	c := &w.state.Draft.Contact
	switch field {
	case FieldName:
		c.Name = value
	case FieldEmail:
		c.Email = value
	case FieldPhone:
		c.Phone = value
	case FieldMessage:
		c.Message = value
	default:
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	if w.state.Draft.Errors != nil {
		delete(w.state.Draft.Errors, field)
		if len(w.state.Draft.Errors) == 0 {
			w.state.Draft.Errors = nil
		}
	}
	w.touch()
	return nil
}

// SetPaymentMethod chooses card or upi.
func (w *Wizard) SetPaymentMethod(m PaymentMethod) error {
	if err := w.requireKind(StepPayment); err != nil {
		return err
	}
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, m)
	}
	w.state.Draft.PaymentMethod = m
	w.touch()
	return nil
}

// ReceiveScheduling stores the start time from a widget notification.
// Events other than scheduled are ignored and report false.
func (w *Wizard) ReceiveScheduling(n SchedulingNotification) (bool, error) {
	if !n.IsScheduled() {
		return false, nil
	}
	if err := w.requireKind(StepSchedule); err != nil {
		return false, err
	}
	start, err := n.Start()
	if err != nil {
		return false, err
	}
	local := start.In(w.loc)
	w.setDate(local.Format(dateLayout))
	w.state.Draft.ScheduledTime = local.Format(slotLayout)
	w.touch()
	return true, nil
}

// Continue advances one step if the current step's data is complete.
// On the details step, failing fields get messages and the step holds.
func (w *Wizard) Continue() error {
	if err := w.mutable(); err != nil {
		return err
	}
	d := &w.state.Draft
	switch w.kind() {
	case StepChooseService:
		if d.Service == nil {
			return ErrStepBlocked
		}
	case StepSelectMentor:
		if d.Mentor == nil {
			return ErrStepBlocked
		}
	case StepPickDateTime:
		if d.Mentor == nil || d.ScheduledDate == "" || d.ScheduledTime == "" {
			return ErrStepBlocked
		}
	case StepEnterDetails:
		if errs := ValidateContact(d.Contact); len(errs) > 0 {
			d.Errors = errs
			w.touch()
			return ErrStepBlocked
		}
		d.Errors = nil
	case StepSchedule:
		if d.Mentor == nil || !d.Mentor.CanScheduleExternally() {
			return ErrStepBlocked
		}
	default:
		return fmt.Errorf("%w: %s", ErrWrongStep, w.kind())
	}
	if d.Service == nil {
		return ErrStepBlocked
	}
	d.Step++
	w.touch()
	return nil
}

// CanContinue reports whether Continue would advance, without recording
// validation messages.
func (w *Wizard) CanContinue() bool {
	if w.mutable() != nil {
		return false
	}
	d := w.state.Draft
	switch w.kind() {
	case StepChooseService:
		return d.Service != nil
	case StepSelectMentor:
		return d.Service != nil && d.Mentor != nil
	case StepPickDateTime:
		return d.Service != nil && d.Mentor != nil && d.ScheduledDate != "" && d.ScheduledTime != ""
	case StepEnterDetails:
		return d.Service != nil && len(ValidateContact(d.Contact)) == 0
	case StepSchedule:
		return d.Service != nil && d.Mentor != nil && d.Mentor.CanScheduleExternally()
	}
	return false
}

// CanGoBack reports whether Back would move.
func (w *Wizard) CanGoBack() bool {
	return !w.terminal() && w.state.Draft.Step > 1
}

// Back moves one step back from any step between the first and the
// terminal one. It never re-validates. Going back while a submission is in
// flight abandons that attempt; its result will not land.
func (w *Wizard) Back() error {
	if w.terminal() {
		return ErrTerminal
	}
	if w.state.Draft.Step <= 1 {
		return fmt.Errorf("%w: already on the first step", ErrWrongStep)
	}
	w.state.Submitting = false
	w.state.Draft.Step--
	w.touch()
	return nil
}

// BeginSubmit starts a submission. With no payment method it is a no-op and
// returns ok=false with nothing changed.
func (w *Wizard) BeginSubmit() (SubmitTicket, bool, error) {
	if w.state.Draft.PaymentMethod == PaymentNone {
		return SubmitTicket{}, false, nil
	}
	if err := w.requireKind(StepPayment); err != nil {
		return SubmitTicket{}, false, err
	}
	if w.state.Draft.Service == nil || w.state.Draft.Mentor == nil {
		return SubmitTicket{}, false, ErrStepBlocked
	}
	w.state.Submitting = true
	w.state.SubmitCount++
	w.state.SubmitError = ""
	w.touch()
	return SubmitTicket{
		SessionID:  w.state.ID,
		Flow:       w.state.Flow,
		Generation: w.state.Generation,
		Attempt:    w.state.SubmitCount,
		Draft:      w.state.Draft.clone(),
	}, true, nil
}

// pending reports whether t is the submission the session is waiting on.
func (w *Wizard) pending(t SubmitTicket) bool {
	return w.state.Submitting &&
		t.Generation == w.state.Generation &&
		t.Attempt == w.state.SubmitCount
}

// CompleteSubmit lands a successful submission. A ticket from an earlier
// generation or an abandoned attempt is dropped and reports false.
func (w *Wizard) CompleteSubmit(t SubmitTicket, c Confirmation) bool {
	if !w.pending(t) {
		return false
	}
	w.state.Submitting = false
	w.state.Confirmation = &c
	w.state.Draft.Step = w.state.Flow.TerminalStep()
	w.touch()
	return true
}

// FailSubmit records a failed submission and re-enables submit.
func (w *Wizard) FailSubmit(t SubmitTicket, msg string) bool {
	if !w.pending(t) {
		return false
	}
	w.state.Submitting = false
	w.state.SubmitError = msg
	w.touch()
	return true
}

// AttachConfirmation replaces the landed confirmation with an annotated copy
// of itself, e.g. once a payment link exists. It reports false when c is not
// the session's confirmation.
func (w *Wizard) AttachConfirmation(c Confirmation) bool {
	cur := w.state.Confirmation
	if cur == nil || cur.ID != c.ID || cur.Reference != c.Reference {
		return false
	}
	w.state.Confirmation = &c
	w.touch()
	return true
}

// Restart discards the draft and starts a new generation at step 1.
func (w *Wizard) Restart() {
	gen := w.state.Generation + 1
	now := w.now().UTC()
	w.state = State{
		ID:         w.state.ID,
		Flow:       w.state.Flow,
		Generation: gen,
		Draft:      Draft{Step: 1},
		CreatedAt:  w.state.CreatedAt,
		UpdatedAt:  now,
	}
}
