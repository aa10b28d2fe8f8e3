package booking

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/mentoverse/mentoverse-platform/internal/catalog"
	"github.com/mentoverse/mentoverse-platform/internal/mentors"
)

func testService(t *testing.T, id string) catalog.Service {
	t.Helper()
	s, ok := catalog.Find(catalog.Fixtures(), id)
	if !ok {
		t.Fatalf("fixture service %q missing", id)
	}
	return s
}

func testMentor(t *testing.T, id string) mentors.Mentor {
	t.Helper()
	m, ok := mentors.Find(mentors.Fixtures(), id)
	if !ok {
		t.Fatalf("fixture mentor %q missing", id)
	}
	return m
}

// longFlowAtDetails walks a long-flow wizard to the details step.
func longFlowAtDetails(t *testing.T) *Wizard {
	t.Helper()
	w := NewWizard("s1", FlowLong, IST)
	if err := w.SelectService(testService(t, "mock-interview")); err != nil {
		t.Fatalf("select service: %v", err)
	}
	if err := w.SelectMentor(testMentor(t, "1")); err != nil {
		t.Fatalf("select mentor: %v", err)
	}
	if err := w.SelectDate(time.Date(2025, 3, 12, 0, 0, 0, 0, IST)); err != nil {
		t.Fatalf("select date: %v", err)
	}
	if err := w.SelectTime("10:00 AM"); err != nil {
		t.Fatalf("select time: %v", err)
	}
	if err := w.Continue(); err != nil {
		t.Fatalf("continue: %v", err)
	}
	if got := w.state.Flow.Kind(w.Step()); got != StepEnterDetails {
		t.Fatalf("expected details step, got %s", got)
	}
	return w
}

func TestLongFlowSelectionsAdvance(t *testing.T) {
	w := NewWizard("s1", FlowLong, IST)
	if err := w.SelectService(testService(t, "mock-interview")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Step() != 2 {
		t.Fatalf("expected step 2 after service, got %d", w.Step())
	}
	if err := w.SelectMentor(testMentor(t, "2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Step() != 3 {
		t.Fatalf("expected step 3 after mentor, got %d", w.Step())
	}
}

func TestSelectDateClearsTime(t *testing.T) {
	w := NewWizard("s1", FlowLong, IST)
	_ = w.SelectService(testService(t, "mock-interview"))
	_ = w.SelectMentor(testMentor(t, "1"))

	if err := w.SelectDate(time.Date(2025, 3, 12, 0, 0, 0, 0, IST)); err != nil {
		t.Fatalf("select date: %v", err)
	}
	if err := w.SelectTime("02:00 PM"); err != nil {
		t.Fatalf("select time: %v", err)
	}
	if err := w.SelectDate(time.Date(2025, 3, 13, 0, 0, 0, 0, IST)); err != nil {
		t.Fatalf("reselect date: %v", err)
	}
	d := w.State().Draft
	if d.ScheduledDate != "2025-03-13" {
		t.Errorf("expected date 2025-03-13, got %q", d.ScheduledDate)
	}
	if d.ScheduledTime != "" {
		t.Errorf("expected time cleared, got %q", d.ScheduledTime)
	}
	if w.CanContinue() {
		t.Error("expected continue disabled without a time")
	}
	if err := w.Continue(); !errors.Is(err, ErrStepBlocked) {
		t.Errorf("expected ErrStepBlocked, got %v", err)
	}
}

func TestSelectTimeRejectsUnknownSlotAndMissingDate(t *testing.T) {
	w := NewWizard("s1", FlowLong, IST)
	_ = w.SelectService(testService(t, "mock-interview"))
	_ = w.SelectMentor(testMentor(t, "1"))

	if err := w.SelectTime("10:00 AM"); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("expected ErrInvalidSlot without a date, got %v", err)
	}
	_ = w.SelectDate(time.Date(2025, 3, 12, 0, 0, 0, 0, IST))
	if err := w.SelectTime("10:30 AM"); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("expected ErrInvalidSlot for off-grid slot, got %v", err)
	}
}

func TestChangingMentorDropsSchedule(t *testing.T) {
	w := NewWizard("s1", FlowLong, IST)
	_ = w.SelectService(testService(t, "mock-interview"))
	_ = w.SelectMentor(testMentor(t, "1"))
	_ = w.SelectDate(time.Date(2025, 3, 12, 0, 0, 0, 0, IST))
	_ = w.SelectTime("10:00 AM")

	if err := w.Back(); err != nil {
		t.Fatalf("back: %v", err)
	}
	if err := w.SelectMentor(testMentor(t, "3")); err != nil {
		t.Fatalf("select mentor: %v", err)
	}
	d := w.State().Draft
	if d.ScheduledDate != "" || d.ScheduledTime != "" {
		t.Errorf("expected schedule cleared, got %q %q", d.ScheduledDate, d.ScheduledTime)
	}
}

func TestPreselection(t *testing.T) {
	service := testService(t, "career-guidance")
	withURL := testMentor(t, "1")
	withoutURL := testMentor(t, "5")

	tests := []struct {
		name        string
		flow        Flow
		service     *catalog.Service
		mentor      *mentors.Mentor
		wantStep    int
		wantService bool
		wantMentor  bool
	}{
		{"long none", FlowLong, nil, nil, 1, false, false},
		{"long service only", FlowLong, &service, nil, 1, true, false},
		{"long mentor only", FlowLong, nil, &withURL, 1, false, true},
		{"long both", FlowLong, &service, &withURL, 3, true, true},
		{"long both mentor without url", FlowLong, &service, &withoutURL, 3, true, true},
		{"short service only", FlowShort, &service, nil, 1, true, false},
		{"short mentor only", FlowShort, nil, &withURL, 1, false, true},
		{"short both", FlowShort, &service, &withURL, 2, true, true},
		{"short both mentor without url", FlowShort, &service, &withoutURL, 1, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWizard("s1", tt.flow, IST)
			w.Preselect(tt.service, tt.mentor)
			d := w.State().Draft
			if d.Step != tt.wantStep {
				t.Errorf("step = %d, want %d", d.Step, tt.wantStep)
			}
			if (d.Service != nil) != tt.wantService {
				t.Errorf("service set = %v, want %v", d.Service != nil, tt.wantService)
			}
			if (d.Mentor != nil) != tt.wantMentor {
				t.Errorf("mentor set = %v, want %v", d.Mentor != nil, tt.wantMentor)
			}
		})
	}
}

func TestPreselectionLandsOnSchedulingStep(t *testing.T) {
	service := testService(t, "mock-interview")
	mentor := testMentor(t, "2")

	long := NewWizard("a", FlowLong, IST)
	long.Preselect(&service, &mentor)
	if got := FlowLong.Kind(long.Step()); got != StepPickDateTime {
		t.Errorf("long flow landed on %s", got)
	}

	short := NewWizard("b", FlowShort, IST)
	short.Preselect(&service, &mentor)
	if got := FlowShort.Kind(short.Step()); got != StepSchedule {
		t.Errorf("short flow landed on %s", got)
	}
}

func TestShortFlowRequiresSchedulingLink(t *testing.T) {
	w := NewWizard("s1", FlowShort, IST)
	_ = w.SelectService(testService(t, "mock-interview"))

	if err := w.SelectMentor(testMentor(t, "5")); !errors.Is(err, ErrNoExternalScheduling) {
		t.Fatalf("expected ErrNoExternalScheduling, got %v", err)
	}
	if err := w.Continue(); !errors.Is(err, ErrStepBlocked) {
		t.Fatalf("expected ErrStepBlocked without mentor, got %v", err)
	}
	if err := w.SelectMentor(testMentor(t, "4")); err != nil {
		t.Fatalf("select mentor: %v", err)
	}
	if w.Step() != 2 {
		t.Fatalf("short flow should stay on the widget step, got %d", w.Step())
	}
	if err := w.Continue(); err != nil {
		t.Fatalf("continue: %v", err)
	}
	if got := FlowShort.Kind(w.Step()); got != StepPayment {
		t.Errorf("expected payment step, got %s", got)
	}
}

func TestReceiveSchedulingUsesLocalTime(t *testing.T) {
	w := NewWizard("s1", FlowShort, IST)
	service := testService(t, "mock-interview")
	mentor := testMentor(t, "1")
	w.Preselect(&service, &mentor)

	applied, err := w.ReceiveScheduling(SchedulingNotification{Event: "calendly.profile_page_viewed"})
	if err != nil || applied {
		t.Fatalf("expected other events ignored, got applied=%v err=%v", applied, err)
	}

	n := SchedulingNotification{Event: EventScheduledExternal}
	n.Payload.Event.StartTime = "2025-03-12T04:30:00Z"
	applied, err = w.ReceiveScheduling(n)
	if err != nil || !applied {
		t.Fatalf("expected notification applied, got applied=%v err=%v", applied, err)
	}
	d := w.State().Draft
	if d.ScheduledDate != "2025-03-12" || d.ScheduledTime != "10:00 AM" {
		t.Errorf("got %q %q, want 2025-03-12 10:00 AM", d.ScheduledDate, d.ScheduledTime)
	}
}

func TestParseSchedulingNotification(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantOK  bool
		wantErr bool
	}{
		{"scheduled", `{"event":"calendly.event_scheduled","payload":{"event":{"start_time":"2025-03-12T04:30:00Z"}}}`, true, false},
		{"short name", `{"event":"scheduled","payload":{"event":{"start_time":"2025-03-12T10:00:00+05:30"}}}`, true, false},
		{"other event", `{"event":"calendly.date_and_time_selected"}`, false, false},
		{"missing start", `{"event":"scheduled","payload":{}}`, false, true},
		{"bad start", `{"event":"scheduled","payload":{"event":{"start_time":"tomorrow"}}}`, false, true},
		{"missing event", `{"payload":{}}`, false, true},
		{"not json", `scheduled`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := ParseSchedulingNotification([]byte(tt.body))
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidNotification) {
				t.Errorf("expected ErrInvalidNotification, got %v", err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	if got := ValidateEmail("abc"); got != MsgEmailInvalid {
		t.Errorf("abc: got %q", got)
	}
	if got := ValidateEmail("abc@def.com"); got != "" {
		t.Errorf("abc@def.com: got %q", got)
	}
	if got := ValidateEmail("  "); got != MsgEmailRequired {
		t.Errorf("blank: got %q", got)
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  string
	}{
		{"5551234567", ""},
		{"(555) 123-4567", ""},
		{"555 123 4567", ""},
		{"555\u00a0123\u00a04567", ""},
		{"(555)\u202f123-4567", ""},
		{"555-123-456", MsgPhoneInvalid},
		{"55512345678", MsgPhoneInvalid},
		{"555123456a", MsgPhoneInvalid},
		{"", MsgPhoneRequired},
	}
	for _, tt := range tests {
		if got := ValidatePhone(tt.phone); got != tt.want {
			t.Errorf("ValidatePhone(%q) = %q, want %q", tt.phone, got, tt.want)
		}
	}
}

func TestContinueOnDetailsRecordsFieldErrors(t *testing.T) {
	w := longFlowAtDetails(t)
	step := w.Step()

	_ = w.SetContactField(FieldEmail, "abc")
	_ = w.SetContactField(FieldPhone, "555-123-456")
	if err := w.Continue(); !errors.Is(err, ErrStepBlocked) {
		t.Fatalf("expected ErrStepBlocked, got %v", err)
	}
	if w.Step() != step {
		t.Fatalf("step moved to %d", w.Step())
	}
	errs := w.State().Draft.Errors
	if errs[FieldName] != MsgNameRequired || errs[FieldEmail] != MsgEmailInvalid || errs[FieldPhone] != MsgPhoneInvalid {
		t.Fatalf("unexpected errors: %v", errs)
	}

	_ = w.SetContactField(FieldEmail, "abc@def.com")
	errs = w.State().Draft.Errors
	if _, ok := errs[FieldEmail]; ok {
		t.Error("editing email should clear its message")
	}
	if errs[FieldName] == "" {
		t.Error("name message should remain")
	}

	_ = w.SetContactField(FieldName, "Asha")
	_ = w.SetContactField(FieldPhone, "(555) 123-4567")
	if err := w.Continue(); err != nil {
		t.Fatalf("continue: %v", err)
	}
	if w.State().Draft.Errors != nil {
		t.Error("expected errors cleared after a valid continue")
	}
	if got := FlowLong.Kind(w.Step()); got != StepPayment {
		t.Errorf("expected payment step, got %s", got)
	}
}

func TestSetContactFieldRejectsUnknownField(t *testing.T) {
	w := longFlowAtDetails(t)
	if err := w.SetContactField("address", "x"); !errors.Is(err, ErrInvalidField) {
		t.Errorf("expected ErrInvalidField, got %v", err)
	}
}

func TestBeginSubmitWithoutMethodIsNoop(t *testing.T) {
	w := NewWizard("s1", FlowShort, IST)
	service := testService(t, "mock-interview")
	mentor := testMentor(t, "1")
	w.Preselect(&service, &mentor)
	_ = w.Continue()
	before := w.State()

	_, ok, err := w.BeginSubmit()
	if ok || err != nil {
		t.Fatalf("expected no-op, got ok=%v err=%v", ok, err)
	}
	after := w.State()
	if after.Submitting || after.Draft.Step != before.Draft.Step || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("state changed: before=%+v after=%+v", before, after)
	}
}

func TestSubmitReachesTerminalStep(t *testing.T) {
	w := NewWizard("s1", FlowShort, IST)
	service := testService(t, "mock-interview")
	mentor := testMentor(t, "1")
	w.Preselect(&service, &mentor)
	_ = w.Continue()
	if err := w.SetPaymentMethod(PaymentUPI); err != nil {
		t.Fatalf("payment method: %v", err)
	}

	ticket, ok, err := w.BeginSubmit()
	if !ok || err != nil {
		t.Fatalf("begin submit: ok=%v err=%v", ok, err)
	}
	if err := w.SetPaymentMethod(PaymentCard); !errors.Is(err, ErrSubmitting) {
		t.Fatalf("expected ErrSubmitting, got %v", err)
	}
	ref := NewRandomReferences(rand.New(rand.NewPCG(7, 11))).NextReference()
	if !w.CompleteSubmit(ticket, Confirmation{Reference: ref, Service: service, Mentor: mentor}) {
		t.Fatal("expected submission to land")
	}
	if w.Step() != FlowShort.TerminalStep() {
		t.Fatalf("expected terminal step, got %d", w.Step())
	}
	if !ReferencePattern.MatchString(w.State().Confirmation.Reference) {
		t.Errorf("bad reference %q", w.State().Confirmation.Reference)
	}
	if err := w.Back(); !errors.Is(err, ErrTerminal) {
		t.Errorf("expected ErrTerminal on back, got %v", err)
	}
	if err := w.Continue(); !errors.Is(err, ErrTerminal) {
		t.Errorf("expected ErrTerminal on continue, got %v", err)
	}
	if w.CanGoBack() || w.CanContinue() {
		t.Error("terminal step should offer no navigation")
	}
}

func TestBackAbandonsSubmission(t *testing.T) {
	w := NewWizard("s1", FlowShort, IST)
	service := testService(t, "mock-interview")
	mentor := testMentor(t, "1")
	w.Preselect(&service, &mentor)
	_ = w.Continue()
	_ = w.SetPaymentMethod(PaymentUPI)

	abandoned, ok, err := w.BeginSubmit()
	if !ok || err != nil {
		t.Fatalf("begin submit: ok=%v err=%v", ok, err)
	}
	if err := w.Back(); err != nil {
		t.Fatalf("back during submission: %v", err)
	}
	if w.State().Submitting {
		t.Fatal("back should end the submission")
	}
	if FlowShort.Kind(w.Step()) != StepSchedule {
		t.Fatalf("expected schedule step, got %d", w.Step())
	}
	if w.CompleteSubmit(abandoned, Confirmation{Reference: "MV-100001"}) {
		t.Fatal("abandoned submission must not land")
	}
	if w.FailSubmit(abandoned, SubmitErrorMessage) {
		t.Fatal("abandoned failure must not land")
	}
	if w.State().Confirmation != nil || FlowShort.Kind(w.Step()) != StepSchedule {
		t.Fatalf("state moved after abandoned result: %+v", w.State())
	}

	if err := w.Continue(); err != nil {
		t.Fatalf("continue: %v", err)
	}
	if err := w.SetPaymentMethod(PaymentCard); err != nil {
		t.Fatalf("payment method after back: %v", err)
	}
	retry, ok, err := w.BeginSubmit()
	if !ok || err != nil {
		t.Fatalf("resubmit: ok=%v err=%v", ok, err)
	}
	if retry.Attempt == abandoned.Attempt {
		t.Fatal("resubmission should be a new attempt")
	}
	if w.CompleteSubmit(abandoned, Confirmation{Reference: "MV-100001"}) {
		t.Fatal("earlier attempt must not land over the retry")
	}
	if !w.CompleteSubmit(retry, Confirmation{Reference: "MV-100002"}) {
		t.Fatal("expected retry to land")
	}
	if got := w.State().Confirmation.Reference; got != "MV-100002" {
		t.Errorf("expected retry confirmation, got %s", got)
	}
}

func TestAttachConfirmationMatchesLandedOne(t *testing.T) {
	w := NewWizard("s1", FlowShort, IST)
	service := testService(t, "mock-interview")
	mentor := testMentor(t, "1")
	w.Preselect(&service, &mentor)
	_ = w.Continue()
	_ = w.SetPaymentMethod(PaymentCard)
	ticket, _, _ := w.BeginSubmit()
	c := Confirmation{ID: "c-1", Reference: "MV-100003"}
	if !w.CompleteSubmit(ticket, c) {
		t.Fatal("expected submission to land")
	}

	other := Confirmation{ID: "c-2", Reference: "MV-100003", PaymentURL: "https://pay.example/other"}
	if w.AttachConfirmation(other) {
		t.Fatal("confirmation with another id must not attach")
	}
	c.PaymentURL = "https://pay.example/c-1"
	if !w.AttachConfirmation(c) {
		t.Fatal("expected annotated confirmation to attach")
	}
	if got := w.State().Confirmation.PaymentURL; got != c.PaymentURL {
		t.Errorf("payment url = %q", got)
	}
}

func TestFailSubmitKeepsStep(t *testing.T) {
	w := NewWizard("s1", FlowShort, IST)
	service := testService(t, "mock-interview")
	mentor := testMentor(t, "1")
	w.Preselect(&service, &mentor)
	_ = w.Continue()
	_ = w.SetPaymentMethod(PaymentCard)
	ticket, _, _ := w.BeginSubmit()

	if !w.FailSubmit(ticket, SubmitErrorMessage) {
		t.Fatal("expected failure to land")
	}
	st := w.State()
	if st.Submitting || st.SubmitError != SubmitErrorMessage {
		t.Errorf("unexpected state %+v", st)
	}
	if FlowShort.Kind(st.Draft.Step) != StepPayment {
		t.Errorf("expected payment step, got %d", st.Draft.Step)
	}
	if _, ok, err := w.BeginSubmit(); !ok || err != nil {
		t.Errorf("expected retry allowed, got ok=%v err=%v", ok, err)
	}
}

func TestRestartDropsInflightSubmission(t *testing.T) {
	w := NewWizard("s1", FlowShort, IST)
	service := testService(t, "mock-interview")
	mentor := testMentor(t, "1")
	w.Preselect(&service, &mentor)
	_ = w.Continue()
	_ = w.SetPaymentMethod(PaymentCard)
	ticket, _, _ := w.BeginSubmit()

	w.Restart()
	if w.CompleteSubmit(ticket, Confirmation{Reference: "MV-123456"}) {
		t.Fatal("stale submission landed")
	}
	st := w.State()
	if st.Draft.Step != 1 || st.Draft.Service != nil || st.Confirmation != nil || st.Submitting {
		t.Errorf("unexpected state after restart: %+v", st)
	}
}

func TestBackMovesOneStep(t *testing.T) {
	for _, flow := range []Flow{FlowLong, FlowShort} {
		for k := 2; k < flow.TerminalStep(); k++ {
			w := NewWizard("s1", flow, IST)
			w.state.Draft.Step = k
			if err := w.Back(); err != nil {
				t.Fatalf("%s step %d: %v", flow, k, err)
			}
			if w.Step() != k-1 {
				t.Errorf("%s: back from %d landed on %d", flow, k, w.Step())
			}
		}
		w := NewWizard("s1", flow, IST)
		if err := w.Back(); !errors.Is(err, ErrWrongStep) {
			t.Errorf("%s: expected ErrWrongStep on step 1, got %v", flow, err)
		}
	}
}

func TestRandomReferencesFormat(t *testing.T) {
	refs := NewRandomReferences(rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 1000; i++ {
		if ref := refs.NextReference(); !ReferencePattern.MatchString(ref) {
			t.Fatalf("reference %q does not match", ref)
		}
	}
}

func TestConfirmationScheduledAt(t *testing.T) {
	c := Confirmation{ScheduledDate: "2025-03-12", ScheduledTime: "02:00 PM"}
	at, ok := c.ScheduledAt(IST)
	if !ok {
		t.Fatal("expected a schedule")
	}
	want := time.Date(2025, 3, 12, 14, 0, 0, 0, IST)
	if !at.Equal(want) {
		t.Errorf("got %v, want %v", at, want)
	}
	if _, ok := (Confirmation{ScheduledDate: "2025-03-12"}).ScheduledAt(IST); ok {
		t.Error("expected no schedule without a time")
	}
}

func TestParseFlow(t *testing.T) {
	tests := map[string]Flow{"": DefaultFlow, "LONG": FlowLong, " short ": FlowShort}
	for in, want := range tests {
		got, err := ParseFlow(in)
		if err != nil || got != want {
			t.Errorf("ParseFlow(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFlow("medium"); err == nil {
		t.Error("expected error for unknown flow")
	}
}
