package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mentoverse/mentoverse-platform/internal/catalog"
	"github.com/mentoverse/mentoverse-platform/internal/mentors"
	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// Observer records wizard activity. metrics.BookingMetrics implements it.
type Observer interface {
	SessionStarted(flow string)
	StepTransition(flow string, from, to int)
	SubmissionFinished(outcome string, elapsed time.Duration)
}

// Submission outcomes reported to the Observer.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeFailed    = "failed"
	OutcomeStale     = "stale"
)

type session struct {
	mu        sync.Mutex
	wizard    *Wizard
	discarded bool
}

// Manager owns the live wizard sessions. Each session has a single writer at
// a time; submissions wait outside the session lock and land only if the
// session is still waiting on the attempt that started them. Confirmation
// sinks run only for results that landed.
type Manager struct {
	catalog   catalog.Source
	directory mentors.Directory
	submitter Submitter
	sinks     []ConfirmationSink
	snapshots SnapshotStore
	observer  Observer
	logger    *logging.Logger

	defaultFlow Flow
	ttl         time.Duration
	loc         *time.Location
	newID       func() string
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSnapshotStore persists session state, e.g. in Redis.
func WithSnapshotStore(s SnapshotStore) ManagerOption {
	return func(m *Manager) {
		if s != nil {
			m.snapshots = s
		}
	}
}

// WithConfirmationSinks registers the side effects of a confirmed booking.
// They run in order after the confirmation has landed on its session.
func WithConfirmationSinks(sinks ...ConfirmationSink) ManagerOption {
	return func(m *Manager) { m.sinks = append(m.sinks, sinks...) }
}

// WithObserver attaches metrics.
func WithObserver(o Observer) ManagerOption {
	return func(m *Manager) { m.observer = o }
}

// WithDefaultFlow sets the flow used when a session does not ask for one.
func WithDefaultFlow(f Flow) ManagerOption {
	return func(m *Manager) {
		if f != "" {
			m.defaultFlow = f
		}
	}
}

// WithSessionTTL sets how long an idle session survives.
func WithSessionTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithLocation sets the zone scheduled start times are shown in.
func WithLocation(loc *time.Location) ManagerOption {
	return func(m *Manager) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// IST is India Standard Time.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// NewManager builds a session manager.
func NewManager(source catalog.Source, directory mentors.Directory, submitter Submitter, logger *logging.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	m := &Manager{
		catalog:     source,
		directory:   directory,
		submitter:   submitter,
		snapshots:   NewMemorySnapshotStore(),
		logger:      logger,
		defaultFlow: DefaultFlow,
		ttl:         30 * time.Minute,
		loc:         IST,
		newID:       uuid.NewString,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// View is the client-facing projection of a session.
type View struct {
	SessionID    string        `json:"sessionId"`
	Flow         Flow          `json:"flow"`
	Step         int           `json:"step"`
	StepKind     StepKind      `json:"stepKind"`
	TotalSteps   int           `json:"totalSteps"`
	Draft        Draft         `json:"draft"`
	Summary      Summary       `json:"summary"`
	CanContinue  bool          `json:"canContinue"`
	CanGoBack    bool          `json:"canGoBack"`
	Submitting   bool          `json:"submitting"`
	SubmitError  string        `json:"submitError,omitempty"`
	LoadError    string        `json:"loadError,omitempty"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
	Receipt      *Receipt      `json:"receipt,omitempty"`
}

func viewOf(w *Wizard) View {
	st := w.State()
	v := View{
		SessionID:    st.ID,
		Flow:         st.Flow,
		Step:         st.Draft.Step,
		StepKind:     st.Flow.Kind(st.Draft.Step),
		TotalSteps:   st.Flow.TerminalStep(),
		Draft:        st.Draft,
		Summary:      Summarize(st.Draft),
		CanContinue:  w.CanContinue(),
		CanGoBack:    w.CanGoBack(),
		Submitting:   st.Submitting,
		SubmitError:  st.SubmitError,
		LoadError:    st.LoadError,
		Confirmation: st.Confirmation,
	}
	if st.Confirmation != nil {
		r := NewReceipt(*st.Confirmation)
		v.Receipt = &r
	}
	return v
}

// Start opens a session. serviceID and mentorID are optional preselections;
// ids that do not resolve are ignored. A catalog that cannot be loaded is
// reported on the session rather than failing the call.
func (m *Manager) Start(ctx context.Context, flow Flow, serviceID, mentorID string) (View, error) {
	if flow == "" {
		flow = m.defaultFlow
	}
	if flow != FlowLong && flow != FlowShort {
		return View{}, fmt.Errorf("booking: unknown flow %q", flow)
	}
	w := NewWizard(m.newID(), flow, m.loc)
	w.now = m.now

	var service *catalog.Service
	services, err := m.catalog.ListServices(ctx)
	if err != nil {
		m.logger.Warn("catalog unavailable at session start", "error", err)
		w.SetLoadError(catalog.LoadErrorMessage)
	} else if serviceID != "" {
		if s, ok := catalog.Find(services, serviceID); ok {
			service = &s
		}
	}

	var mentor *mentors.Mentor
	if mentorID != "" {
		mt, ok, err := m.directory.FindMentorByID(ctx, mentorID)
		switch {
		case err != nil:
			m.logger.Warn("mentor directory unavailable at session start", "error", err)
		case ok:
			mentor = &mt
		}
	}
	w.Preselect(service, mentor)

	s := &session{wizard: w}
	m.mu.Lock()
	m.sessions[w.state.ID] = s
	m.mu.Unlock()

	m.persist(ctx, w)
	if m.observer != nil {
		m.observer.SessionStarted(string(flow))
	}
	m.logger.Info("wizard session started",
		"session_id", w.state.ID, "flow", flow, "step", w.Step(),
		"service_id", serviceID, "mentor_id", mentorID)
	return viewOf(w), nil
}

// Get returns the session view, resuming it from a snapshot if needed.
func (m *Manager) Get(ctx context.Context, id string) (View, error) {
	s, err := m.session(ctx, id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return View{}, ErrSessionNotFound
	}
	return viewOf(s.wizard), nil
}

func (m *Manager) session(ctx context.Context, id string) (*session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		s.mu.Lock()
		expired := m.now().Sub(s.wizard.state.UpdatedAt) > m.ttl && !s.wizard.state.Submitting
		s.mu.Unlock()
		if !expired {
			return s, nil
		}
		m.forget(id, s)
	}

	st, found, err := m.snapshots.Load(ctx, id)
	if err != nil {
		m.logger.Warn("snapshot load failed", "session_id", id, "error", err)
		return nil, ErrSessionNotFound
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	w := RestoreWizard(st, m.loc)
	w.now = m.now

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[id]; ok {
		return existing, nil
	}
	s = &session{wizard: w}
	m.sessions[id] = s
	return s, nil
}

func (m *Manager) forget(id string, s *session) {
	m.mu.Lock()
	if m.sessions[id] == s {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
}

func (m *Manager) persist(ctx context.Context, w *Wizard) {
	if err := m.snapshots.Save(ctx, w.State(), m.ttl); err != nil {
		m.logger.Warn("snapshot save failed", "session_id", w.state.ID, "error", err)
	}
}

// apply runs fn as the session's single writer and returns the resulting
// view, including when fn fails.
func (m *Manager) apply(ctx context.Context, id string, fn func(w *Wizard) error) (View, error) {
	s, err := m.session(ctx, id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return View{}, ErrSessionNotFound
	}
	w := s.wizard
	from := w.Step()
	opErr := fn(w)
	if to := w.Step(); to != from && m.observer != nil {
		m.observer.StepTransition(string(w.state.Flow), from, to)
	}
	m.persist(ctx, w)
	return viewOf(w), opErr
}

// SelectService resolves serviceID and selects it.
func (m *Manager) SelectService(ctx context.Context, id, serviceID string) (View, error) {
	services, err := m.catalog.ListServices(ctx)
	if err != nil {
		view, _ := m.apply(ctx, id, func(w *Wizard) error {
			w.SetLoadError(catalog.LoadErrorMessage)
			return nil
		})
		return view, fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	s, ok := catalog.Find(services, serviceID)
	return m.apply(ctx, id, func(w *Wizard) error {
		if !ok {
			return ErrUnknownService
		}
		return w.SelectService(s)
	})
}

// SelectMentor resolves mentorID and selects it.
func (m *Manager) SelectMentor(ctx context.Context, id, mentorID string) (View, error) {
	mt, ok, err := m.directory.FindMentorByID(ctx, mentorID)
	if err != nil {
		view, _ := m.apply(ctx, id, func(w *Wizard) error {
			w.SetLoadError(mentors.LoadErrorMessage)
			return nil
		})
		return view, fmt.Errorf("%w: %v", mentors.ErrUnavailable, err)
	}
	return m.apply(ctx, id, func(w *Wizard) error {
		if !ok {
			return ErrUnknownMentor
		}
		w.state.LoadError = ""
		return w.SelectMentor(mt)
	})
}

func (m *Manager) SelectDate(ctx context.Context, id string, date time.Time) (View, error) {
	return m.apply(ctx, id, func(w *Wizard) error { return w.SelectDate(date) })
}

func (m *Manager) SelectTime(ctx context.Context, id, slot string) (View, error) {
	return m.apply(ctx, id, func(w *Wizard) error { return w.SelectTime(slot) })
}

// SetContact applies field edits in field-name order.
func (m *Manager) SetContact(ctx context.Context, id string, fields map[string]string) (View, error) {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return m.apply(ctx, id, func(w *Wizard) error {
		for _, name := range names {
			if err := w.SetContactField(name, fields[name]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (m *Manager) SetPaymentMethod(ctx context.Context, id string, method PaymentMethod) (View, error) {
	return m.apply(ctx, id, func(w *Wizard) error { return w.SetPaymentMethod(method) })
}

// ReceiveScheduling applies a widget notification; applied is false for
// ignored events.
func (m *Manager) ReceiveScheduling(ctx context.Context, id string, n SchedulingNotification) (View, bool, error) {
	var applied bool
	view, err := m.apply(ctx, id, func(w *Wizard) error {
		var err error
		applied, err = w.ReceiveScheduling(n)
		return err
	})
	return view, applied, err
}

func (m *Manager) Continue(ctx context.Context, id string) (View, error) {
	return m.apply(ctx, id, func(w *Wizard) error { return w.Continue() })
}

func (m *Manager) Back(ctx context.Context, id string) (View, error) {
	return m.apply(ctx, id, func(w *Wizard) error { return w.Back() })
}

// Restart clears the draft. A submission still in flight will not land.
func (m *Manager) Restart(ctx context.Context, id string) (View, error) {
	return m.apply(ctx, id, func(w *Wizard) error {
		w.Restart()
		return nil
	})
}

// Discard ends a session.
func (m *Manager) Discard(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.mu.Lock()
		s.discarded = true
		s.mu.Unlock()
	}
	if err := m.snapshots.Delete(ctx, id); err != nil {
		return err
	}
	if !ok {
		return nil
	}
	m.logger.Info("wizard session discarded", "session_id", id)
	return nil
}

// Submit runs the payment step's submission. With no payment method it
// changes nothing. The simulated call is not cancelled by the caller going
// away; its result is dropped if the session was restarted or discarded.
func (m *Manager) Submit(ctx context.Context, id string) (View, error) {
	ctx, span := submitTracer.Start(ctx, "booking.manager.submit")
	defer span.End()
	span.SetAttributes(attribute.String("mentoverse.session_id", id))

	s, err := m.session(ctx, id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	if s.discarded {
		s.mu.Unlock()
		return View{}, ErrSessionNotFound
	}
	ticket, ok, err := s.wizard.BeginSubmit()
	if ok {
		m.persist(ctx, s.wizard)
	}
	view := viewOf(s.wizard)
	s.mu.Unlock()
	if !ok || err != nil {
		return view, err
	}

	started := m.now()
	ctx = context.WithoutCancel(ctx)
	conf, subErr := m.submitter.Submit(ctx, ticket)

	s.mu.Lock()
	outcome := OutcomeConfirmed
	if subErr != nil {
		outcome = OutcomeFailed
		m.logger.Error("booking submission failed", "session_id", id, "error", subErr)
	}
	landed := false
	discarded := s.discarded
	if !discarded {
		from := s.wizard.Step()
		if subErr != nil {
			landed = s.wizard.FailSubmit(ticket, SubmitErrorMessage)
		} else {
			landed = s.wizard.CompleteSubmit(ticket, conf)
		}
		if landed {
			if to := s.wizard.Step(); to != from && m.observer != nil {
				m.observer.StepTransition(string(s.wizard.state.Flow), from, to)
			}
			m.persist(ctx, s.wizard)
		}
	}
	if !landed {
		outcome = OutcomeStale
		m.logger.Warn("submission result dropped for abandoned session",
			"session_id", id, "attempt", ticket.Attempt, "reference", conf.Reference)
	}
	if m.observer != nil {
		m.observer.SubmissionFinished(outcome, m.now().Sub(started))
	}
	if !discarded {
		view = viewOf(s.wizard)
	}
	s.mu.Unlock()

	switch {
	case discarded:
		return View{}, ErrSessionNotFound
	case !landed:
		return view, ErrStaleSubmission
	case subErr != nil:
		return view, errors.Join(ErrSubmitFailed, subErr)
	}
	m.logger.Info("booking confirmed", "session_id", id,
		"confirmation_id", conf.ID, "reference", conf.Reference)

	if len(m.sinks) == 0 {
		return view, nil
	}
	m.runSinks(ctx, &conf)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.discarded && s.wizard.AttachConfirmation(conf) {
		m.persist(ctx, s.wizard)
		view = viewOf(s.wizard)
	}
	return view, nil
}
