package mentors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentoverse/mentoverse-platform/internal/store"
)

func TestFixturesSchedulingURLs(t *testing.T) {
	mentors := Fixtures()
	require.Len(t, mentors, 8)
	for _, m := range mentors {
		require.NoError(t, m.Validate())
		switch m.ID {
		case "1", "2", "3", "4":
			assert.True(t, m.CanScheduleExternally(), "mentor %s", m.ID)
		default:
			assert.False(t, m.CanScheduleExternally(), "mentor %s", m.ID)
		}
	}
}

func TestStaticDirectory(t *testing.T) {
	dir := NewStaticDirectory(Fixtures())
	m, ok, err := dir.FindMentorByID(context.Background(), "2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Priya Sharma", m.Name)

	_, ok, err = dir.FindMentorByID(context.Background(), "99")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewFailingDirectory(nil).ListMentors(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestStoreDirectoryWrapsErrors(t *testing.T) {
	coll := store.NewMemoryCollection(store.Mentors, WithID, Fixtures()...)
	dir := NewStoreDirectory(coll)
	mentors, err := dir.ListMentors(context.Background())
	require.NoError(t, err)
	assert.Len(t, mentors, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = dir.FindMentorByID(ctx, "1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAvailabilityDatesWithinWindow(t *testing.T) {
	a := NewAvailability(rand.New(rand.NewPCG(1, 2)), 0)
	from := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	dates, err := a.Dates(context.Background(), "1", from)
	require.NoError(t, err)
	require.NotEmpty(t, dates)
	assert.LessOrEqual(t, len(dates), 14)

	first := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	last := time.Date(2026, 3, 24, 0, 0, 0, 0, time.UTC)
	for i, d := range dates {
		assert.False(t, d.Before(first), "date %s before window", d)
		assert.False(t, d.After(last), "date %s after window", d)
		if i > 0 {
			assert.True(t, d.After(dates[i-1]))
		}
	}
}

func TestAvailabilitySlotsAreKnown(t *testing.T) {
	a := NewAvailability(rand.New(rand.NewPCG(7, 7)), 0)
	slots, err := a.Slots(context.Background(), time.Now())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(slots), len(TimeSlots))
	for _, s := range slots {
		assert.True(t, IsValidSlot(s), s)
	}
	assert.False(t, IsValidSlot("08:00 AM"))
}

func TestAvailabilityDelayHonoursContext(t *testing.T) {
	a := NewAvailability(nil, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := a.Dates(ctx, "1", time.Now())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func validApplication() Application {
	return Application{
		Name:         "Meera Iyer",
		Email:        "meera@example.com",
		Phone:        "9876543210",
		Title:        "Product Manager",
		Company:      "Flipkart",
		Expertise:    []string{"Career Guidance"},
		Bio:          strings.Repeat("Helping people ship products. ", 3),
		Availability: []string{"Monday"},
	}
}

func TestApplicationValidateMessages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Application)
		want   string
	}{
		{"valid", func(*Application) {}, ""},
		{"missing company", func(a *Application) { a.Company = "" }, MsgRequiredFields},
		{"missing name wins over bio", func(a *Application) { a.Name = ""; a.Bio = "short" }, MsgRequiredFields},
		{"bad email", func(a *Application) { a.Email = "nope" }, MsgInvalidEmail},
		{"no expertise", func(a *Application) { a.Expertise = nil }, MsgExpertise},
		{"no availability", func(a *Application) { a.Availability = []string{} }, MsgAvailability},
		{"expertise before availability", func(a *Application) { a.Expertise = nil; a.Availability = nil }, MsgExpertise},
		{"short bio", func(a *Application) { a.Bio = "I like mentoring." }, MsgBio},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := validApplication()
			tt.mutate(&app)
			app.Normalize()
			err := app.Validate()
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.want, verr.Message)
		})
	}
}

func TestApplicationNormalizeDefaults(t *testing.T) {
	app := Application{Name: "  Meera  "}
	app.Normalize()
	assert.Equal(t, "Meera", app.Name)
	assert.Equal(t, DefaultHourlyRate, app.HourlyRate)
	assert.Equal(t, StatusPending, app.Status)
}

type mockS3 struct {
	keys   []string
	bodies [][]byte
	err    error
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, _ := io.ReadAll(in.Body)
	m.keys = append(m.keys, *in.Key)
	m.bodies = append(m.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestImageStoreUpload(t *testing.T) {
	client := &mockS3{}
	images := NewImageStore(client, "mentor-images", nil)

	ref, err := images.Upload(context.Background(), "me.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.Len(t, client.keys, 1)
	assert.True(t, strings.HasPrefix(client.keys[0], "mentors/profile/"))
	assert.True(t, strings.HasSuffix(client.keys[0], ".png"))
	assert.Equal(t, "s3://mentor-images/"+client.keys[0], ref)
	assert.Equal(t, []byte("png-bytes"), client.bodies[0])

	_, err = images.Upload(context.Background(), "me.gif", "image/gif", strings.NewReader("gif"))
	assert.Error(t, err)
}

func TestImageStoreDisabledIsNoop(t *testing.T) {
	ref, err := NewImageStore(nil, "", nil).Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Empty(t, ref)
}

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/mentors/{mentorID}/availability", h.GetAvailableDates)
	r.Get("/api/mentors/{mentorID}/availability/{date}", h.GetAvailableSlots)
	r.Post("/api/mentors/applications", h.SubmitApplication)
	r.Get("/admin/mentors/applications", h.ListApplications)
	r.Post("/admin/mentors/applications/{applicationID}/approve", h.ApproveApplication)
	return r
}

func newTestHandler(images *ImageStore) (*Handler, *MemoryApplicationRepository, *store.MemoryCollection[Mentor]) {
	coll := store.NewMemoryCollection(store.Mentors, WithID, Fixtures()...)
	apps := NewMemoryApplicationRepository()
	h := NewHandler(NewStoreDirectory(coll), NewAvailability(rand.New(rand.NewPCG(3, 4)), 0), apps, images, coll, nil)
	return h, apps, coll
}

func TestHandlerAvailability(t *testing.T) {
	h, _, _ := newTestHandler(nil)
	router := newTestRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/mentors/1/availability", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var dates availabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dates))
	assert.Equal(t, "1", dates.MentorID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/mentors/99/availability", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/mentors/1/availability/tomorrow", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/mentors/1/availability/2026-03-11", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var slots availabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slots))
	assert.Equal(t, "2026-03-11", slots.Date)
}

func TestHandlerAvailabilityDirectoryDown(t *testing.T) {
	h := NewHandler(NewFailingDirectory(nil), NewAvailability(nil, 0), NewMemoryApplicationRepository(), nil, nil, nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/mentors/1/availability", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), LoadErrorMessage)
}

func TestSubmitApplicationJSON(t *testing.T) {
	h, apps, _ := newTestHandler(nil)
	router := newTestRouter(h)

	bad := validApplication()
	bad.Bio = "too short"
	body, _ := json.Marshal(bad)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/mentors/applications", bytes.NewReader(body)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgBio)

	good := validApplication()
	good.Status = StatusApproved
	body, _ = json.Marshal(good)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/mentors/applications", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, DefaultHourlyRate, created.HourlyRate)

	listed, err := apps.List(context.Background(), StatusPending)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestSubmitApplicationMultipartWithPhoto(t *testing.T) {
	client := &mockS3{}
	h, _, _ := newTestHandler(NewImageStore(client, "mentor-images", nil))
	router := newTestRouter(h)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	app := validApplication()
	fields := map[string]string{
		"name": app.Name, "email": app.Email, "phone": app.Phone, "title": app.Title,
		"company": app.Company, "bio": app.Bio, "hourlyRate": "2200",
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.WriteField("expertise", "Finance"))
	require.NoError(t, mw.WriteField("expertise", "Startups"))
	require.NoError(t, mw.WriteField("availability", "Saturday"))

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="photo"; filename="me.jpg"`}
	header["Content-Type"] = []string{"image/jpeg"}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/mentors/applications", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(2200), created.HourlyRate)
	assert.Equal(t, []string{"Finance", "Startups"}, created.Expertise)
	require.Len(t, client.keys, 1)
	assert.Equal(t, "s3://mentor-images/"+client.keys[0], created.ImageRef)
}

func TestApproveApplicationCreatesMentor(t *testing.T) {
	h, apps, coll := newTestHandler(nil)
	router := newTestRouter(h)

	app := validApplication()
	app.Normalize()
	require.NoError(t, apps.Create(context.Background(), &app))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/mentors/applications/"+app.ID+"/approve", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	mentors, err := coll.List(context.Background())
	require.NoError(t, err)
	require.Len(t, mentors, 9)
	assert.Equal(t, app.Name, mentors[8].Name)

	stored, err := apps.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/mentors/applications/"+app.ID+"/approve", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/mentors/applications/missing/approve", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/mentors/applications?status=approved", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

type recordingListener struct {
	received []Application
	err      error
}

func (l *recordingListener) ApplicationReceived(_ context.Context, app Application) error {
	l.received = append(l.received, app)
	return l.err
}

func TestSubmitApplicationNotifiesListener(t *testing.T) {
	h, _, _ := newTestHandler(nil)
	listener := &recordingListener{err: errors.New("smtp down")}
	router := newTestRouter(h.WithApplicationListener(listener))

	body, _ := json.Marshal(validApplication())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/mentors/applications", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, listener.received, 1)
	assert.NotEmpty(t, listener.received[0].ID)
	assert.Equal(t, StatusPending, listener.received[0].Status)
}
