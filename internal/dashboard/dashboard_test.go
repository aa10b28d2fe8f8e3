package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentoverse/mentoverse-platform/internal/bookings"
	"github.com/mentoverse/mentoverse-platform/internal/catalog"
	"github.com/mentoverse/mentoverse-platform/internal/mentors"
	"github.com/mentoverse/mentoverse-platform/internal/store"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, extra ...bookings.Booking) *Service {
	t.Helper()
	seed := append(bookings.Fixtures(fixedNow), extra...)
	svc := NewService(
		store.NewMemoryCollection(store.Bookings, bookings.WithID, seed...),
		catalog.NewStoreSource(store.NewMemoryCollection(store.Services, catalog.WithID, catalog.Fixtures()...)),
		mentors.NewStoreDirectory(store.NewMemoryCollection(store.Mentors, mentors.WithID, mentors.Fixtures()...)),
	)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestBuildUserView(t *testing.T) {
	d, err := newService(t).Build(context.Background(), MockUser(), "")
	require.NoError(t, err)

	require.Len(t, d.UpcomingSessions, 2)
	require.Len(t, d.PastSessions, 2)
	require.Len(t, d.Transactions, 4)
	assert.Nil(t, d.MentorStats)

	assert.Equal(t, "booking1", d.UpcomingSessions[0].ID)
	assert.Equal(t, "1 on 1 Personal Mock Interview", d.UpcomingSessions[0].ServiceName)
	assert.Equal(t, "Rajiv Mehta", d.UpcomingSessions[0].MentorName)
	assert.Equal(t, "booking3", d.PastSessions[0].ID, "most recent past session first")

	assert.Equal(t, int64(-1800), d.Transactions[0].Amount)
	assert.Equal(t, "1 on 1 Career Guidance with Priya Sharma", d.Transactions[0].Description)
}

func TestBuildUnknownNames(t *testing.T) {
	orphan := bookings.Booking{
		ID: "orphan", UserID: bookings.DefaultUserID, MentorID: "99", ServiceID: "gone",
		Date: fixedNow.AddDate(0, 0, 1), Status: bookings.StatusConfirmed, Amount: 100,
	}
	d, err := newService(t, orphan).Build(context.Background(), MockUser(), "")
	require.NoError(t, err)

	var found bool
	for _, s := range d.UpcomingSessions {
		if s.ID == "orphan" {
			found = true
			assert.Equal(t, UnknownService, s.ServiceName)
			assert.Equal(t, UnknownMentor, s.MentorName)
		}
	}
	assert.True(t, found)
}

func TestBuildSkipsOtherUsers(t *testing.T) {
	other := bookings.Booking{
		ID: "other", UserID: "someone", MentorID: "1", ServiceID: "mock-interview",
		Date: fixedNow.AddDate(0, 0, 3), Status: bookings.StatusConfirmed, Amount: 1500,
	}
	d, err := newService(t, other).Build(context.Background(), MockUser(), "")
	require.NoError(t, err)
	assert.Len(t, d.Transactions, 4)
}

func TestBuildMentorView(t *testing.T) {
	extra := []bookings.Booking{
		{ID: "m1", UserID: "u2", MentorID: "1", ServiceID: "cv-resume-review", Date: fixedNow.AddDate(0, 0, -3), Status: bookings.StatusCompleted, Amount: 1200},
		{ID: "m2", UserID: "u3", MentorID: "1", ServiceID: "mock-interview", Date: fixedNow.AddDate(0, 0, -1), Status: bookings.StatusCancelled, Amount: 1500},
	}
	d, err := newService(t, extra...).Build(context.Background(), MockUser(), "1")
	require.NoError(t, err)
	require.NotNil(t, d.MentorStats)

	stats := *d.MentorStats
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 1, stats.UpcomingSessions)
	assert.Equal(t, 1, stats.CompletedSessions)
	assert.Equal(t, 4.9, stats.AverageRating)
	assert.Equal(t, int64(1080), stats.TotalEarnings)
	assert.Equal(t, int64(1350), stats.PendingPayments)

	require.Len(t, d.MentorEarnings, 2)
	assert.Equal(t, "pending", d.MentorEarnings[0].Status)
	assert.Equal(t, "paid", d.MentorEarnings[1].Status)
}

func TestMentorShare(t *testing.T) {
	assert.Equal(t, int64(1080), MentorShare(1200))
	assert.Equal(t, int64(1350), MentorShare(1500))
	assert.Equal(t, int64(0), MentorShare(0))
}

type failingLister struct{}

func (failingLister) List(ctx context.Context) ([]bookings.Booking, error) {
	return nil, errors.New("connection refused")
}

func TestHandler(t *testing.T) {
	h := NewHandler(newService(t), nil)
	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard?mentor=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var d Dashboard
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&d))
	assert.Equal(t, "Rahul Sharma", d.User.Name)
	require.NotNil(t, d.MentorStats)
	assert.Equal(t, 4.8, d.MentorStats.AverageRating)

	svc := newService(t)
	svc.bookings = failingLister{}
	rec = httptest.NewRecorder()
	NewHandler(svc, nil).Get(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to load dashboard data. Please try again later."}`, rec.Body.String())
}
