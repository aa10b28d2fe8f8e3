// Package dashboard assembles the signed-in user's sessions, transactions
// and, for mentors, earnings.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mentoverse/mentoverse-platform/internal/bookings"
	"github.com/mentoverse/mentoverse-platform/internal/catalog"
	"github.com/mentoverse/mentoverse-platform/internal/mentors"
)

// ErrUnavailable wraps any failure to load dashboard inputs.
var ErrUnavailable = errors.New("dashboard: data unavailable")

// LoadErrorMessage is shown when the dashboard cannot be built.
const LoadErrorMessage = "Failed to load dashboard data. Please try again later."

const (
	UnknownService = "Unknown Service"
	UnknownMentor  = "Unknown Mentor"

	// PlatformFeePercent is kept by the platform; mentors receive the rest.
	PlatformFeePercent = 10
)

// MentorShare is what a mentor earns from amount.
func MentorShare(amount int64) int64 {
	return amount * (100 - PlatformFeePercent) / 100
}

// User is the dashboard viewer.
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Image    string    `json:"image"`
	Role     string    `json:"role"`
	JoinedOn time.Time `json:"joinedOn"`
}

// MockUser is the viewer until authentication exists.
func MockUser() User {
	return User{
		ID:       bookings.DefaultUserID,
		Name:     "Rahul Sharma",
		Email:    "rahul.sharma@example.com",
		Phone:    "+91 9876543210",
		Image:    "/images/users/profile.jpg",
		Role:     "user",
		JoinedOn: time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC),
	}
}

// Session is a booking with display names resolved.
type Session struct {
	bookings.Booking
	ServiceName string `json:"serviceName"`
	MentorName  string `json:"mentorName"`
}

type Transaction struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
}

type MentorEarning struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
}

type MentorStats struct {
	TotalSessions     int     `json:"totalSessions"`
	CompletedSessions int     `json:"completedSessions"`
	UpcomingSessions  int     `json:"upcomingSessions"`
	AverageRating     float64 `json:"averageRating"`
	TotalEarnings     int64   `json:"totalEarnings"`
	PendingPayments   int64   `json:"pendingPayments"`
}

// Dashboard is the full payload.
type Dashboard struct {
	User             User            `json:"user"`
	UpcomingSessions []Session       `json:"upcomingSessions"`
	PastSessions     []Session       `json:"pastSessions"`
	Transactions     []Transaction   `json:"transactions"`
	MentorStats      *MentorStats    `json:"mentorStats,omitempty"`
	MentorEarnings   []MentorEarning `json:"mentorEarnings,omitempty"`
}

type bookingLister interface {
	List(ctx context.Context) ([]bookings.Booking, error)
}

// Service builds dashboards.
type Service struct {
	bookings  bookingLister
	services  catalog.Source
	directory mentors.Directory
	now       func() time.Time
}

func NewService(b bookingLister, services catalog.Source, directory mentors.Directory) *Service {
	return &Service{bookings: b, services: services, directory: directory, now: time.Now}
}

// Build assembles the dashboard for user. When mentorID names a directory
// entry the mentor view is included.
func (s *Service) Build(ctx context.Context, user User, mentorID string) (Dashboard, error) {
	all, err := s.bookings.List(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("%w: bookings: %v", ErrUnavailable, err)
	}
	services, err := s.services.ListServices(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("%w: services: %v", ErrUnavailable, err)
	}
	directory, err := s.directory.ListMentors(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("%w: mentors: %v", ErrUnavailable, err)
	}

	names := resolver{services: services, mentors: directory}
	now := s.now()
	d := Dashboard{
		User:             user,
		UpcomingSessions: []Session{},
		PastSessions:     []Session{},
		Transactions:     []Transaction{},
	}
	for _, b := range all {
		if b.UserID != user.ID {
			continue
		}
		session := names.session(b)
		switch {
		case b.Upcoming(now):
			d.UpcomingSessions = append(d.UpcomingSessions, session)
		case b.Past(now):
			d.PastSessions = append(d.PastSessions, session)
		}
		d.Transactions = append(d.Transactions, Transaction{
			ID:          "txn-" + b.ID,
			Date:        b.Date,
			Description: session.ServiceName + " with " + session.MentorName,
			Amount:      -b.Amount,
			Status:      string(b.Status),
		})
	}
	sort.SliceStable(d.UpcomingSessions, func(i, j int) bool {
		return d.UpcomingSessions[i].Date.Before(d.UpcomingSessions[j].Date)
	})
	sort.SliceStable(d.PastSessions, func(i, j int) bool {
		return d.PastSessions[i].Date.After(d.PastSessions[j].Date)
	})
	sort.SliceStable(d.Transactions, func(i, j int) bool {
		return d.Transactions[i].Date.After(d.Transactions[j].Date)
	})

	if mentor, ok := mentors.Find(directory, mentorID); ok && mentorID != "" {
		stats, earnings := mentorView(mentor, all, names, now)
		d.MentorStats = &stats
		d.MentorEarnings = earnings
	}
	return d, nil
}

func mentorView(mentor mentors.Mentor, all []bookings.Booking, names resolver, now time.Time) (MentorStats, []MentorEarning) {
	stats := MentorStats{AverageRating: mentor.Rating}
	earnings := []MentorEarning{}
	for _, b := range all {
		if b.MentorID != mentor.ID || b.Status == bookings.StatusCancelled {
			continue
		}
		stats.TotalSessions++
		share := MentorShare(b.Amount)
		status := "paid"
		switch {
		case b.Upcoming(now):
			stats.UpcomingSessions++
			stats.PendingPayments += share
			status = "pending"
		case b.Past(now):
			stats.CompletedSessions++
			stats.TotalEarnings += share
		default:
			stats.PendingPayments += share
			status = "pending"
		}
		earnings = append(earnings, MentorEarning{
			ID:          "earning-" + b.ID,
			Date:        b.Date,
			Description: names.serviceName(b.ServiceID),
			Amount:      share,
			Status:      status,
		})
	}
	sort.SliceStable(earnings, func(i, j int) bool { return earnings[i].Date.After(earnings[j].Date) })
	return stats, earnings
}

type resolver struct {
	services []catalog.Service
	mentors  []mentors.Mentor
}

func (r resolver) serviceName(id string) string {
	if s, ok := catalog.Find(r.services, id); ok {
		return s.Name
	}
	return UnknownService
}

func (r resolver) mentorName(id string) string {
	if m, ok := mentors.Find(r.mentors, id); ok {
		return m.Name
	}
	return UnknownMentor
}

func (r resolver) session(b bookings.Booking) Session {
	return Session{Booking: b, ServiceName: r.serviceName(b.ServiceID), MentorName: r.mentorName(b.MentorID)}
}
