package mentors

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ApplicationStatus tracks an onboarding application through review.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// DefaultHourlyRate applies when an applicant leaves the rate blank.
const DefaultHourlyRate int64 = 1500

// Validation messages shown on the onboarding form.
const (
	MsgRequiredFields = "Please fill in all required fields"
	MsgInvalidEmail   = "Please enter a valid email"
	MsgExpertise      = "Please select at least one area of expertise"
	MsgAvailability   = "Please select at least one day of availability"
	MsgBio            = "Please provide a detailed professional bio (at least 50 characters)"
	MsgSubmitFailed   = "There was an error submitting your profile. Please try again."
)

var (
	// ErrApplicationNotFound is returned for unknown application ids.
	ErrApplicationNotFound = errors.New("mentors: application not found")
	// ErrAlreadyReviewed is returned when approving a non-pending application.
	ErrAlreadyReviewed = errors.New("mentors: application already reviewed")
)

// Application is a mentor onboarding submission.
type Application struct {
	ID           string            `json:"id"`
	Name         string            `json:"name" validate:"required"`
	Email        string            `json:"email" validate:"required,email"`
	Phone        string            `json:"phone" validate:"required"`
	Title        string            `json:"title" validate:"required"`
	Company      string            `json:"company" validate:"required"`
	Expertise    []string          `json:"expertise" validate:"min=1,dive,required"`
	Bio          string            `json:"bio" validate:"min=50"`
	Experience   string            `json:"experience"`
	Education    string            `json:"education"`
	LinkedIn     string            `json:"linkedIn"`
	HourlyRate   int64             `json:"hourlyRate" validate:"gte=0"`
	Availability []string          `json:"availability" validate:"min=1"`
	Location     string            `json:"location"`
	ImageRef     string            `json:"imageRef"`
	Status       ApplicationStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// ValidationError carries the message the form should display.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var validate = validator.New()

// the form reports one problem at a time, in this order
var messagePriority = []struct {
	field   string
	message string
}{
	{"Name", MsgRequiredFields},
	{"Email", MsgRequiredFields},
	{"Phone", MsgRequiredFields},
	{"Title", MsgRequiredFields},
	{"Company", MsgRequiredFields},
	{"Expertise", MsgExpertise},
	{"Availability", MsgAvailability},
	{"Bio", MsgBio},
	{"HourlyRate", MsgRequiredFields},
}

// Normalize trims text fields and applies defaults before validation.
func (a *Application) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.TrimSpace(a.Email)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Title = strings.TrimSpace(a.Title)
	a.Company = strings.TrimSpace(a.Company)
	a.Bio = strings.TrimSpace(a.Bio)
	if a.HourlyRate == 0 {
		a.HourlyRate = DefaultHourlyRate
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
}

// Validate returns a *ValidationError with the first form message that
// applies, or nil.
func (a Application) Validate() error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	failed := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		failed[fe.StructField()] = fe.Tag()
	}
	for _, p := range messagePriority {
		tag, ok := failed[p.field]
		if !ok {
			continue
		}
		if p.field == "Email" && tag == "email" {
			return &ValidationError{Message: MsgInvalidEmail}
		}
		return &ValidationError{Message: p.message}
	}
	return &ValidationError{Message: MsgRequiredFields}
}

// ToMentor projects an approved application into a directory entry.
func (a Application) ToMentor() Mentor {
	return Mentor{
		Name:       a.Name,
		Title:      a.Title,
		Company:    a.Company,
		Expertise:  append([]string(nil), a.Expertise...),
		Bio:        a.Bio,
		ImageRef:   a.ImageRef,
		HourlyRate: a.HourlyRate,
	}
}
