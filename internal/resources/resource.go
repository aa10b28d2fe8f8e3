// Package resources is the learning library: videos and documents grouped
// by category.
package resources

import (
	"errors"
	"net/http"
	"strings"
)

// Type distinguishes the resource media.
type Type string

const (
	TypeVideo    Type = "video"
	TypeDocument Type = "document"
)

// Resource is a library entry.
type Resource struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        Type   `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Categories lists the library's filter categories.
var Categories = []string{
	"Career Guidance",
	"CA Preparation",
	"Finance",
	"Interview Tips",
	"Resume Building",
	"LinkedIn Optimization",
	"Startup Guidance",
	"Industry Insights",
}

// Validate checks a resource before it is stored.
func (r Resource) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("resources: title is required")
	}
	if r.Type != TypeVideo && r.Type != TypeDocument {
		return errors.New("resources: type must be video or document")
	}
	if strings.TrimSpace(r.URL) == "" {
		return errors.New("resources: url is required")
	}
	return nil
}

// WithID returns r carrying id.
func WithID(r Resource, id string) Resource {
	r.ID = id
	return r
}

// Filter keeps resources matching category, type and a case-insensitive
// search over title and description. Empty arguments match everything.
func Filter(items []Resource, category string, typ Type, search string) []Resource {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]Resource, 0, len(items))
	for _, r := range items {
		if category != "" && !strings.EqualFold(r.Category, category) {
			continue
		}
		if typ != "" && r.Type != typ {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Title), search) &&
			!strings.Contains(strings.ToLower(r.Description), search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// QueryFilter applies Filter from the category, type and q query params.
func QueryFilter(req *http.Request, items []Resource) []Resource {
	q := req.URL.Query()
	return Filter(items, q.Get("category"), Type(q.Get("type")), q.Get("q"))
}

// Fixtures returns the launch library.
func Fixtures() []Resource {
	return []Resource{
		{ID: "1", Title: "How to Crack CA Final Exams", Type: TypeVideo, URL: "https://www.youtube.com/watch?v=example1",
			Description: "Expert tips and strategies for CA Final preparation from top rankers.", Category: "CA Preparation"},
		{ID: "2", Title: "Resume Template for Finance Professionals", Type: TypeDocument, URL: "/documents/finance-resume-template.pdf",
			Description: "A professionally designed resume template tailored for finance industry roles.", Category: "Resume Building"},
		{ID: "3", Title: "Mastering LinkedIn for Career Growth", Type: TypeVideo, URL: "https://www.youtube.com/watch?v=example2",
			Description: "Learn how to optimize your LinkedIn profile to attract recruiters and opportunities.", Category: "LinkedIn Optimization"},
		{ID: "4", Title: "Financial Compliance Guide for Startups", Type: TypeDocument, URL: "/documents/startup-finance-guide.pdf",
			Description: "Essential financial compliance guidelines for early-stage startups in India.", Category: "Startup Guidance"},
		{ID: "5", Title: "Mock Interview Session: Investment Banking", Type: TypeVideo, URL: "https://www.youtube.com/watch?v=example3",
			Description: "Watch a real mock interview session for an investment banking role with expert feedback.", Category: "Interview Tips"},
		{ID: "6", Title: "Career Paths in Finance: Comprehensive Guide", Type: TypeDocument, URL: "/documents/finance-career-paths.pdf",
			Description: "Explore various career paths in the finance industry with required qualifications and growth prospects.", Category: "Career Guidance"},
		{ID: "7", Title: "AI in Finance: Future Trends", Type: TypeVideo, URL: "https://www.youtube.com/watch?v=example4",
			Description: "Industry experts discuss how AI is transforming the finance sector and future job prospects.", Category: "Industry Insights"},
		{ID: "8", Title: "LinkedIn Profile Checklist", Type: TypeDocument, URL: "/documents/linkedin-checklist.pdf",
			Description: "A comprehensive checklist to ensure your LinkedIn profile stands out to recruiters.", Category: "LinkedIn Optimization"},
	}
}
