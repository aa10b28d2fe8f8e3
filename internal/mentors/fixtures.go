package mentors

import "context"

const demoSchedulingURL = "https://calendly.com/sureshjat20092002/demo"

// Fixtures returns the launch mentor roster.
func Fixtures() []Mentor {
	return []Mentor{
		{
			ID:                    "1",
			Name:                  "Rajiv Mehta",
			Title:                 "Senior Finance Manager",
			Company:               "Mahindra Group",
			Expertise:             []string{"Finance", "Career Guidance", "Corporate Strategy"},
			Bio:                   "15+ years of experience in corporate finance with expertise in financial planning and analysis.",
			ImageRef:              "/images/mentors/mentor1.jpg",
			HourlyRate:            1500,
			Rating:                4.9,
			ExternalSchedulingURL: demoSchedulingURL,
		},
		{
			ID:                    "2",
			Name:                  "Priya Sharma",
			Title:                 "Chartered Accountant",
			Company:               "KPMG",
			Expertise:             []string{"CA", "Accounting", "Startups"},
			Bio:                   "Certified CA with experience in auditing and financial consulting for startups and established businesses.",
			ImageRef:              "/images/mentors/mentor2.jpg",
			HourlyRate:            1200,
			Rating:                4.8,
			ExternalSchedulingURL: demoSchedulingURL,
		},
		{
			ID:                    "3",
			Name:                  "Akash Gupta",
			Title:                 "Marketing Director",
			Company:               "Aditya Birla Group",
			Expertise:             []string{"Marketing", "Career Guidance", "LinkedIn Optimization"},
			Bio:                   "Passionate about digital marketing and helping professionals build their personal brand.",
			ImageRef:              "/images/mentors/mentor3.jpg",
			HourlyRate:            1000,
			Rating:                4.7,
			ExternalSchedulingURL: demoSchedulingURL,
		},
		{
			ID:                    "4",
			Name:                  "Sneha Patel",
			Title:                 "Investment Banker",
			Company:               "Kotak Investment Banking",
			Expertise:             []string{"Finance", "Startups", "Corporate Strategy"},
			Bio:                   "Worked on numerous M&A deals and helped startups raise capital.",
			ImageRef:              "/images/mentors/mentor4.jpg",
			HourlyRate:            2000,
			Rating:                4.9,
			ExternalSchedulingURL: demoSchedulingURL,
		},
		{
			ID:         "5",
			Name:       "Vikram Singh",
			Title:      "Senior Analyst",
			Company:    "JP Morgan",
			Expertise:  []string{"Finance", "Interview Preparation", "Resume Building"},
			Bio:        "Helping finance professionals navigate their career path and prepare for interviews.",
			ImageRef:   "/images/mentors/mentor5.jpg",
			HourlyRate: 1800,
			Rating:     4.6,
		},
		{
			ID:         "6",
			Name:       "Neha Reddy",
			Title:      "HR Manager",
			Company:    "TCS",
			Expertise:  []string{"Career Guidance", "Interview Preparation", "Resume Building"},
			Bio:        "Passionate about helping candidates present their best selves to potential employers.",
			ImageRef:   "/images/mentors/mentor6.jpg",
			HourlyRate: 950,
			Rating:     4.8,
		},
		{
			ID:         "7",
			Name:       "Sanjay Kapoor",
			Title:      "Startup Advisor",
			Company:    "Independent Consultant",
			Expertise:  []string{"Startups", "Finance", "Corporate Strategy"},
			Bio:        "Helped over 50 startups with their financial strategy and fundraising efforts.",
			ImageRef:   "/images/mentors/mentor7.jpg",
			HourlyRate: 1600,
			Rating:     4.9,
		},
		{
			ID:         "8",
			Name:       "Ananya Desai",
			Title:      "LinkedIn Specialist",
			Company:    "LinkedIn Certified",
			Expertise:  []string{"LinkedIn Optimization", "Resume Building", "Career Guidance"},
			Bio:        "Specializes in helping professionals optimize their LinkedIn profile for maximum visibility.",
			ImageRef:   "/images/mentors/mentor8.jpg",
			HourlyRate: 900,
			Rating:     4.7,
		},
	}
}

// StaticDirectory serves a fixed roster.
type StaticDirectory struct {
	mentors []Mentor
	err     error
}

// NewStaticDirectory returns a directory over mentors.
func NewStaticDirectory(mentors []Mentor) *StaticDirectory {
	return &StaticDirectory{mentors: mentors}
}

// NewFailingDirectory returns a directory whose every call fails.
func NewFailingDirectory(err error) *StaticDirectory {
	if err == nil {
		err = ErrUnavailable
	}
	return &StaticDirectory{err: err}
}

func (d *StaticDirectory) ListMentors(ctx context.Context) ([]Mentor, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := make([]Mentor, len(d.mentors))
	copy(out, d.mentors)
	return out, nil
}

func (d *StaticDirectory) FindMentorByID(ctx context.Context, id string) (Mentor, bool, error) {
	if d.err != nil {
		return Mentor{}, false, d.err
	}
	m, ok := Find(d.mentors, id)
	return m, ok, nil
}
