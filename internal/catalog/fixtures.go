package catalog

import "context"

// Fixtures returns the launch catalog.
func Fixtures() []Service {
	return []Service{
		{
			ID:          "mock-interview",
			Name:        "1 on 1 Personal Mock Interview",
			Description: "Practice with industry experts and get real-time feedback to improve your interview skills.",
			Price:       1500,
			Icon:        "🎯",
			Benefits: []string{
				"Practice with experienced interviewers",
				"Get honest, constructive feedback",
				"Learn industry-specific techniques",
				"Identify improvement areas",
			},
		},
		{
			ID:          "linkedin-review",
			Name:        "LinkedIn Profile Review",
			Description: "Get your LinkedIn profile optimized by professionals to attract better opportunities.",
			Price:       1200,
			Icon:        "👔",
			Benefits: []string{
				"Stand out to recruiters",
				"Learn LinkedIn algorithm optimization",
				"Improve your profile's searchability",
				"Get a comprehensive report",
			},
		},
		{
			ID:          "cv-resume-review",
			Name:        "CV Resume Review",
			Description: "Professional review of your CV/resume to stand out among other candidates.",
			Price:       1200,
			Icon:        "📄",
			Benefits: []string{
				"Get professional assessment",
				"Highlight achievements and skills",
				"Make your resume ATS-friendly",
				"Increase interview callback rate",
			},
		},
		{
			ID:          "group-discussion",
			Name:        "Group Discussion",
			Description: "Learn the art of group discussions with like-minded peers and expert guidance.",
			Price:       800,
			Icon:        "👥",
			Benefits: []string{
				"Practice in a realistic environment",
				"Learn effective communication",
				"Develop leadership skills",
				"Network with peers",
			},
		},
		{
			ID:          "career-guidance",
			Name:        "1 on 1 Career Guidance",
			Description: "Personalized career planning and guidance from industry professionals.",
			Price:       1800,
			Icon:        "🧭",
			Benefits: []string{
				"Get clarity on career path",
				"Develop a personalized roadmap",
				"Learn about industry trends",
				"Identify skill gaps",
			},
		},
		{
			ID:          "events-webinars",
			Name:        "Events & Webinars",
			Description: "Stay updated with the latest industry trends through our events and webinars.",
			Price:       500,
			Icon:        "🎤",
			Benefits: []string{
				"Learn from industry leaders",
				"Stay updated with trends",
				"Network with professionals",
				"Access recordings",
			},
		},
	}
}

// StaticSource serves a fixed list. Used by tests and local runs.
type StaticSource struct {
	services []Service
	err      error
}

// NewStaticSource returns a source over services.
func NewStaticSource(services []Service) *StaticSource {
	return &StaticSource{services: services}
}

// NewFailingSource returns a source whose every call fails with err.
func NewFailingSource(err error) *StaticSource {
	if err == nil {
		err = ErrUnavailable
	}
	return &StaticSource{err: err}
}

// ListServices implements Source.
func (s *StaticSource) ListServices(ctx context.Context) ([]Service, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Service, len(s.services))
	copy(out, s.services)
	return out, nil
}
