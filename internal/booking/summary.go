package booking

// NotAvailable stands in for amounts that cannot be computed yet.
const NotAvailable = "-"

// Summary is the live order summary shown alongside the wizard.
type Summary struct {
	ServiceName   string `json:"serviceName,omitempty"`
	MentorName    string `json:"mentorName,omitempty"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	BasePrice     string `json:"basePrice"`
	Tax           string `json:"tax"`
	Total         string `json:"total"`
	TotalPaise    *int64 `json:"totalPaise,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

// Summarize projects a possibly incomplete draft.
func Summarize(d Draft) Summary {
	s := Summary{
		Date:          d.ScheduledDate,
		Time:          d.ScheduledTime,
		BasePrice:     NotAvailable,
		Tax:           NotAvailable,
		Total:         NotAvailable,
		PaymentMethod: string(d.PaymentMethod),
	}
	if d.Mentor != nil {
		s.MentorName = d.Mentor.Name
	}
	if d.Service != nil {
		s.ServiceName = d.Service.Name
		total := TotalPaise(d.Service.Price)
		s.BasePrice = FormatINR(d.Service.Price * paisePerRupee)
		s.Tax = FormatINR(TaxPaise(d.Service.Price))
		s.Total = FormatINR(total)
		s.TotalPaise = &total
	}
	return s
}

// Receipt is the confirmation page content.
type Receipt struct {
	ConfirmationID string    `json:"confirmationId"`
	Reference      string    `json:"reference"`
	ServiceName    string    `json:"serviceName"`
	MentorName     string    `json:"mentorName"`
	Amount         string    `json:"amount"`
	Date           string    `json:"date,omitempty"`
	Time           string    `json:"time,omitempty"`
	PaymentURL     string    `json:"paymentUrl,omitempty"`
	Links          []NavLink `json:"links"`
}

// NavLink is a navigation target offered from the confirmed step.
type NavLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// ConfirmedLinks are the exits from a confirmed booking.
var ConfirmedLinks = []NavLink{
	{Label: "Go to Dashboard", Href: "/dashboard"},
	{Label: "Return to Home", Href: "/"},
}

// NewReceipt projects a confirmation.
func NewReceipt(c Confirmation) Receipt {
	links := make([]NavLink, len(ConfirmedLinks))
	copy(links, ConfirmedLinks)
	return Receipt{
		ConfirmationID: c.ID,
		Reference:      c.Reference,
		ServiceName:    c.Service.Name,
		MentorName:     c.Mentor.Name,
		Amount:         FormatINR(c.AmountPaid),
		Date:           c.ScheduledDate,
		Time:           c.ScheduledTime,
		PaymentURL:     c.PaymentURL,
		Links:          links,
	}
}
