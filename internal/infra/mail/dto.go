package mail

type StatusEmailData struct {
	Name       string
	Specialty  string
	OldStatus  string
	NewStatus  string
	Note       string
	BookingURL string
}
