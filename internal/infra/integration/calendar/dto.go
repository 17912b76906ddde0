package calendar

type BookingLinkInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Topic     string `json:"topic,omitempty"`
	Reference string `json:"reference"`
}

type bookingLinkResponse struct {
	URL string `json:"url"`
}
