package entity

import (
	"errors"
	"time"
)

// Seeded lead_status identifiers. The set is a label set, not a state
// machine: any status may move to any other.
const (
	StatusNew       = 1
	StatusContacted = 2
	StatusFollowUp  = 3
	StatusConverted = 4
	StatusLost      = 5
)

const (
	StatusNameNew       = "New"
	StatusNameContacted = "Contacted"
	StatusNameFollowUp  = "Follow-up"
	StatusNameConverted = "Converted"
	StatusNameLost      = "Closed/Lost"
)

type LeadStatus struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// IsPending reports whether the status name counts as "in progress" for
// analytics.
func IsPending(statusName string) bool {
	return statusName == StatusNameContacted || statusName == StatusNameFollowUp
}

// StatusChangeEvent is an immutable audit row. OldStatusID is nil only for
// the event written when the lead is created.
type StatusChangeEvent struct {
	ID          int64     `json:"id"`
	LeadID      string    `json:"lead_id"`
	OldStatusID *int      `json:"old_status_id"`
	OldStatus   *string   `json:"old_status,omitempty"`
	NewStatusID int       `json:"new_status_id"`
	NewStatus   string    `json:"new_status,omitempty"`
	Note        *string   `json:"note,omitempty"`
	Actor       string    `json:"actor"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatusChange is the write model for one status mutation.
type StatusChange struct {
	LeadID           string
	NewStatusID      int
	ExpectedStatusID *int
	AssignedTo       *string
	Note             *string
	Actor            string
	At               time.Time
}

// StatusNotification is the payload handed to the email/calendar side
// effects after a status change commits.
type StatusNotification struct {
	LeadID      string    `json:"lead_id"`
	PatientName string    `json:"patient_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Country     string    `json:"country"`
	Specialty   string    `json:"specialty"`
	Source      Source    `json:"source"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	Note        string    `json:"note,omitempty"`
	Actor       string    `json:"actor"`
	ChangedAt   time.Time `json:"changed_at"`
}

// WantsBookingLink reports whether the new status invites the patient to
// schedule a call.
func (n StatusNotification) WantsBookingLink() bool {
	return n.NewStatus == StatusNameContacted || n.NewStatus == StatusNameFollowUp
}

// ChannelError is a failure of one external side effect (mail, calendar,
// queue).
type ChannelError struct {
	Channel string
	Err     error
}

func (e *ChannelError) Error() string {
	return e.Channel + ": " + e.Err.Error()
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// ChannelErrors flattens err (possibly built with errors.Join) into its
// channel failures. Errors without a channel are reported under fallback.
func ChannelErrors(err error, fallback string) []*ChannelError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*ChannelError
		for _, e := range joined.Unwrap() {
			out = append(out, ChannelErrors(e, fallback)...)
		}
		return out
	}
	var ce *ChannelError
	if errors.As(err, &ce) {
		return []*ChannelError{ce}
	}
	return []*ChannelError{{Channel: fallback, Err: err}}
}
