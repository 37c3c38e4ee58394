package models

import "time"

// EnquiryStatus is the contact state of an enquiry against a listing.
type EnquiryStatus string

const (
	EnquiryPending   EnquiryStatus = "PENDING"
	EnquiryContacted EnquiryStatus = "CONTACTED"
	EnquiryClosed    EnquiryStatus = "CLOSED"
)

// Enquiry is the backend's enquiry representation as returned to the
// property owner, including the title of the listing it was raised against.
type Enquiry struct {
	ID            int64         `json:"id"`
	PropertyID    int64         `json:"propertyId"`
	PropertyTitle string        `json:"propertyTitle,omitempty"`
	UserName      string        `json:"userName"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone,omitempty"`
	Message       string        `json:"message"`
	Status        EnquiryStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// CanTransitionTo reports whether the status may move forward to next.
// Transitions only run forward: PENDING to CONTACTED or CLOSED, and
// CONTACTED to CLOSED. CLOSED is terminal.
func (s EnquiryStatus) CanTransitionTo(next EnquiryStatus) bool {
	switch s {
	case EnquiryPending:
		return next == EnquiryContacted || next == EnquiryClosed
	case EnquiryContacted:
		return next == EnquiryClosed
	default:
		return false
	}
}
