package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The backend serializes the enquirer as "userName" in responses, even
// though creation requests carry it as "name".
func TestEnquiry_DecodesBackendFieldNames(t *testing.T) {
	var enquiry Enquiry
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 3,
		"propertyId": 12,
		"propertyTitle": "Canal-side Apartment",
		"userName": "Bob",
		"email": "bob@example.com",
		"status": "PENDING"
	}`), &enquiry))

	assert.Equal(t, "Bob", enquiry.UserName)
	assert.Equal(t, "Canal-side Apartment", enquiry.PropertyTitle)
	assert.Equal(t, EnquiryPending, enquiry.Status)
}

func TestEnquiryStatus_ForwardTransitions(t *testing.T) {
	assert.True(t, EnquiryPending.CanTransitionTo(EnquiryContacted))
	assert.True(t, EnquiryPending.CanTransitionTo(EnquiryClosed))
	assert.True(t, EnquiryContacted.CanTransitionTo(EnquiryClosed))
}

func TestEnquiryStatus_NoReverseTransitions(t *testing.T) {
	assert.False(t, EnquiryContacted.CanTransitionTo(EnquiryPending))
	assert.False(t, EnquiryClosed.CanTransitionTo(EnquiryPending))
	assert.False(t, EnquiryClosed.CanTransitionTo(EnquiryContacted))
}

func TestEnquiryStatus_ClosedIsTerminal(t *testing.T) {
	for _, next := range []EnquiryStatus{EnquiryPending, EnquiryContacted, EnquiryClosed} {
		assert.False(t, EnquiryClosed.CanTransitionTo(next))
	}
}

func TestEnquiryStatus_NoSelfTransition(t *testing.T) {
	assert.False(t, EnquiryPending.CanTransitionTo(EnquiryPending))
	assert.False(t, EnquiryContacted.CanTransitionTo(EnquiryContacted))
}
