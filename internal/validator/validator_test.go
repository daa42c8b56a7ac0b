package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderInput struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,is-currency"`
	Purpose  string `json:"purpose" validate:"required,is-order-purpose"`
	Action   string `json:"action_kind" validate:"omitempty,is-action-kind"`
}

func TestValidate_CustomRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&orderInput{Amount: 9900, Currency: "INR", Purpose: "subscription", Action: "resume_analyze"}))

	err := v.Validate(&orderInput{Amount: 0, Currency: "inr", Purpose: "gift", Action: "Resume Analyze"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	assert.Contains(t, verr.Errors, "amount")
	assert.Equal(t, "Must be an ISO-4217 currency code, e.g. INR", verr.Errors["currency"])
	assert.Contains(t, verr.Errors, "purpose")
	assert.Contains(t, verr.Errors, "action_kind")
}
