package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileInput struct {
	Gender string `json:"gender" validate:"required,is-gender"`
	Goal   string `json:"relationship_goal" validate:"omitempty,is-relationship-goal"`
	Bio    string `json:"bio" validate:"max=10"`
}

type paymentInput struct {
	Type   string `json:"transaction_type" validate:"required,is-transaction-type"`
	Status string `json:"status" validate:"omitempty,is-post-status"`
}

func TestValidate_CustomRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(profileInput{Gender: "F", Goal: "marriage"}))
	assert.NoError(t, v.Validate(paymentInput{Type: "one_time_download", Status: "draft"}))

	err := v.Validate(profileInput{Gender: "X", Goal: "casual", Bio: "much too long bio"})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Must be one of: M, F", vErr.Errors["gender"])
	assert.Contains(t, vErr.Errors, "relationship_goal")
	assert.Contains(t, vErr.Errors, "bio")

	err = v.Validate(paymentInput{Type: "refund"})
	require.Error(t, err)
	assert.Contains(t, err.(*ValidationError).Errors, "transaction_type")
}

func TestValidate_RequiredUsesJSONName(t *testing.T) {
	v := New()

	err := v.Validate(paymentInput{})
	require.Error(t, err)
	assert.Equal(t, "This field is required", err.(*ValidationError).Errors["transaction_type"])
}

type boundsInput struct {
	Name  string   `json:"name" validate:"min=2"`
	Tags  []string `json:"tags" validate:"max=1"`
	Score int      `json:"score" validate:"gte=1"`
	Ref   string   `json:"ref" validate:"omitempty,uuid"`
}

func TestValidate_Messages(t *testing.T) {
	err := New().Validate(boundsInput{Name: "a", Tags: []string{"x", "y"}, Score: 0, Ref: "42"})
	require.Error(t, err)

	vErr := err.(*ValidationError)
	assert.Equal(t, "Must be at least 2 characters long", vErr.Errors["name"])
	assert.Equal(t, "Must contain at most 1 items", vErr.Errors["tags"])
	assert.Equal(t, "Must be at least 1", vErr.Errors["score"])
	assert.Equal(t, "Must be a valid identifier", vErr.Errors["ref"])

	// поля в сообщении отсортированы
	assert.Equal(t, "validation failed: name: Must be at least 2 characters long; "+
		"ref: Must be a valid identifier; score: Must be at least 1; tags: Must contain at most 1 items", err.Error())
}
