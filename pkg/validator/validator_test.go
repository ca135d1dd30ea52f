package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Role       string `json:"role" validate:"required,oneof=doctor custom"`
	CustomRole string `json:"custom_role" validate:"required_if=Role custom,max=5"`
}

type form struct {
	Notes string `json:"notes" validate:"max=3"`
	Rows  []row  `json:"rows" validate:"dive"`
}

func TestStruct(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(form{Rows: []row{{Role: "doctor"}}}))

	err := v.Struct(form{Notes: "long", Rows: []row{{Role: "custom"}, {Role: "nurse"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notes must be at most 3 characters")
	assert.Contains(t, err.Error(), "rows[0].custom_role is required")
	assert.Contains(t, err.Error(), "rows[1].role must be one of [doctor custom]")
}
