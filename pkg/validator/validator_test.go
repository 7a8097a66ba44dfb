package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("9000000001"))
	assert.True(t, ValidPhone("+919000000001"))

	assert.False(t, ValidPhone(""))
	assert.False(t, ValidPhone("12345"))
	assert.False(t, ValidPhone("phone"))
	assert.False(t, ValidPhone("+12 34 56 78"))
}

func TestValidSlotTime(t *testing.T) {
	assert.True(t, ValidSlotTime("09:00"))
	assert.True(t, ValidSlotTime("16:30"))
	assert.True(t, ValidSlotTime("23:59"))

	assert.False(t, ValidSlotTime("9:00"))
	assert.False(t, ValidSlotTime("24:00"))
	assert.False(t, ValidSlotTime("09:60"))
	assert.False(t, ValidSlotTime("0900"))
}

func TestValidate_TaggedStruct(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	type req struct {
		Phone string `validate:"required,phone"`
		Time  string `validate:"omitempty,slottime"`
	}

	require.NoError(t, v.Validate(req{Phone: "9000000001", Time: "10:30"}))

	err = v.Validate(req{Phone: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phone")
}
