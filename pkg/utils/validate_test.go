package utils

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	FirstName string `validate:"required"`
	Quantity  int    `validate:"gt=0"`
	Status    string `validate:"oneof=Pending Processing"`
}

func TestFormatValidationError(t *testing.T) {
	err := validator.New().Struct(sampleRequest{Status: "Lost"})
	require.Error(t, err)

	out := FormatValidationError(err)
	require.Equal(t, "first_name is required", out["first_name"])
	require.Equal(t, "quantity must be greater than 0", out["quantity"])
	require.Contains(t, out["status"], "must be one of")
}

func TestFormatValidationError_NotValidationError(t *testing.T) {
	out := FormatValidationError(errors.New("boom"))
	require.Equal(t, "boom", out["body"])
}
