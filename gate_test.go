package spayd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRequired(t *testing.T) {
	tests := []struct {
		name     string
		pairs    Pairs
		required []string
		missing  []string
	}{
		{"AllPresent", Pairs{"ID": "1", "DD": "20240101", "AM": "1"}, []string{"ID", "DD", "AM"}, nil},
		{"EmptyValueStillPresent", Pairs{"ACC": ""}, []string{"ACC"}, nil},
		{"NothingRequired", Pairs{}, nil, nil},
		{"OneMissing", Pairs{"ID": "1", "AM": "1"}, []string{"ID", "DD", "AM"}, []string{"DD"}},
		{"AllMissingInDeclaredOrder", Pairs{"MSG": "x"}, []string{"ID", "DD", "AM"}, []string{"ID", "DD", "AM"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRequired(tt.pairs, tt.required)
			if tt.missing == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingRequiredKeys)

			var mk *MissingKeysError
			require.True(t, errors.As(err, &mk))
			assert.Equal(t, tt.missing, mk.Keys)
		})
	}
}

func TestMissingKeysError_Error(t *testing.T) {
	err := &MissingKeysError{Keys: []string{"ID", "AM"}}
	assert.Equal(t, "required keys are missing: ID, AM", err.Error())

	err.Descriptor = InvoiceTag
	assert.Equal(t, "required keys are missing in SID: ID, AM", err.Error())
}
