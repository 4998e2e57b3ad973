package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", Validationf("amount must be positive, got %d", -1), ErrValidation},
		{"not found", NotFoundf("expense not found: %s", "e1"), ErrNotFound},
		{"conflict", Conflictf("participant %s has an outstanding balance", "p1"), ErrConflict},
		{"invariant", Invariantf("balances sum to %d", 3), ErrInvariant},
		{"wrapped", fmt.Errorf("record expense: %w", NotFoundf("trip not found")), ErrNotFound},
		{"plain", errors.New("disk full"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			if tt.kind != nil {
				assert.ErrorIs(t, tt.err, tt.kind)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Validationf("payer %q is not a participant", "bob")
	assert.Equal(t, `payer "bob" is not a participant`, err.Error())
}
