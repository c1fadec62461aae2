package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"carematch/internal/app/repository"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in   error
		want error
	}{
		{repository.ErrNotFound, ErrNotFound},
		{repository.ErrStale, ErrConflict},
		{fmt.Errorf("%w: unique", repository.ErrDuplicate), ErrConflict},
		{repository.ErrSerialization, ErrConflict},
		{context.DeadlineExceeded, ErrStoreUnavailable},
		{errors.New("connection refused"), ErrStoreUnavailable},
		{fmt.Errorf("%w: nope", ErrForbidden), ErrForbidden},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, classify(tt.in), tt.want, tt.in.Error())
	}
	assert.NoError(t, classify(nil))
	assert.Equal(t, "conflict", outcome(classify(repository.ErrStale)))
	assert.Equal(t, "ok", outcome(nil))
}
