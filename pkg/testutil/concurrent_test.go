package testutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "paam/pkg/domain-errors"
	"paam/pkg/platform/sentinel"
)

func TestRunConcurrentClassifiesOutcomes(t *testing.T) {
	boom := errors.New("boom")
	out := RunConcurrent(8, func(i int) error {
		switch i % 4 {
		case 1:
			return fmt.Errorf("insert: %w", sentinel.ErrConflict)
		case 2:
			return dErrors.New(dErrors.CodeNotFound, "profile not found")
		case 3:
			return boom
		}
		return nil
	})

	assert.Equal(t, int32(8), out.Total())
	assert.Equal(t, int32(2), out.Successes)
	assert.Equal(t, int32(2), out.Conflicts)
	assert.Equal(t, int32(2), out.NotFounds)
	assert.Equal(t, int32(2), out.Errors)
	assert.Len(t, out.Failures, 2)
	assert.ErrorIs(t, out.Failures[0], boom)
}
