package moneypilot

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorCategory
	}{
		{429, ErrorTransient},
		{500, ErrorTransient},
		{503, ErrorTransient},
		{400, ErrorUserInput},
		{404, ErrorUserInput},
		{422, ErrorUserInput},
		{401, ErrorPermanent},
		{403, ErrorPermanent},
		{418, ErrorPermanent},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeStatus(tt.code))
		})
	}
}

func TestCategoryHelpers(t *testing.T) {
	t.Run("sees through wrapping", func(t *testing.T) {
		err := fmt.Errorf("calling provider: %w", NewTransientErrorWithRetry("rate limited", 429, 2*time.Second, nil))

		assert.True(t, IsTransient(err))
		assert.False(t, IsPermanent(err))
		assert.Equal(t, 2*time.Second, RetryAfterOf(err))
	})

	t.Run("plain errors have no category", func(t *testing.T) {
		err := errors.New("boom")

		assert.Equal(t, ErrorCategory(""), CategoryOf(err))
		assert.False(t, IsUserInput(err))
		assert.Zero(t, RetryAfterOf(err))
	})

	t.Run("message includes cause", func(t *testing.T) {
		err := NewPermanentError("auth failed", 401, errors.New("bad key"))
		assert.Equal(t, "auth failed: bad key", err.Error())
		assert.Equal(t, 401, err.StatusCode())
	})
}

func TestValidateSamplingErrors(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	assert.NoError(t, ValidateSampling(250, f(0.7), f(1)))
	assert.NoError(t, ValidateSampling(0, nil, nil))

	err := ValidateSampling(-1, nil, nil)
	assert.True(t, IsUserInput(err))
	assert.Contains(t, err.Error(), "max_tokens")

	err = ValidateSampling(100, f(2.5), nil)
	assert.True(t, IsUserInput(err))
	assert.Contains(t, err.Error(), "temperature")

	err = ValidateSampling(100, nil, f(-0.1))
	assert.True(t, IsUserInput(err))
	assert.Contains(t, err.Error(), "top_p")
}
