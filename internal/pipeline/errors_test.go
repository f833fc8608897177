package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"validation", &ValidationError{Field: "job_posting", Message: "required"}, KindValidation},
		{"wrapped validation", fmt.Errorf("analyze: %w", &ValidationError{Message: "bad"}), KindValidation},
		{"fetch", &FetchError{URL: "https://example.com", Cause: cause}, KindFetch},
		{"internal", &InternalError{Stage: "salary", Cause: cause}, KindInternal},
		{"foreign error", cause, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("timeout")

	assert.Equal(t, "validation error: job_posting.text - must be at least 50 characters",
		(&ValidationError{Field: "job_posting.text", Message: "must be at least 50 characters"}).Error())
	assert.Equal(t, "validation error: bad input", (&ValidationError{Message: "bad input"}).Error())
	assert.Equal(t, "fetch error for https://example.com: timeout", (&FetchError{URL: "https://example.com", Cause: cause}).Error())
	assert.Equal(t, "internal error in stage title: timeout", (&InternalError{Stage: "title", Cause: cause}).Error())

	assert.ErrorIs(t, &FetchError{Cause: cause}, cause)
	assert.ErrorIs(t, &InternalError{Cause: cause}, cause)
}
