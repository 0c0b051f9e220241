package kstatus

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, OK},
		{"invalid argument", ErrInvalidArgument, CodeInvalid},
		{"wrapped not found", fmt.Errorf("%w: configuration %q", ErrNotFound, "A"), CodeNotFound},
		{"already exists", ErrAlreadyExists, CodeExists},
		{"mismatch", ErrConfigurationMismatch, CodePermission},
		{"unresolved", ErrUnresolvedSources, CodeNoLink},
		{"cycle", fmt.Errorf("build C: %w", ErrCircularDependency), CodeLoop},
		{"oom", ErrOutOfMemory, CodeOutOfMemory},
		{"no space", ErrInsufficientSpace, CodeNoSpace},
		{"state", ErrInvalidState, CodeBusy},
		{"no data", ErrNoData, CodeNoData},
		{"foreign", errors.New("boom"), CodeFault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestCodePrefersSpecificSentinel(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrAlreadyExists, ErrConfigurationMismatch)
	assert.Equal(t, CodePermission, Code(err))
	assert.True(t, Failed(Code(err)))
	assert.False(t, Failed(OK))
}
