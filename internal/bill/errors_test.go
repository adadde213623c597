package bill

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyFailure(t *testing.T) {
	cases := []struct {
		err  error
		want FailureKind
	}{
		{nil, FailureGeneric},
		{ErrNotFound, FailureNotFound},
		{ErrServerError, FailureServer},
		{fmt.Errorf("list bills: %w", ErrNotFound), FailureNotFound},
		{fmt.Errorf("create bill: %w", ErrServerError), FailureServer},
		{errors.New("backend said 404 sorry"), FailureNotFound},
		{errors.New("backend said 500 oops"), FailureServer},
		{errors.New("connection refused"), FailureGeneric},
	}
	for i, tc := range cases {
		if got := ClassifyFailure(tc.err); got != tc.want {
			t.Fatalf("case %d: got %v, want %v", i, got, tc.want)
		}
	}
}

func TestFailureMessageUnwrapsSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("list bills: %w", ErrNotFound), "Erreur 404"},
		{fmt.Errorf("create bill: %w", ErrServerError), "Erreur 500"},
		{errors.New("quota exceeded"), "quota exceeded"}, // generic shown verbatim
	}
	for i, tc := range cases {
		if got := FailureMessage(tc.err); got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}
