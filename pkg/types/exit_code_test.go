// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestExitCodeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "zero is valid", value: 0, wantValid: true},
		{name: "one is valid", value: 1, wantValid: true},
		{name: "255 is valid", value: 255, wantValid: true},
		{name: "negative is invalid", value: -1, wantValid: false},
		{name: "256 is invalid", value: 256, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if (err == nil) != tt.wantValid {
				t.Fatalf("ExitCode(%d).Validate() error = %v, wantValid %v", tt.value, err, tt.wantValid)
			}
			if !tt.wantValid && !errors.Is(err, ErrInvalidExitCode) {
				t.Errorf("error does not wrap ErrInvalidExitCode: %v", err)
			}
		})
	}
}

func TestExitCodeIsSuccess(t *testing.T) {
	t.Parallel()

	if !ExitSuccess.IsSuccess() {
		t.Error("ExitSuccess.IsSuccess() = false, want true")
	}
	if ExitFailure.IsSuccess() {
		t.Error("ExitFailure.IsSuccess() = true, want false")
	}
	if got := ExitFailure.String(); got != "1" {
		t.Errorf("ExitFailure.String() = %q, want %q", got, "1")
	}
}
