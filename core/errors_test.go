package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestValidationError(t *testing.T) {
	errTaken := errors.New("already taken")

	tests := []struct {
		name       string
		err        error
		wantMsg    string
		wantFields map[string]string
	}{
		{name: "empty", err: NewValidationError(nil), wantMsg: ""},
		{name: "cause only", err: NewValidationError(errTaken), wantMsg: "already taken"},
		{
			name:       "fields only",
			err:        NewValidationError(nil, FieldError{Field: "subdomain", Error: "is reserved"}),
			wantMsg:    "subdomain: is reserved",
			wantFields: map[string]string{"subdomain": "is reserved"},
		},
		{
			name: "cause and fields",
			err: NewValidationError(errTaken,
				FieldError{Field: "subdomain", Error: "already taken"},
				FieldError{Field: "name", Error: "is required"},
			),
			wantMsg:    "already taken",
			wantFields: map[string]string{"subdomain": "already taken", "name": "is required"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vErr, ok := tt.err.(*ValidationError)
			if !ok {
				t.Fatalf("NewValidationError() = %T, want *ValidationError", tt.err)
			}
			if got := vErr.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := vErr.FieldErrors(); !reflect.DeepEqual(got, tt.wantFields) {
				t.Errorf("FieldErrors() = %v, want %v", got, tt.wantFields)
			}
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	errTaken := errors.New("already taken")
	err := NewValidationError(errTaken, FieldError{Field: "subdomain", Error: "already taken"})
	if !errors.Is(err, errTaken) {
		t.Errorf("errors.Is(%v, errTaken) = false, want true", err)
	}
}
