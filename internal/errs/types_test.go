package errs

import (
	"errors"
	"testing"
)

func TestDatabaseErrorUnwrap(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := NewDatabaseError("create", "failed to archive booking", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find the cause")
	}
	if err.Operation != "create" {
		t.Fatalf("unexpected operation: %s", err.Operation)
	}
	if err.Error() != "failed to archive booking: deadline exceeded" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestExternalServiceErrorAs(t *testing.T) {
	var wrapped error = NewExternalServiceError("redis", true, errors.New("connection refused"))

	var ext *ExternalServiceError
	if !errors.As(wrapped, &ext) {
		t.Fatalf("expected errors.As to match ExternalServiceError")
	}
	if !ext.Transient || ext.Service != "redis" {
		t.Fatalf("unexpected fields: %+v", ext)
	}
}

func TestValidationErrorDetails(t *testing.T) {
	err := NewValidationError("Invalid request data",
		FieldError{Field: "amount", Message: "Value must be greater than 0", Type: "gt"})

	if len(err.Details) != 1 || err.Details[0].Field != "amount" {
		t.Fatalf("unexpected details: %+v", err.Details)
	}
	if err.Error() != "Invalid request data" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
