package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeParseFailure, "target is not valid python")
		if err.Error() != "[PARSE_FAILURE] target is not valid python" {
			t.Errorf("expected [PARSE_FAILURE] target is not valid python, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		expected := "[INTERNAL_ERROR] internal failure: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeIndeterminateExports, "no __all__ and inference disabled")
		if !IsCode(err, CodeIndeterminateExports) {
			t.Error("expected IsCode to return true for CodeIndeterminateExports")
		}
		if IsCode(err, CodeParseFailure) {
			t.Error("expected IsCode to return false for CodeParseFailure")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeModuleNotFound, "module lookup failed")
		if !IsCode(err, CodeModuleNotFound) {
			t.Error("expected IsCode to return true for wrapped CodeModuleNotFound")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := New(CodeParseFailure, "bad syntax")
		err = AddContext(err, CtxPath, "pkg/mod.py")
		if !IsCode(err, CodeParseFailure) {
			t.Error("expected code to survive AddContext")
		}
	})
}
