package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "class not found")
		if err.Error() != "[NOT_FOUND] class not found" {
			t.Errorf("expected [NOT_FOUND] class not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("unexpected EOF")
		err := Wrap(original, CodeParseFailed, "parse unit")
		expected := "[PARSE_FAILED] parse unit: unexpected EOF"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("WrapNil", func(t *testing.T) {
		if Wrap(nil, CodeInternal, "nothing") != nil {
			t.Error("expected Wrap(nil) to return nil")
		}
	})

	t.Run("ContextIsSorted", func(t *testing.T) {
		err := Newf(CodeMalformedAST, "no visibility for %s", "radius").
			WithContext(CtxSymbol, "radius").
			WithContext(CtxKind, "FieldDecl")
		expected := "[MALFORMED_AST] no visibility for radius {kind=FieldDecl symbol=radius}"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("walk unit: %w", New(CodeMalformedAST, "bad access"))
		if !IsCode(err, CodeMalformedAST) {
			t.Error("expected IsCode to see through fmt wrapping")
		}
		if CodeOf(err) != CodeMalformedAST {
			t.Errorf("expected CodeOf MALFORMED_AST, got %q", CodeOf(err))
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(New(CodeIOFailed, "write"), CtxPath, "/tmp/out")
		var de *DomainError
		if !errors.As(err, &de) || de.Context[CtxPath] != "/tmp/out" {
			t.Fatalf("expected path context, got %v", err)
		}

		plain := AddContext(errors.New("boom"), CtxUnit, "a.cpp")
		if CodeOf(plain) != CodeInternal {
			t.Errorf("expected plain errors to be wrapped as INTERNAL_ERROR, got %q", CodeOf(plain))
		}
	})
}
