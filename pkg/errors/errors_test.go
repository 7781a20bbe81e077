package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor_KnownAndUnknownCodes(t *testing.T) {
	meta := MetadataFor(CodeNotFound)
	if meta.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404 for not found, got %d", meta.HTTPStatus)
	}
	if meta.Retryable {
		t.Fatalf("not found must not be retryable")
	}

	fallback := MetadataFor(Code("NO_SUCH_CODE"))
	if fallback.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown codes must map to 500, got %d", fallback.HTTPStatus)
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "provider call failed")

	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable via errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if err.Error() != "DEPENDENCY_ERROR: provider call failed" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestAs_FindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeStateConflict, "draft already completed")
	wrapped := fmt.Errorf("finalize: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatalf("expected typed error in chain")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %s", typed.Code())
	}

	if As(stdErrors.New("plain")) != nil {
		t.Fatalf("plain errors must not match")
	}
}

func TestDump_CollectsChain(t *testing.T) {
	err := Wrap(CodeInternal, stdErrors.New("disk full"), "write page")
	dump := Dump(err)

	if dump.Code != CodeInternal {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(dump.Chain))
	}
}
