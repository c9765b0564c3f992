package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("login: %w", ErrIncorrectCredentials)
	if got := KindOf(err); got != KindIncorrectCredentials {
		t.Fatalf("KindOf=%v want %v", got, KindIncorrectCredentials)
	}
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("KindOf plain error=%v want internal", got)
	}
}

func TestErrorsIsMatchesOnKind(t *testing.T) {
	err := New(KindInvalidToken, "refresh token mismatch")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatal("expected errors.Is to match on kind")
	}
	if errors.Is(err, ErrUserNotFound) {
		t.Fatal("expected different kinds not to match")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, "session store", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if Message(err) != "session store" {
		t.Fatalf("unexpected message %q", Message(err))
	}
}

func TestConflictClass(t *testing.T) {
	for _, k := range []Kind{KindUserAlreadyExists, KindWorkspaceAlreadyExists, KindTagAlreadyExists, KindProjectAlreadyExists} {
		if !k.IsConflict() {
			t.Fatalf("expected %v to be a conflict kind", k)
		}
	}
	if KindNotFound.IsConflict() {
		t.Fatal("not_found must not be a conflict kind")
	}
	if KindInvalidToken.String() != "invalid_token" {
		t.Fatalf("unexpected kind name %q", KindInvalidToken.String())
	}
}
