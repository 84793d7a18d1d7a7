package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel *Error
	}{
		{"retrieval", Retrieval("download failed"), ErrRetrieval},
		{"retrievalf", Retrievalf("download failed after %d attempts", 2), ErrRetrieval},
		{"separation", Separation("demucs unavailable"), ErrSeparation},
		{"auth", Auth("invalid access key"), ErrAuth},
		{"rate limit", RateLimit("too many requests"), ErrRateLimit},
		{"no match", NoMatch("segment not recognised"), ErrNoMatch},
		{"config", Config("missing url"), ErrConfig},
		{"internal", Internal("unexpected state"), ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !Is(tt.err, tt.sentinel) {
				t.Errorf("Expected %v to match sentinel %v", tt.err, tt.sentinel)
			}
		})
	}
}

func TestSentinelsDoNotCrossMatch(t *testing.T) {
	if Is(Auth("bad key"), ErrRateLimit) {
		t.Error("Auth error should not match ErrRateLimit")
	}
	if Is(NoMatch("nothing"), ErrAuth) {
		t.Error("NoMatch error should not match ErrAuth")
	}
	if Is(errors.New("plain"), ErrRetrieval) {
		t.Error("Plain error should not match a sentinel")
	}
}

func TestWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Retrieval("download failed").WithCause(cause)

	if !Is(err, ErrRetrieval) {
		t.Error("Wrapped error should still match its sentinel")
	}
	if !errors.Is(err, cause) {
		t.Error("Wrapped error should match its cause")
	}
	if Unwrap(err) != cause {
		t.Errorf("Expected Unwrap to return the cause, got %v", Unwrap(err))
	}

	want := "download failed: connection refused"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := Auth("invalid signature")
	if err.Error() != "invalid signature" {
		t.Errorf("Expected bare message, got %q", err.Error())
	}
}

func TestMatchThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("segment 3: %w", RateLimit("throttled"))
	if !Is(err, ErrRateLimit) {
		t.Error("Expected sentinel match through fmt.Errorf wrapping")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"domain error", Separation("no strategy worked"), CodeSeparation},
		{"wrapped domain error", fmt.Errorf("stage: %w", Auth("denied")), CodeAuth},
		{"plain error", errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeFatal(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{CodeRetrieval, true},
		{CodeSeparation, true},
		{CodeAuth, true},
		{CodeNoMatch, false},
		{CodeRateLimit, false},
		{CodeConfig, true},
		{CodeInternal, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Fatal(); got != tt.want {
				t.Errorf("Fatal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAs(t *testing.T) {
	var domainErr *Error
	err := fmt.Errorf("outer: %w", NoMatch("segment 2"))

	if !As(err, &domainErr) {
		t.Fatal("Expected As to find the domain error")
	}
	if domainErr.Code != CodeNoMatch {
		t.Errorf("Expected code %v, got %v", CodeNoMatch, domainErr.Code)
	}
}
