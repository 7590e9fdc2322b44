package security

import (
	"strings"
	"testing"
)

func TestNewVerificationTokenIsOpaqueAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		token, err := NewVerificationToken()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(token) < 40 {
			t.Fatalf("token too short: %q", token)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated")
		}
		seen[token] = true
	}
}

func TestNewTrackingNumberShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NewTrackingNumber()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != TrackingNumberLength {
			t.Fatalf("expected length %d, got %d", TrackingNumberLength, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(string(trackingCharset), r) {
				t.Fatalf("unexpected character %q in %q", r, code)
			}
		}
	}
}
