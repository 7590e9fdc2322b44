package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const verificationTokenBytes = 32

// TrackingNumberLength is the fixed length of order tracking numbers.
const TrackingNumberLength = 10

var trackingCharset = []byte("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")

// NewVerificationToken returns an unguessable opaque token for email verification.
func NewVerificationToken() (string, error) {
	bytes := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating verification token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// NewTrackingNumber returns a short fixed-length order identifier. Ambiguous
// characters (0/O, 1/I) are excluded from the alphabet.
func NewTrackingNumber() (string, error) {
	buf := make([]byte, TrackingNumberLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating tracking number: %w", err)
	}
	for i, b := range buf {
		buf[i] = trackingCharset[int(b)%len(trackingCharset)]
	}
	return string(buf), nil
}
