// Package types holds the wire envelopes shared by every HTTP response.
// Success payloads always arrive under "data" and failures under "error",
// so clients can branch on the top-level key alone.
package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError carries the machine-readable code alongside the public message.
// Details is only populated for codes whose metadata allows echoing caller
// input back, such as field-level validation failures.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
