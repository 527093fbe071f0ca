// Package lerr defines the error-kind sentinels shared by every layer of
// lcloud, grounded on the teacher's flat var-block of sentinel errors
// (errors.go) rather than an error-code/panic scheme. Each layer wraps
// one of these with fmt.Errorf("...: %w", ...) so callers can still
// errors.Is against the kind while getting a descriptive message.
package lerr

import "errors"

var (
	// ErrTransport covers socket create/connect/read/write failure,
	// short reads, and unexpected EOF.
	ErrTransport = errors.New("transport error")

	// ErrProtocol covers a failed response predicate or a mismatched
	// echoed opcode/device-id.
	ErrProtocol = errors.New("protocol error")

	// ErrCrypto covers cipher open/setkey/setiv/encrypt/decrypt failure.
	ErrCrypto = errors.New("crypto error")

	// ErrState covers an unknown/closed handle, double-open of a path,
	// seek past EOF, or an operation attempted while powered off.
	ErrState = errors.New("invalid state")

	// ErrResource covers cache or block-map allocation failure, and
	// cluster capacity exhaustion.
	ErrResource = errors.New("resource exhausted")
)
