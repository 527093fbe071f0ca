package lcloud

import (
	"errors"
	"fmt"

	"github.com/ordlucas/lcloud/internal/lerr"
)

// The public API collapses every failure to one of these five kinds.
// Callers that need a specific kind can errors.Is against these; the
// style follows the teacher's flat sentinel var-block rather than a
// custom error type hierarchy.
var (
	ErrTransport = lerr.ErrTransport
	ErrProtocol  = lerr.ErrProtocol
	ErrCrypto    = lerr.ErrCrypto
	ErrState     = lerr.ErrState
	ErrResource  = lerr.ErrResource
)

// ErrClusterFull is returned by the allocator when every probed device has
// reached capacity.
var ErrClusterFull = fmt.Errorf("no device has free blocks: %w", lerr.ErrResource)

// ErrAlreadyOpen is returned by Open when the path already has an open
// handle.
var ErrAlreadyOpen = fmt.Errorf("path already open: %w", lerr.ErrState)

// ErrUnknownHandle is returned when a handle is out of range or refers to
// a closed file.
var ErrUnknownHandle = fmt.Errorf("unknown or closed handle: %w", lerr.ErrState)

// ErrPoweredOff is returned by any I/O operation attempted before the
// cluster has been powered on (i.e. before the first successful Open) or
// after Shutdown.
var ErrPoweredOff = fmt.Errorf("cluster is powered off: %w", lerr.ErrState)

// ErrSeekPastEOF is returned by Seek when the requested offset exceeds
// the file's current size.
var ErrSeekPastEOF = fmt.Errorf("seek offset past end of file: %w", lerr.ErrState)

// ErrAlreadyShutdown is returned by Shutdown when the cluster is already
// powered off, distinct from a transport failure during the POWER_OFF
// request itself.
var ErrAlreadyShutdown = fmt.Errorf("cluster already shut down: %w", lerr.ErrState)

// Is reports whether err is (or wraps) target, a thin re-export of
// errors.Is for callers that only import this package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
