package device

import "codeberg.org/mutker/gpumond/internal/errors"

const (
	// ErrEnumerationFailed covers an unreachable listing tool as well
	// as an empty device list; both are fatal at startup.
	ErrEnumerationFailed = errors.ErrorCode("enumeration_failed")
)
