// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// isFatal reports handle exhaustion, an invalidated directory handle, or a
// notification buffer that could not be allocated.
func isFatal(err error) bool {
	return errors.Is(err, syscall.Errno(4)) || // ERROR_TOO_MANY_OPEN_FILES
		errors.Is(err, syscall.Errno(6)) || // ERROR_INVALID_HANDLE
		errors.Is(err, syscall.Errno(8)) // ERROR_NOT_ENOUGH_MEMORY
}
