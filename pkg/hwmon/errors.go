// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import "errors"

var (
	// ErrFileNotFound indicates that the specified hwmon file does not exist.
	ErrFileNotFound = errors.New("hwmon file not found")
	// ErrPermissionDenied indicates that access to the hwmon file was denied.
	ErrPermissionDenied = errors.New("permission denied accessing hwmon file")
	// ErrInvalidValue indicates that the value read from or written to hwmon is invalid.
	ErrInvalidValue = errors.New("invalid hwmon value")
	// ErrDeviceNotFound indicates that the specified hwmon device was not found.
	ErrDeviceNotFound = errors.New("hwmon device not found")
	// ErrSensorNotFound indicates that no sensor matched the requested type and index.
	ErrSensorNotFound = errors.New("hwmon sensor not found")
	// ErrReadFailure indicates that reading from hwmon failed.
	ErrReadFailure = errors.New("hwmon read failure")
	// ErrWriteFailure indicates that writing to hwmon failed.
	ErrWriteFailure = errors.New("hwmon write failure")
	// ErrInvalidPath indicates that the provided hwmon path is invalid.
	ErrInvalidPath = errors.New("invalid hwmon path")
	// ErrInvalidConfig indicates that a discovery argument was missing or malformed.
	ErrInvalidConfig = errors.New("invalid hwmon discovery argument")
	// ErrInvalidSensorIndex indicates that a requested sensor index was not positive.
	ErrInvalidSensorIndex = errors.New("invalid hwmon sensor index")
	// ErrAttributeNotSupported indicates that a sensor does not expose the requested attribute.
	ErrAttributeNotSupported = errors.New("hwmon attribute not supported")
	// ErrDiscoveryFailure indicates that scanning the hwmon device tree failed.
	ErrDiscoveryFailure = errors.New("hwmon discovery failure")
	// ErrOperationTimeout indicates that the hwmon operation timed out.
	ErrOperationTimeout = errors.New("hwmon operation timeout")
	// ErrReadTimeout indicates that a discovery scan exceeded its deadline.
	ErrReadTimeout = errors.New("hwmon discovery read timeout")
	// ErrOperationCanceled indicates that a discovery scan was canceled via its context.
	ErrOperationCanceled = errors.New("hwmon discovery operation canceled")
	// ErrNilContext indicates that a discovery call was made with a nil context.
	ErrNilContext = errors.New("hwmon discovery called with a nil context")
)
