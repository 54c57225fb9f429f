// SPDX-License-Identifier: BSD-3-Clause

package sensor

import "errors"

var (
	// ErrCorrectionLength indicates a correction vector whose length
	// doesn't match the sensor's num_temps.
	ErrCorrectionLength = errors.New("correction vector length mismatch")
	// ErrUnknownFormat indicates a procfs/sysfs file didn't start with
	// the expected marker line.
	ErrUnknownFormat = errors.New("unknown file format")
	// ErrTooFewIndices indicates the config requested a temp_indices
	// entry beyond what the underlying file actually reports.
	ErrTooFewIndices = errors.New("config specifies more temperature inputs than the sensor reports")
	// ErrInvalidTemperature indicates a sensor-specific reading outside
	// its physically valid range (e.g. below absolute zero).
	ErrInvalidTemperature = errors.New("invalid temperature reading")
)
