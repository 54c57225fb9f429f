// SPDX-License-Identifier: BSD-3-Clause

package fan

import "errors"

var (
	// ErrNoCtrlSupport indicates /proc/acpi/ibm/fan doesn't advertise
	// "level <level>" among its supported commands.
	ErrNoCtrlSupport = errors.New("thinkpad_acpi fan control not supported by this kernel module")
	// ErrNoInitialState indicates the fan interface never reported a
	// "level:" (tpacpi) or enable (hwmon) line to capture for restore.
	ErrNoInitialState = errors.New("failed to read fan's initial state")
)
