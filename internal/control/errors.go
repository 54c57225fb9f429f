// SPDX-License-Identifier: BSD-3-Clause

package control

import "errors"

var (
	// ErrSensorLost indicates a sensor's ReadTemps call filled fewer
	// slots than its num_temps promised (MSG_SENSOR_LOST in the
	// original), fatal when sanity checks are enabled.
	ErrSensorLost = errors.New("sensor lost: fewer temperatures read than expected")
)
