// SPDX-License-Identifier: BSD-3-Clause

// Package hwmonpath resolves a hwmon attribute file path the way the
// original's templated HwmonInterface<T> does: either a direct path, or a
// base path combined with a chip name match and a 1-based index into that
// chip's temperature or PWM files, built atop the teacher's hwmon
// discovery package.
package hwmonpath

import (
	"context"
	"fmt"

	"github.com/thinkfan-go/thinkfan/pkg/hwmon"
)

// Kind selects which attribute family (temp*_input or pwm*) an index
// resolves against.
type Kind int

const (
	Temperature Kind = iota
	PWM
)

// Resolve returns the absolute path to a hwmon attribute file.
//
//   - If path is non-empty, it is returned unchanged (direct-path mode).
//   - Else, basePath+name is used to find the chip directory (by its
//     "name" file), and index selects the attribute of kind Kind whose
//     file number is index (temp<index>_input or pwm<index>) within it.
func Resolve(ctx context.Context, kind Kind, path, basePath, name string, index int) (string, error) {
	if path != "" {
		return path, nil
	}

	disc := hwmon.NewDiscoverer(hwmon.WithDiscoveryPath(basePath))
	dev, err := disc.FindDevice(ctx, name)
	if err != nil {
		return "", fmt.Errorf("resolving hwmon device %q under %q: %w", name, basePath, err)
	}

	var sensorType hwmon.SensorType
	switch kind {
	case Temperature:
		sensorType = hwmon.SensorTypeTemperature
	case PWM:
		sensorType = hwmon.SensorTypePWM
	}

	info, err := dev.GetSensorByTypeAndIndex(ctx, sensorType, index)
	if err != nil {
		return "", fmt.Errorf("resolving index %d on hwmon device %q: %w", index, name, err)
	}

	attr := hwmon.AttributeInput
	p, err := info.GetAttributePath(attr)
	if err != nil {
		return "", fmt.Errorf("resolving attribute path for %q index %d: %w", name, index, err)
	}
	return p, nil
}
