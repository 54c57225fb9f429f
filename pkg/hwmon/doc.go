// SPDX-License-Identifier: BSD-3-Clause

// Package hwmon provides minimal, direct access to the Linux hwmon
// (hardware monitoring) subsystem through sysfs: typed reads/writes of a
// known attribute path, and discovery of an attribute path when only a
// chip name and a 1-based sensor index are known.
//
// # Reading and writing a known path
//
//	milli, err := hwmon.ReadInt("/sys/class/hwmon/hwmon2/temp1_input")
//	err = hwmon.WriteInt("/sys/class/hwmon/hwmon3/pwm1", 128)
//
// # Resolving a path by chip name and index
//
//	disc := hwmon.NewDiscoverer(hwmon.WithDiscoveryPath("/sys/class/hwmon"))
//	dev, err := disc.FindDevice(ctx, "nct6775")
//	sensor, err := dev.GetSensorByTypeAndIndex(ctx, hwmon.SensorTypePWM, 1)
//	path, err := sensor.GetAttributePath(hwmon.AttributeInput)
//
// FindDevice scans every hwmonN directory under the discoverer's base
// path, reads each device's "name" file, and caches the result for the
// discoverer's cache TTL. GetSensorByTypeAndIndex then looks up the sensor
// of the requested type whose file number is N (temp3_* or pwm3 for index
// 3) on that device; it does not count discovered sensors. This two-step
// resolution mirrors how the kernel itself offers no
// stable attribute path across reboots for a hot-pluggable sensor chip:
// only the chip name and a type+index pair are guaranteed stable.
package hwmon
