// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SensorType represents the type of hardware sensor.
type SensorType int

const (
	// SensorTypeTemperature represents temperature sensors (temp*).
	SensorTypeTemperature SensorType = iota
	// SensorTypeVoltage represents voltage sensors (in*).
	SensorTypeVoltage
	// SensorTypeFan represents fan sensors (fan*).
	SensorTypeFan
	// SensorTypePower represents power sensors (power*).
	SensorTypePower
	// SensorTypeCurrent represents current sensors (curr*).
	SensorTypeCurrent
	// SensorTypeHumidity represents humidity sensors (humidity*).
	SensorTypeHumidity
	// SensorTypePressure represents pressure sensors (pressure*).
	SensorTypePressure
	// SensorTypePWM represents PWM outputs (pwm*).
	SensorTypePWM
	// SensorTypeGeneric represents generic sensors or custom types.
	SensorTypeGeneric
)

// String returns the string representation of the sensor type.
func (st SensorType) String() string {
	switch st {
	case SensorTypeTemperature:
		return "temperature"
	case SensorTypeVoltage:
		return "voltage"
	case SensorTypeFan:
		return "fan"
	case SensorTypePower:
		return "power"
	case SensorTypeCurrent:
		return "current"
	case SensorTypeHumidity:
		return "humidity"
	case SensorTypePressure:
		return "pressure"
	case SensorTypePWM:
		return "pwm"
	case SensorTypeGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Prefix returns the hwmon file prefix for the sensor type.
func (st SensorType) Prefix() string {
	switch st {
	case SensorTypeTemperature:
		return "temp"
	case SensorTypeVoltage:
		return "in"
	case SensorTypeFan:
		return "fan"
	case SensorTypePower:
		return "power"
	case SensorTypeCurrent:
		return "curr"
	case SensorTypeHumidity:
		return "humidity"
	case SensorTypePressure:
		return "pressure"
	case SensorTypePWM:
		return "pwm"
	default:
		return ""
	}
}

// SensorAttribute represents different sensor attributes available in hwmon.
type SensorAttribute int

const (
	// AttributeInput represents the current sensor reading (*_input).
	AttributeInput SensorAttribute = iota
	// AttributeLabel represents the sensor label (*_label).
	AttributeLabel
	// AttributeMin represents the minimum threshold (*_min).
	AttributeMin
	// AttributeMax represents the maximum threshold (*_max).
	AttributeMax
	// AttributeCrit represents the critical threshold (*_crit).
	AttributeCrit
	// AttributeAlarm represents the alarm status (*_alarm).
	AttributeAlarm
	// AttributeEnable represents the enable/disable control (*_enable).
	AttributeEnable
	// AttributeTarget represents the target value (*_target).
	AttributeTarget
	// AttributeFault represents the fault status (*_fault).
	AttributeFault
	// AttributeBeep represents the beep enable (*_beep).
	AttributeBeep
	// AttributeOffset represents the sensor offset (*_offset).
	AttributeOffset
	// AttributeType represents the sensor type (*_type).
	AttributeType
)

// String returns the string representation of the sensor attribute.
func (sa SensorAttribute) String() string {
	switch sa {
	case AttributeInput:
		return "input"
	case AttributeLabel:
		return "label"
	case AttributeMin:
		return "min"
	case AttributeMax:
		return "max"
	case AttributeCrit:
		return "crit"
	case AttributeAlarm:
		return "alarm"
	case AttributeEnable:
		return "enable"
	case AttributeTarget:
		return "target"
	case AttributeFault:
		return "fault"
	case AttributeBeep:
		return "beep"
	case AttributeOffset:
		return "offset"
	case AttributeType:
		return "type"
	default:
		return "unknown"
	}
}

// IsWritable returns true if the attribute is typically writable.
func (sa SensorAttribute) IsWritable() bool {
	switch sa {
	case AttributeMin, AttributeMax, AttributeCrit, AttributeEnable,
		AttributeTarget, AttributeBeep, AttributeOffset:
		return true
	default:
		return false
	}
}

// Device represents a hwmon device with its metadata and capabilities.
type Device struct {
	Name     string
	Path     string
	HwmonID  string
	Sensors  map[string]*SensorInfo
	mu       sync.RWMutex
	lastScan time.Time
}

// SensorInfo contains metadata about a discovered sensor.
type SensorInfo struct {
	Name       string
	Label      string
	Index      int
	Type       SensorType
	Attributes map[SensorAttribute]string
	Writable   bool
	DevicePath string
}

// Discoverer handles discovery of hwmon devices and sensors.
type Discoverer struct {
	basePath      string
	timeout       time.Duration
	cacheEnabled  bool
	cacheTTL      time.Duration
	deviceCache   map[string]*Device
	lastDiscovery time.Time
	mu            sync.RWMutex
}

// DiscoveryConfig holds configuration for the discoverer.
type DiscoveryConfig struct {
	BasePath     string
	Timeout      time.Duration
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DiscoveryOption represents a configuration option for the discoverer.
type DiscoveryOption interface {
	apply(*DiscoveryConfig)
}

type discoveryBasePathOption struct {
	path string
}

func (o *discoveryBasePathOption) apply(c *DiscoveryConfig) {
	c.BasePath = o.path
}

// WithDiscoveryPath sets the base hwmon path for discovery.
func WithDiscoveryPath(path string) DiscoveryOption {
	return &discoveryBasePathOption{path: path}
}

// NewDiscoverer creates a new hwmon discoverer with the specified options.
func NewDiscoverer(opts ...DiscoveryOption) *Discoverer {
	cfg := &DiscoveryConfig{
		BasePath:     "/sys/class/hwmon",
		Timeout:      10 * time.Second,
		CacheEnabled: true,
		CacheTTL:     30 * time.Second,
	}

	for _, opt := range opts {
		opt.apply(cfg)
	}

	return &Discoverer{
		basePath:     cfg.BasePath,
		timeout:      cfg.Timeout,
		cacheEnabled: cfg.CacheEnabled,
		cacheTTL:     cfg.CacheTTL,
		deviceCache:  make(map[string]*Device),
	}
}

// DiscoverDevices discovers all available hwmon devices.
func (d *Discoverer) DiscoverDevices(ctx context.Context) ([]*Device, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cacheEnabled && time.Since(d.lastDiscovery) < d.cacheTTL {
		devices := make([]*Device, 0, len(d.deviceCache))
		for _, device := range d.deviceCache {
			devices = append(devices, device)
		}
		return devices, nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	entries, err := os.ReadDir(d.basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read hwmon directory: %w", ErrDiscoveryFailure, err)
	}

	devices := make([]*Device, 0, len(entries))
	deviceMap := make(map[string]*Device)

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "hwmon") {
			continue
		}

		select {
		case <-timeoutCtx.Done():
			return nil, fmt.Errorf("%w: %w", ErrReadTimeout, timeoutCtx.Err())
		default:
		}

		device, err := d.discoverDevice(timeoutCtx, entry.Name())
		if err != nil {
			continue
		}

		devices = append(devices, device)
		deviceMap[device.Name] = device
	}

	if d.cacheEnabled {
		d.deviceCache = deviceMap
		d.lastDiscovery = time.Now()
	}

	sort.Slice(devices, func(i, j int) bool {
		ii, _ := hwmonNumber(devices[i].HwmonID)
		ij, _ := hwmonNumber(devices[j].HwmonID)
		if ii == ij {
			return devices[i].HwmonID < devices[j].HwmonID
		}
		return ii < ij
	})

	return devices, nil
}

// FindDevice finds a specific hwmon device by name.
func (d *Discoverer) FindDevice(ctx context.Context, deviceName string) (*Device, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	if deviceName == "" {
		return nil, fmt.Errorf("%w: device name cannot be empty", ErrInvalidConfig)
	}

	d.mu.RLock()
	if d.cacheEnabled && time.Since(d.lastDiscovery) < d.cacheTTL {
		if device, exists := d.deviceCache[deviceName]; exists {
			d.mu.RUnlock()
			return device, nil
		}
	}
	d.mu.RUnlock()

	devices, err := d.DiscoverDevices(ctx)
	if err != nil {
		return nil, err
	}

	for _, device := range devices {
		if device.Name == deviceName {
			return device, nil
		}
	}

	return nil, fmt.Errorf("%w: device %s", ErrDeviceNotFound, deviceName)
}

// discoverDevice discovers a single hwmon device and its sensors.
func (d *Discoverer) discoverDevice(ctx context.Context, hwmonID string) (*Device, error) {
	devicePath := filepath.Join(d.basePath, hwmonID)

	nameFile := filepath.Join(devicePath, "name")
	nameBytes, err := os.ReadFile(nameFile)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read device name: %w", ErrDiscoveryFailure, err)
	}

	deviceName := strings.TrimSpace(string(nameBytes))
	if deviceName == "" {
		return nil, fmt.Errorf("%w: empty device name", ErrDiscoveryFailure)
	}

	device := &Device{
		Name:     deviceName,
		Path:     devicePath,
		HwmonID:  hwmonID,
		Sensors:  make(map[string]*SensorInfo),
		lastScan: time.Now(),
	}

	if err := device.scanSensors(ctx); err != nil {
		return nil, fmt.Errorf("failed to scan sensors for device %s: %w", deviceName, err)
	}

	return device, nil
}

// GetSensorByTypeAndIndex finds a sensor by type and index.
func (d *Device) GetSensorByTypeAndIndex(ctx context.Context, sensorType SensorType, index int) (*SensorInfo, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	if index < 1 {
		return nil, fmt.Errorf("%w: sensor index must be positive", ErrInvalidSensorIndex)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, sensor := range d.Sensors {
		if sensor.Type == sensorType && sensor.Index == index {
			return sensor, nil
		}
	}

	return nil, fmt.Errorf("%w: sensor %s%d", ErrSensorNotFound, sensorType.Prefix(), index)
}

// scanSensors scans the device directory for available sensors.
func (d *Device) scanSensors(ctx context.Context) error {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		return fmt.Errorf("%w: failed to read device directory: %w", ErrDiscoveryFailure, err)
	}

	sensorMap := make(map[string]*SensorInfo)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrOperationCanceled, ctx.Err())
		default:
		}

		fileName := entry.Name()
		sensorInfo := d.parseSensorFile(fileName)
		if sensorInfo == nil {
			continue
		}

		sensorInfo.DevicePath = d.Path
		key := fmt.Sprintf("%s%d", sensorInfo.Type.Prefix(), sensorInfo.Index)

		existing, exists := sensorMap[key]
		if !exists {
			existing = &SensorInfo{
				Name:       key,
				Index:      sensorInfo.Index,
				Type:       sensorInfo.Type,
				Attributes: make(map[SensorAttribute]string),
				DevicePath: d.Path,
			}
			sensorMap[key] = existing
		}

		attr := sensorInfo.getAttributeFromFile(fileName)
		fullPath := filepath.Join(d.Path, fileName)
		existing.Attributes[attr] = fullPath

		if attr == AttributeLabel {
			labelBytes, err := os.ReadFile(filepath.Join(d.Path, fileName))
			if err == nil {
				existing.Label = strings.TrimSpace(string(labelBytes))
			}
		}

		// Mark writable if attribute is writable OR it's the PWM value file ("pwmN").
		if isFileWritable(fullPath) && (attr.IsWritable() || (sensorInfo.Type == SensorTypePWM && attr == AttributeInput && !strings.Contains(fileName, "_"))) {
			existing.Writable = true
		}
	}

	d.Sensors = sensorMap
	return nil
}

// parseSensorFile parses a sensor filename and returns sensor information.
func (d *Device) parseSensorFile(fileName string) *SensorInfo {
	patterns := map[SensorType]*regexp.Regexp{
		SensorTypeTemperature: regexp.MustCompile(`^temp(\d+)_(.+)$`),
		SensorTypeVoltage:     regexp.MustCompile(`^in(\d+)_(.+)$`),
		SensorTypeFan:         regexp.MustCompile(`^fan(\d+)_(.+)$`),
		SensorTypePower:       regexp.MustCompile(`^power(\d+)_(.+)$`),
		SensorTypeCurrent:     regexp.MustCompile(`^curr(\d+)_(.+)$`),
		SensorTypeHumidity:    regexp.MustCompile(`^humidity(\d+)_(.+)$`),
		SensorTypePressure:    regexp.MustCompile(`^pressure(\d+)_(.+)$`),
		SensorTypePWM:         regexp.MustCompile(`^pwm(\d+)(_(.+))?$`),
	}

	for sensorType, pattern := range patterns {
		matches := pattern.FindStringSubmatch(fileName)
		if len(matches) >= 2 {
			index, err := strconv.Atoi(matches[1])
			if err != nil {
				continue
			}

			return &SensorInfo{
				Index: index,
				Type:  sensorType,
			}
		}
	}

	return nil
}

// getAttributeFromFile determines the sensor attribute from a filename.
func (s *SensorInfo) getAttributeFromFile(fileName string) SensorAttribute {
	switch {
	case strings.HasSuffix(fileName, "_input"):
		return AttributeInput
	case strings.HasSuffix(fileName, "_label"):
		return AttributeLabel
	case strings.HasSuffix(fileName, "_min"):
		return AttributeMin
	case strings.HasSuffix(fileName, "_max"):
		return AttributeMax
	case strings.HasSuffix(fileName, "_crit"):
		return AttributeCrit
	case strings.HasSuffix(fileName, "_alarm"):
		return AttributeAlarm
	case strings.HasSuffix(fileName, "_enable"):
		return AttributeEnable
	case strings.HasSuffix(fileName, "_target"):
		return AttributeTarget
	case strings.HasSuffix(fileName, "_fault"):
		return AttributeFault
	case strings.HasSuffix(fileName, "_beep"):
		return AttributeBeep
	case strings.HasSuffix(fileName, "_offset"):
		return AttributeOffset
	case strings.HasSuffix(fileName, "_type"):
		return AttributeType
	default:
		return AttributeInput
	}
}

// GetAttributePath returns the sysfs path for a specific attribute.
func (s *SensorInfo) GetAttributePath(attr SensorAttribute) (string, error) {
	path, exists := s.Attributes[attr]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrAttributeNotSupported, attr.String())
	}
	return path, nil
}

// isFileWritable checks whether a sysfs attribute file is currently writable.
func isFileWritable(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	_ = file.Close()
	return true
}

// hwmonNumber extracts the numeric ID from a "hwmonN" directory name, used
// only to sort discovered devices in a stable, human-expected order.
func hwmonNumber(hwmonID string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(hwmonID, "hwmon"))
	if err != nil {
		return 0, fmt.Errorf("%w: malformed hwmon id %q", ErrInvalidConfig, hwmonID)
	}
	return n, nil
}
