// SPDX-License-Identifier: BSD-3-Clause

package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/thinkfan-go/thinkfan/internal/driver"
)

// nvmlMu and nvmlRefCount guard the process-wide nvml.Init()/Shutdown() pair: multiple
// GPUs share one library handle, matching the original's one dlopen per
// process (it happens to call nvmlInit_v2 per-instance, but the
// underlying driver session is a single process-wide resource).
var (
	nvmlMu       sync.Mutex
	nvmlRefCount int
)

func nvmlAcquire() error {
	nvmlMu.Lock()
	defer nvmlMu.Unlock()
	if nvmlRefCount == 0 {
		if ret := nvml.Init(); ret != nvml.SUCCESS {
			return fmt.Errorf("%w: failed to initialize NVML: %v", driver.ErrSystem, nvml.ErrorString(ret))
		}
	}
	nvmlRefCount++
	return nil
}

func nvmlRelease() {
	nvmlMu.Lock()
	defer nvmlMu.Unlock()
	nvmlRefCount--
	if nvmlRefCount <= 0 {
		nvmlRefCount = 0
		nvml.Shutdown()
	}
}

// NvmlSensor reads NVML_TEMPERATURE_GPU from a GPU identified by PCI bus
// id, resolving the shared library through github.com/NVIDIA/go-nvml the
// same way the pack's other nvidia-fan-control examples do, in place of
// the original's manual dlopen/dlsym of libnvidia-ml.so.1.
type NvmlSensor struct {
	Base
	busID  string
	device nvml.Device
	logger *slog.Logger
}

// NewNvmlSensor builds an nvml sensor for the GPU at the given PCI bus id
// (e.g. "0000:01:00.0").
func NewNvmlSensor(policy *driver.Policy, logger *slog.Logger, busID string, optional bool, correction int, maxErrors uint) *NvmlSensor {
	s := &NvmlSensor{
		Base:   NewSensorBase(driver.NewBase(policy, "nvml sensor", optional, maxErrors), []int{correction}),
		busID:  busID,
		logger: logger,
	}
	_ = s.SetNumTemps(1)
	return s
}

func (s *NvmlSensor) lookup() (string, error) { return s.busID, nil }

func (s *NvmlSensor) init() error {
	if err := nvmlAcquire(); err != nil {
		return err
	}
	dev, ret := nvml.DeviceGetHandleByPciBusId(s.busID)
	if ret != nvml.SUCCESS {
		nvmlRelease()
		return fmt.Errorf("%w: failed to open PCI device %s: %v", driver.ErrSystem, s.busID, nvml.ErrorString(ret))
	}
	s.device = dev
	if name, ret := dev.GetName(); ret == nvml.SUCCESS {
		s.logger.Debug("initialized nvml sensor", "name", name, "bus_id", s.busID)
	}
	return nil
}

// TryInit resolves and initializes the driver.
func (s *NvmlSensor) TryInit() error {
	return s.Base.TryInit(s.lookup, s.init, func(err error) {
		lvl := slog.LevelInfo
		if s.Optional() {
			lvl = slog.LevelDebug
		}
		s.logger.Log(context.Background(), lvl, "ignoring error initializing nvml sensor", "bus_id", s.busID, "error", err)
	})
}

// ReadTemps reads the GPU core temperature.
func (s *NvmlSensor) ReadTemps() error {
	return s.RobustOp(func() error {
		temp, ret := s.device.GetTemperature(nvml.TEMPERATURE_GPU)
		if ret != nvml.SUCCESS {
			return fmt.Errorf("%w: %s: %v", driver.ErrSystem, s.busID, nvml.ErrorString(ret))
		}
		r := s.Ref()
		r.Restart()
		r.AddTemp(int(temp) + s.Correction()[0])
		return nil
	}, func(error) {
		if s.Optional() {
			s.SkipAll()
		} else {
			s.SkipKeepLast()
		}
	})
}

// Close releases this sensor's reference on the shared NVML session.
func (s *NvmlSensor) Close() error {
	if s.Initialized() {
		nvmlRelease()
	}
	return nil
}
