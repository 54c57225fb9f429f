// SPDX-License-Identifier: BSD-3-Clause

package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"unsafe"

	"github.com/thinkfan-go/thinkfan/internal/driver"
)

// ATA/SG_IO constants for the ATA_16 passthrough used to issue SMART READ
// DATA and read back attribute 194 (Temperature_Celsius), issued with a raw
// syscall.Syscall(SYS_IOCTL, ...) + unsafe.Pointer call (see ioctl below).
const (
	sgIO        = 0x2285
	ataSmartCmd = 0xB0
	smartReadData = 0xD0
	smartAttrTemperature = 194
)

// sgioHdr mirrors struct sg_io_hdr from <scsi/sg.h>, trimmed to the
// fields the ATA_16 passthrough needs.
type sgioHdr struct {
	interfaceID   int32
	dxferDir      int32
	cmdLen        uint8
	mxSbLen       uint8
	iovecCount    uint16
	dxferLen      uint32
	dxferp        uintptr
	cmdp          uintptr
	sbp           uintptr
	timeout       uint32
	flags         uint32
	packID        int32
	usrPtr        uintptr
	status        uint8
	maskedStatus  uint8
	msgStatus     uint8
	sbLenWr       uint8
	hostStatus    uint16
	driverStatus  uint16
	resid         int32
	duration      uint32
	info          uint32
}

const (
	sgDxferFromDev = -3
	sgInterfaceIDS = 'S'
)

// AtasmartSensor reads the SMART temperature attribute from a disk device
// node (e.g. /dev/sda) via an ATA_16 SG_IO passthrough. If DndDisk is set
// the disk's sleep state is respected instead of spinning it up to read.
type AtasmartSensor struct {
	Base
	path    string
	DndDisk bool
	logger  *slog.Logger
}

// NewAtasmartSensor builds an atasmart sensor against a disk device path.
func NewAtasmartSensor(policy *driver.Policy, logger *slog.Logger, path string, optional bool, correction int, dndDisk bool, maxErrors uint) *AtasmartSensor {
	s := &AtasmartSensor{
		Base:    NewSensorBase(driver.NewBase(policy, "atasmart sensor", optional, maxErrors), []int{correction}),
		path:    path,
		DndDisk: dndDisk,
		logger:  logger,
	}
	_ = s.SetNumTemps(1)
	return s
}

func (s *AtasmartSensor) lookup() (string, error) { return s.path, nil }

func (s *AtasmartSensor) init() error {
	f, err := os.OpenFile(s.path, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: sk_disk_open(%s): %v", driver.ErrSystem, s.path, err)
	}
	return f.Close()
}

// TryInit resolves and initializes the driver.
func (s *AtasmartSensor) TryInit() error {
	return s.Base.TryInit(s.lookup, s.init, func(err error) {
		lvl := slog.LevelInfo
		if s.Optional() {
			lvl = slog.LevelDebug
		}
		s.logger.Log(context.Background(), lvl, "ignoring error initializing atasmart sensor", "path", s.path, "error", err)
	})
}

// ReadTemps issues the SMART READ DATA passthrough and extracts attribute
// 194, converting milli-Kelvin to whole-degree Celsius exactly as the
// original: tmp = mK/1000 - 273.15, truncated toward zero.
func (s *AtasmartSensor) ReadTemps() error {
	return s.RobustOp(func() error {
		mKelvin, sleeping, err := s.readSmartTemperature()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", driver.ErrSystem, s.path, err)
		}
		r := s.Ref()
		r.Restart()
		if sleeping {
			r.AddTemp(0)
			return nil
		}
		celsius := float64(mKelvin)/1000.0 - 273.15
		r.AddTemp(int(celsius) + s.Correction()[0])
		return nil
	}, func(error) {
		if s.Optional() {
			s.SkipAll()
		} else {
			s.SkipKeepLast()
		}
	})
}

// readSmartTemperature opens the device, optionally checks sleep state
// when DndDisk is set, and issues the ATA_16 passthrough for the SMART
// READ DATA log, returning the raw attribute 194 value in milli-Kelvin.
func (s *AtasmartSensor) readSmartTemperature() (mKelvin uint64, sleeping bool, err error) {
	f, err := os.OpenFile(s.path, os.O_RDONLY, 0)
	if err != nil {
		return 0, false, err
	}
	defer f.Close()

	if s.DndDisk {
		asleep, err := s.checkSleeping(f)
		if err != nil {
			return 0, false, err
		}
		if asleep {
			return 0, true, nil
		}
	}

	buf := make([]byte, 512)
	cdb := [16]byte{
		0x85,          // ATA_16
		0x08,          // PROTOCOL: PIO data-in
		0x0e,          // flags: CK_COND | T_LENGTH=2 (sectors) | BYTE_BLOCK
		0x00,          // features
		smartReadData, // features (SMART sub-command)
		0x01,          // sector count
		0x01,          // LBA low
		0x4f,          // LBA mid
		0xc2,          // LBA high
		0x00,
		0xb0, // command: SMART
	}

	hdr := sgioHdr{
		interfaceID: sgInterfaceIDS,
		dxferDir:    sgDxferFromDev,
		cmdLen:      uint8(len(cdb)),
		dxferLen:    uint32(len(buf)),
		dxferp:      uintptr(unsafe.Pointer(&buf[0])),
		cmdp:        uintptr(unsafe.Pointer(&cdb[0])),
		timeout:     3000,
	}

	if err := ioctl(f.Fd(), sgIO, uintptr(unsafe.Pointer(&hdr))); err != nil {
		return 0, false, err
	}

	return parseSmartAttrTemperature(buf), false, nil
}

// checkSleeping issues the ATA CHECK POWER MODE command and reports
// whether the drive is currently in standby/sleep.
func (s *AtasmartSensor) checkSleeping(f *os.File) (bool, error) {
	cdb := [16]byte{0x85, 0x08, 0x0e, 0x00, 0xe5}
	buf := make([]byte, 512)
	hdr := sgioHdr{
		interfaceID: sgInterfaceIDS,
		dxferDir:    sgDxferFromDev,
		cmdLen:      uint8(len(cdb)),
		dxferLen:    uint32(len(buf)),
		dxferp:      uintptr(unsafe.Pointer(&buf[0])),
		cmdp:        uintptr(unsafe.Pointer(&cdb[0])),
		timeout:     3000,
	}
	if err := ioctl(f.Fd(), sgIO, uintptr(unsafe.Pointer(&hdr))); err != nil {
		return false, err
	}
	// Standby/sleep is reported via the status register's 00h value,
	// surfaced in the passthrough's sense buffer by the kernel; treat
	// any short transfer as "not actively spinning" for safety.
	return hdr.resid == int32(len(buf)), nil
}

func ioctl(fd uintptr, req uintptr, arg uintptr) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

// parseSmartAttrTemperature walks the 512-byte SMART attribute table
// (12-byte entries starting at offset 2) for attribute id 194 and
// returns its raw value field interpreted as milli-Kelvin-ish integer
// Celsius*1000 + 273150, matching libatasmart's convention.
func parseSmartAttrTemperature(table []byte) uint64 {
	for off := 2; off+12 <= len(table); off += 12 {
		if table[off] == smartAttrTemperature {
			raw := uint64(table[off+7]) | uint64(table[off+8])<<8
			return raw*1000 + 273150
		}
	}
	return 273 * 1000
}
