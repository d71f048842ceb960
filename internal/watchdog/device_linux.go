//go:build linux

package watchdog

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ioctl requests from linux/watchdog.h.
const (
	wdiocKeepalive  = 0x80045705 // _IOR('W', 5, int)
	wdiocSetTimeout = 0xc0045706 // _IOWR('W', 6, int)
)

// Device is the Linux kernel watchdog. Opening the device arms it; writing
// the magic 'V' before close disarms it.
type Device struct {
	path string
	f    *os.File
}

// NewDevice returns a Device for the given path. Nothing is opened until Arm.
func NewDevice(path string) *Device {
	return &Device{path: path}
}

// Arm opens the device if needed and sets the timeout, rounded up to whole
// seconds as the kernel requires. If the timeout cannot be set on a device
// Arm just opened, the device is closed again with the magic 'V'.
func (d *Device) Arm(timeout time.Duration) error {
	opened := false
	if d.f == nil {
		f, err := os.OpenFile(d.path, os.O_WRONLY, 0)
		if err != nil {
			return errors.Wrapf(err, "open %s", d.path)
		}
		d.f = f
		opened = true
	}

	secs := int((timeout + time.Second - 1) / time.Second)
	if err := unix.IoctlSetPointerInt(int(d.f.Fd()), wdiocSetTimeout, secs); err != nil {
		// Opening started the countdown; stop it again so a failed Arm
		// leaves the device as it found it.
		if opened {
			d.Disarm()
		}
		return errors.Wrapf(err, "set timeout %ds", secs)
	}
	return nil
}

// Pet sends a keepalive.
func (d *Device) Pet() error {
	if d.f == nil {
		return ErrNotArmed
	}
	if err := unix.IoctlSetInt(int(d.f.Fd()), wdiocKeepalive, 0); err != nil {
		return errors.Wrap(err, "keepalive")
	}
	return nil
}

// Disarm performs the magic close. Disarming a disarmed device is a no-op.
func (d *Device) Disarm() error {
	if d.f == nil {
		return nil
	}

	f := d.f
	d.f = nil
	if _, err := f.Write([]byte("V")); err != nil {
		f.Close()
		return errors.Wrap(err, "write magic close")
	}
	return errors.Wrap(f.Close(), "close watchdog")
}
