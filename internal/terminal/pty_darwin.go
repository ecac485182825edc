//go:build darwin

package terminal

import (
	"os"
	"os/exec"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// openPTY allocates a pseudo-terminal pair via posix_openpt semantics.
func openPTY() (control, replica *os.File, err error) {
	control, err = os.OpenFile("/dev/ptmx", os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, nil, err
	}

	// grantpt / unlockpt before the replica can be opened.
	if err := unix.IoctlSetInt(int(control.Fd()), unix.TIOCPTYGRANT, 0); err != nil {
		control.Close()
		return nil, nil, err
	}
	if err := unix.IoctlSetInt(int(control.Fd()), unix.TIOCPTYUNLK, 0); err != nil {
		control.Close()
		return nil, nil, err
	}

	name, err := ptsname(control)
	if err != nil {
		control.Close()
		return nil, nil, err
	}

	replica, err = os.OpenFile(name, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		control.Close()
		return nil, nil, err
	}
	return control, replica, nil
}

// ptsname returns the replica device path via TIOCPTYGNAME, which fills
// a 128-byte buffer with a NUL-terminated path.
func ptsname(control *os.File) (string, error) {
	var buf [128]byte
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		control.Fd(),
		unix.TIOCPTYGNAME,
		uintptr(unsafe.Pointer(&buf[0])),
	)
	if errno != 0 {
		return "", errno
	}

	end := 0
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	return string(buf[:end]), nil
}

func setWinsize(f *os.File, cols, rows int) error {
	ws := &unix.Winsize{Col: uint16(cols), Row: uint16(rows)}
	return unix.IoctlSetWinsize(int(f.Fd()), unix.TIOCSWINSZ, ws)
}

func setControllingTTY(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}
}
