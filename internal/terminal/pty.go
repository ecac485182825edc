package terminal

import (
	"fmt"
	"os"
	"os/exec"
)

// PTY is an allocated pseudo-terminal pair with a child process attached
// to the replica side.
type PTY interface {
	// Read reads child output from the control side.
	Read(p []byte) (int, error)
	// Write sends input to the child.
	Write(p []byte) (int, error)
	// Resize updates the kernel's window size and signals the child.
	Resize(cols, rows int) error
	// Close terminates the child process and releases the pair.
	Close() error
	// Wait blocks until the child exits.
	Wait() error
}

// StartCommand allocates a PTY and starts cmd with the replica side as
// its controlling terminal.
func StartCommand(cmd *exec.Cmd, cols, rows int) (PTY, error) {
	control, replica, err := openPTY()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPTYOpen, err)
	}

	p := &unixPTY{control: control, replica: replica}
	if err := p.Resize(cols, rows); err != nil {
		p.closeFiles()
		return nil, err
	}

	cmd.Stdin = replica
	cmd.Stdout = replica
	cmd.Stderr = replica
	setControllingTTY(cmd)

	if err := cmd.Start(); err != nil {
		p.closeFiles()
		return nil, fmt.Errorf("%w: %v", ErrProcessStart, err)
	}
	p.cmd = cmd

	// The child holds its own descriptor for the replica side.
	replica.Close()
	p.replica = nil

	return p, nil
}

type unixPTY struct {
	control *os.File
	replica *os.File
	cmd     *exec.Cmd
}

func (p *unixPTY) Read(b []byte) (int, error)  { return p.control.Read(b) }
func (p *unixPTY) Write(b []byte) (int, error) { return p.control.Write(b) }

func (p *unixPTY) Resize(cols, rows int) error {
	if cols < 1 || rows < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, cols, rows)
	}
	if err := setWinsize(p.control, cols, rows); err != nil {
		return fmt.Errorf("%w: %v", ErrResize, err)
	}
	return nil
}

func (p *unixPTY) Close() error {
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
		p.cmd.Wait()
	}
	return p.closeFiles()
}

func (p *unixPTY) Wait() error {
	if p.cmd == nil {
		return nil
	}
	return p.cmd.Wait()
}

func (p *unixPTY) closeFiles() error {
	var err error
	if p.control != nil {
		err = p.control.Close()
		p.control = nil
	}
	if p.replica != nil {
		p.replica.Close()
		p.replica = nil
	}
	return err
}
