//go:build windows

package lifecycle

import "syscall"

const (
	createNoWindow    = 0x08000000
	detachedProcess   = 0x00000008
)

func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: createNoWindow | detachedProcess}
}
