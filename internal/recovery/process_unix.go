//go:build unix

package recovery

import (
	"os"
	"syscall"
)

// currentPID is the running process's PID, recorded in the session lock.
func currentPID() int {
	return os.Getpid()
}

// isProcessRunning sends signal 0 to pid: the kernel still validates the
// target exists and is reachable without actually delivering a signal.
// ESRCH means gone; EPERM means it exists but belongs to another user,
// which still counts as running for crash-detection purposes.
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, syscall.Signal(0))
	if err == nil {
		return true
	}
	return err == syscall.EPERM
}
