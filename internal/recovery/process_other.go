//go:build !unix

package recovery

import "os"

func currentPID() int {
	return os.Getpid()
}

// isProcessRunning has no cheap cross-platform liveness check outside
// Unix signal-0; assuming not-running is the safe default here since it
// only costs an unnecessary recovery prompt, never lost data.
func isProcessRunning(_ int) bool {
	return false
}
