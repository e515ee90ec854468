package diagnostics

import (
	"fmt"
	"os"
	"syscall"
)

// MinDiskSpaceBytes is the minimum recommended free disk space (100MB).
const MinDiskSpaceBytes = 100 * 1024 * 1024

// checkDataDir verifies the data directory exists (or can be created) and
// is writable.
func (c *Checker) checkDataDir(dataDir string) CheckResult {
	result := CheckResult{Name: "data_dir", Required: true}

	if dataDir == "" {
		result.Status = StatusFail
		result.Message = "no data directory configured"
		return result
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot create %s: %v", dataDir, err)
		return result
	}

	testFile := dataDir + "/.searchd-doctor-test"
	f, err := os.Create(testFile)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("permission denied: %v", err)
		return result
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	result.Status = StatusPass
	result.Message = dataDir
	return result
}

// checkDiskSpace checks if there's sufficient free disk space at the given path.
func (c *Checker) checkDiskSpace(path string) CheckResult {
	result := CheckResult{Name: "disk_space", Required: true}

	if path == "" {
		result.Status = StatusFail
		result.Message = "no data directory configured"
		return result
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("failed to check disk space: %v", err)
		return result
	}

	availableBytes := stat.Bavail * uint64(stat.Bsize)

	if availableBytes < MinDiskSpaceBytes {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s free (minimum: 100 MB)", formatBytes(availableBytes))
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%s free (minimum: 100 MB)", formatBytes(availableBytes))
	return result
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
		TB = 1024 * GB
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
