package diagnostics

import "fmt"

// checkDaemon reports whether the daemon is reachable over its socket.
func (c *Checker) checkDaemon(in Inputs) CheckResult {
	result := CheckResult{Name: "daemon", Required: false}

	if in.DaemonRunning {
		result.Status = StatusPass
		result.Message = fmt.Sprintf("running (pid %d, socket %s)", in.DaemonPID, in.SocketPath)
		return result
	}

	result.Status = StatusWarn
	result.Message = "not running — start it with 'searchd serve'"
	return result
}

// checkPIDFile reports whether the PID file is consistent with the
// observed daemon state: present and pointing at a live process when the
// daemon is running, absent or stale otherwise.
func (c *Checker) checkPIDFile(in Inputs) CheckResult {
	result := CheckResult{Name: "pid_file", Required: false}

	if in.DaemonRunning {
		if in.DaemonPID == 0 {
			result.Status = StatusWarn
			result.Message = fmt.Sprintf("daemon reachable but PID file at %s is unreadable", in.PIDPath)
			return result
		}
		result.Status = StatusPass
		result.Message = fmt.Sprintf("%s (pid %d)", in.PIDPath, in.DaemonPID)
		return result
	}

	if in.DaemonPID != 0 {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("stale PID file at %s (pid %d not responding)", in.PIDPath, in.DaemonPID)
		return result
	}

	result.Status = StatusPass
	result.Message = "no PID file (daemon not running)"
	return result
}
