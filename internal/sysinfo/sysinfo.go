package sysinfo

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// Environment holds the process-environment fields included in every
// submission.
type Environment struct {
	OSName    string
	OSArch    string
	OSVersion string
	Cores     int
	Runtime   string
}

// Collect gathers the environment fields, falling back to the Go
// runtime when the host probes fail (restricted containers, exotic
// platforms).
func Collect() Environment {
	env := Environment{
		OSName:  runtime.GOOS,
		OSArch:  NormalizeArch(runtime.GOARCH),
		Cores:   runtime.NumCPU(),
		Runtime: runtime.Version(),
	}

	if info, err := host.Info(); err == nil {
		if info.OS != "" {
			env.OSName = info.OS
		}
		if info.KernelVersion != "" {
			env.OSVersion = info.KernelVersion
		} else {
			env.OSVersion = info.PlatformVersion
		}
	}

	if n, err := cpu.Counts(true); err == nil && n > 0 {
		env.Cores = n
	}

	return env
}

// NormalizeArch maps Go's amd64 naming to the x86_64 form expected by
// the collection endpoint; every other value passes through unchanged.
func NormalizeArch(arch string) string {
	if arch == "amd64" {
		return "x86_64"
	}
	return arch
}
