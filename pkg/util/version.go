package util

import (
	"fmt"
	"runtime"
)

// set by ldflags at build time
var (
	// Version version
	Version = "unknown"
	// GitCommit git commit
	GitCommit = "unknown"
	// BuildTime build time
	BuildTime = "unknown"
)

// PrintVersion print version info
func PrintVersion() bool {
	fmt.Println("Version:   ", Version)
	fmt.Println("GitCommit: ", GitCommit)
	fmt.Println("BuildTime: ", BuildTime)
	fmt.Println("GoVersion: ", runtime.Version())
	return true
}
