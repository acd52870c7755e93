// Package identity reports the hostname and build version of the running
// booklist binary.
package identity

import (
	"os"
	"runtime/debug"
)

// DefaultVersion is reported when the binary carries no module version.
const DefaultVersion = "0.1.0-dev"

// GetHostname returns the system hostname.
func GetHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "booklist"
	}
	return h
}

// GetVersion returns the main module version recorded at build time.
func GetVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return DefaultVersion
	}
	return versionFrom(info)
}

func versionFrom(info *debug.BuildInfo) string {
	v := info.Main.Version
	if v == "" || v == "(devel)" {
		return DefaultVersion
	}
	return v
}
