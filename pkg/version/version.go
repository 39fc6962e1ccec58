// Package version holds the build version of mcwire.
package version

// Version information set by build flags
// Set using -ldflags "-X go.minekube.com/mcwire/pkg/version.version=v1.2.3"
var version = "unknown"

// String returns the build version.
func String() string {
	return version
}
