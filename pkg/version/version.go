// Package version exposes the build version of the proceval binary.
package version

// version is overridden at build time via
// -ldflags "-X github.com/fractionworks/proceval/pkg/version.version=v1.2.3".
var version = "dev"

// GetVersion returns the build version string.
func GetVersion() string {
	return version
}
