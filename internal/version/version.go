// Package version reports the build version of the docd module.
package version

import (
	"runtime/debug"
	"strings"
)

// ModulePath is the canonical module path.
const ModulePath = "pkt.systems/docd"

// buildVersion is set via -ldflags "-X pkt.systems/docd/internal/version.buildVersion=...".
var buildVersion = ""

// Current returns the best available version string.
func Current() string {
	if strings.TrimSpace(buildVersion) != "" {
		return buildVersion
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := strings.TrimSpace(info.Main.Version); v != "" && v != "(devel)" {
			return v
		}
	}
	return "v0.0.0-unknown"
}
