// Package constant holds the application identity and the platform names
// it knows how to launch helpers on.
package constant

const (
	// App names the config file, the env prefix and every data directory.
	App = "videowall"

	Version = "0.1.0"
)

// Build metadata injected through -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// runtime.GOOS values with dedicated install hints and browser launchers.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	Android = "android"
)

// Platforms lists the GOOS values above.
var Platforms = []string{Windows, Darwin, Linux, Android}
