// Package version provides information about the build version of the service.
package version

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// -ldflags "-X 'contactgate/internal/core/version.version=v0.1.0'
	// -X 'contactgate/internal/core/version.commit=abcd' -X 'contactgate/internal/core/version.date=2025-09-02'"
	return BuildInfo{
		Service: Service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// Service is the name reported by the meta endpoints and the logger
const Service = "contactgate-api"

// UserAgent is sent on every outbound call
func UserAgent() string { return Service + "/" + version }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
