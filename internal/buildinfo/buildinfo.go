// Package buildinfo carries version stamps injected with -ldflags, e.g.
//
//	go build -ldflags "-X supermini/internal/buildinfo.Version=v0.3.0"
package buildinfo

import "log/slog"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the version, falling back to the commit.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// Title suffixes name with the short build id, for window titles.
func Title(name string) string { return name + " (" + Short() + ")" }

// Attr groups the stamps for a startup log line.
func Attr() slog.Attr {
	return slog.Group("build",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("date", Date),
	)
}
