// Package buildinfo exposes the version stamp injected at build time:
//
//	go build -ldflags "-X 'github.com/m3rciful/newsbot/buildinfo.Version=v0.3.0' \
//	  -X 'github.com/m3rciful/newsbot/buildinfo.Commit=$(git rev-parse --short HEAD)' \
//	  -X 'github.com/m3rciful/newsbot/buildinfo.Date=$(date -u +%FT%TZ)'"
//
// Unstamped binaries report a dev build.
package buildinfo

var (
	Version = "dev"
	Commit  = "local"
	Date    = ""
)
