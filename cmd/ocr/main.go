package main

import (
	"github.com/MeKo-Tech/pogo/cmd/ocr/cmd"
	"github.com/MeKo-Tech/pogo/internal/version"
)

// version, commit and date are set via -ldflags -X at release build time;
// ldflags can only target vars in package main, so they're forwarded into
// the version package for anything that needs the build identity.
var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

func main() {
	version.Set(buildVersion, buildCommit, buildDate)
	cmd.Execute()
}