package main

import (
	"chi311/internal/cli"
	_ "chi311/internal/rules/checks"
)

// Populated at build time, e.g. -ldflags "-X main.version=v1.2.0".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	cli.Execute()
}
