package main

import (
	"os"

	"github.com/kabirdoha/dohakit/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(cmd.Execute(cmd.Metadata{Version: version, Commit: commit, Date: date}))
}
