package main

import (
	"github.com/notera-io/notera-cli/internal/adapters/driving/cli"
)

// version is injected at build time:
//
//	go build -ldflags "-X main.version=v0.2.0" ./cmd/notera
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
