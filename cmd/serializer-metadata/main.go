package main

import (
	"os"

	"github.com/goliatone/go-serializer-metadata/internal/cli"
)

var version = "dev"

func main() {
	cli.Version = version
	os.Exit(cli.Execute(os.Stderr))
}
