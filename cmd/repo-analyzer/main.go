package main

import (
	"os"

	"github.com/yuyudhan/repo-analyzer/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
