package main

import (
	"os"

	"github.com/2caleb/gold-charp-investments-sub003/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
