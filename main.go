package main

import (
	"fmt"
	"os"

	"sleepywoodpecker/rp-goes-audio/cmd"
	"sleepywoodpecker/rp-goes-audio/internal/conf"
)

func main() {
	settings := &conf.Settings{}

	if err := cmd.RootCommand(settings).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
