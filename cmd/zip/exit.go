//go:build !windows

package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

const fatalExitCode = 0xff

func exit(err error) {
	if err != nil && !flags.WroteHelp(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(fatalExitCode)
	}
}
