package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/cluttrdev/cli"
)

func newExamplesCmd() *cli.Command {
	fs := flag.NewFlagSet("spcu examples", flag.ExitOnError)

	return &cli.Command{
		Name:       "examples",
		ShortHelp:  "Show usage examples for all commands.",
		ShortUsage: "spcu examples",
		Flags:      fs,
		Exec: func(ctx context.Context, args []string) error {
			fmt.Print(examplesText)
			return nil
		},
	}
}

const examplesText = `Usage Examples:

  Get the latest version:
    spcu latest
    spcu latest -C common -V 8.4

  Check for updates:
    spcu check-update -v 8.4.10

  Download a binary:
    spcu download -o php.tar.gz
    spcu download -C bulk -V 8.4 -x -o ./php

  List available versions:
    spcu list
    spcu list -C common -V 8.4

  Manage cache:
    spcu cache list
    spcu cache clear
    spcu cache clear -C bulk
    spcu cache path

  Skip cache on any command:
    spcu latest --no-cache
`
