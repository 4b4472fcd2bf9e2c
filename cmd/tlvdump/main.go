// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

// Command tlvdump prints a field-by-field trace of a tagtape-encoded file:
// one line per header giving its wire class, tag, and payload, recursing
// into REPEAT sequences. It has no schema of its own — it is a debugging
// aid for looking at a buffer nobody has handed a Message implementation
// for, not a replacement for the tlv package's structured decoder.
package main

import (
	"fmt"
	"os"

	"github.com/op/go-logging"
	"github.com/urfave/cli"

	"github.com/tagtape/tagtape"
)

func dumpCommand(c *cli.Context) error {
	level := logging.INFO
	if c.Bool("verbose") {
		level = logging.DEBUG
	}
	setupLogging(level)

	if c.NArg() != 1 {
		return cli.NewExitError("tlvdump: exactly one file argument is required", 2)
	}
	path := c.Args().Get(0)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Errorf("reading %s: %v", path, err)
		return cli.NewExitError(err.Error(), 1)
	}
	log.Debugf("read %d bytes from %s", len(data), path)

	r := tagtape.NewReader(data)
	if err := dumpAll(r, os.Stdout); err != nil {
		log.Errorf("dump failed: %v", err)
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "tlvdump"
	app.Usage = "print a field-by-field trace of a tagtape-encoded buffer"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "log decode progress at debug level",
		},
	}
	app.Action = dumpCommand

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
