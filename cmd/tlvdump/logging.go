// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"os"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("")

var stderrFormat = logging.MustStringFormatter(
	`%{color}tlvdump ▶ %{message}%{color:reset}`,
)

// setupLogging configures the package-level logger to write leveled,
// colored output to stderr.
func setupLogging(level logging.Level) *logging.Logger {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	logging.SetFormatter(stderrFormat)
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)
	return log
}
