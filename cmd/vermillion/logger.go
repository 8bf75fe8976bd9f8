// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vermillion-mc/vermillion/internal/config"
)

// newLogger builds the single logger handed to every build component.
func newLogger(w io.Writer, level config.LogLevel) *log.Logger {
	lvl, err := log.ParseLevel(level.String())
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          config.AppName,
		Level:           lvl,
		ReportTimestamp: false,
	})
}
