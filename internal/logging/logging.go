// Package logging routes the standard logger through a level filter. Log
// lines carry their level as a bracketed prefix, e.g. "[INFO] scheduler: ...".
package logging

import (
	"io"
	"log"
	"strings"

	"github.com/hashicorp/logutils"
)

// Levels in increasing severity.
var Levels = []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"}

// NewFilter returns a writer that drops lines below level. Lines without a
// level prefix are always written.
func NewFilter(level string, w io.Writer) *logutils.LevelFilter {
	minLevel := logutils.LogLevel(strings.ToUpper(level))
	if minLevel == "" {
		minLevel = "INFO"
	}
	return &logutils.LevelFilter{
		Levels:   Levels,
		MinLevel: minLevel,
		Writer:   w,
	}
}

// Setup installs the level filter on the standard logger.
func Setup(level string, w io.Writer) {
	log.SetOutput(NewFilter(level, w))
}
