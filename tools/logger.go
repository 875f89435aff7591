// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package tools

import (
	"log"
	"os"

	"github.com/gengteng/flv/support/logging"
)

// stderrLogger is a leveled logger over the standard log package.
type stderrLogger struct {
	l       *log.Logger
	verbose bool
}

// NewLogger returns a logger writing to STDERR. Debug output is suppressed
// unless verbose is set.
func NewLogger(verbose bool) logging.L {
	return &stderrLogger{
		l:       log.New(os.Stderr, "", log.LstdFlags),
		verbose: verbose,
	}
}

func (sl *stderrLogger) Errorf(fmt string, args ...interface{}) {
	sl.l.Printf("ERROR: "+fmt, args...)
}

func (sl *stderrLogger) Warnf(fmt string, args ...interface{}) {
	sl.l.Printf("WARN: "+fmt, args...)
}

func (sl *stderrLogger) Infof(fmt string, args ...interface{}) {
	sl.l.Printf("INFO: "+fmt, args...)
}

func (sl *stderrLogger) Debugf(fmt string, args ...interface{}) {
	if sl.verbose {
		sl.l.Printf("DEBUG: "+fmt, args...)
	}
}
