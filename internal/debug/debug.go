// Package debug provides gated diagnostic tracing for the connection
// manager and session. Tracing is gated by an integer level, without
// requiring a logging framework dependency; the current call sites all
// log at level 1, and only on accept, dial, initialize, command and
// frame I/O failures.
package debug

import (
	"log"
	"os"
	"strconv"
	"sync"
)

var (
	once  sync.Once
	level int
)

// Level returns the configured trace level, read once from the AMS_DEBUG
// environment variable. An unset or unparsable value means level 0
// (silent).
func Level() int {
	once.Do(func() {
		v, err := strconv.Atoi(os.Getenv("AMS_DEBUG"))
		if err == nil {
			level = v
		}
	})
	return level
}

// Log writes a trace line via the standard logger when the configured
// level is at least the given level. Format/args follow log.Printf.
func Log(level int, format string, args ...any) {
	if Level() < level {
		return
	}
	log.Printf(format, args...)
}
