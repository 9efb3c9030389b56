// Package log provides the package-level leveled logger used across
// gpkggeom. It mirrors the call-site contract of
// github.com/go-spatial/tegola/internal/log (Debug/Debugf/Info/Warn/Error/
// Errorf gated by a package level), without pulling in tegola itself.
package log

import (
	"log"
	"os"
)

// Level controls which messages are written.
type Level int

const (
	// ERROR only logs error messages.
	ERROR Level = iota
	// WARN logs warnings and errors.
	WARN
	// INFO logs info, warnings, and errors.
	INFO
	// DEBUG logs everything.
	DEBUG
)

var std = log.New(os.Stderr, "", log.LstdFlags)

// current is the active log level. Defaults to INFO, matching the
// teacher's default (tegola only turns on Debug via config).
var current = INFO

// SetLevel changes the active log level.
func SetLevel(l Level) { current = l }

func Debug(v ...interface{}) {
	if current >= DEBUG {
		std.Println(append([]interface{}{"DEBUG"}, v...)...)
	}
}

func Debugf(format string, v ...interface{}) {
	if current >= DEBUG {
		std.Printf("DEBUG "+format, v...)
	}
}

func Info(v ...interface{}) {
	if current >= INFO {
		std.Println(append([]interface{}{"INFO"}, v...)...)
	}
}

func Infof(format string, v ...interface{}) {
	if current >= INFO {
		std.Printf("INFO "+format, v...)
	}
}

func Warn(v ...interface{}) {
	if current >= WARN {
		std.Println(append([]interface{}{"WARN"}, v...)...)
	}
}

func Warnf(format string, v ...interface{}) {
	if current >= WARN {
		std.Printf("WARN "+format, v...)
	}
}

func Error(v ...interface{}) {
	std.Println(append([]interface{}{"ERROR"}, v...)...)
}

func Errorf(format string, v ...interface{}) {
	std.Printf("ERROR "+format, v...)
}
