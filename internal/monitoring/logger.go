package monitoring

import (
	"log"
	"os"
)

// Logf prints command-line status lines: files written, runs recorded,
// warnings. SetLogger redirects or mutes it.
var Logf func(format string, v ...interface{}) = log.Printf

// exit ends the process after Fatalf. Tests swap it out.
var exit = os.Exit

// Fatalf reports a command-line failure through Logf and exits with status 1.
func Fatalf(format string, v ...interface{}) {
	Logf(format, v...)
	exit(1)
}

// SetLogger replaces Logf. A nil f mutes status output.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	Logf = f
}
