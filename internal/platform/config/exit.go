package config

import (
	"fmt"
	"os"
)

// Exitf reports a fatal startup problem on stderr and exits with code 1.
// main uses it for configuration failures that happen before logging is set
// up.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
