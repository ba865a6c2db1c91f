package simplelogger

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

// EnvVar names the environment variable holding the log file path.
const EnvVar = "ALIGN3_LOG_FILE"

var mu sync.Mutex

// Log is a minimal printf-style logger. It appends formatted output to the file
// specified by the ALIGN3_LOG_FILE environment variable.
//
// If ALIGN3_LOG_FILE is unset/empty or the path can't be opened as a file,
// Log is a no-op.
func Log(format string, args ...any) {
	write("", format, args...)
}

// Enabled reports whether Log would write anything. Callers use it to skip building expensive log arguments.
func Enabled() bool {
	return os.Getenv(EnvVar) != ""
}

// Logger is Log with a fixed prefix on every line (ex: the run ID of a compare). The zero value has no prefix.
type Logger struct {
	prefix string
}

// New returns a Logger that prefixes each line with "[prefix] ".
func New(prefix string) Logger {
	if prefix == "" {
		return Logger{}
	}
	return Logger{prefix: "[" + prefix + "] "}
}

// With returns a Logger whose prefix also carries tag.
func (l Logger) With(tag string) Logger {
	return Logger{prefix: l.prefix + "[" + tag + "] "}
}

// Log writes one line like the package-level Log, after l's prefix.
func (l Logger) Log(format string, args ...any) {
	write(l.prefix, format, args...)
}

func write(prefix, format string, args ...any) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return
	}

	// Serialize open/write/close to reduce interleaving within a single process.
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	var b bytes.Buffer
	b.WriteString(prefix)
	_, _ = fmt.Fprintf(&b, format, args...)
	if b.Len() == 0 || b.Bytes()[b.Len()-1] != '\n' {
		_ = b.WriteByte('\n')
	}
	_, _ = f.Write(b.Bytes())
}
