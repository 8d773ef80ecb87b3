// Package logger provides namespaced debug logging controlled by the DEBUG
// environment variable, in the style of the npm debug package.
package logger

import (
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aihub-tools/aihub-export/pkg/tty"
)

// Logger writes debug lines for a single namespace such as "workflow:nodes".
type Logger struct {
	namespace string
	enabled   bool
	color     string

	mu      sync.Mutex
	lastLog time.Time
}

var (
	debugEnv    = os.Getenv("DEBUG")
	debugColors = os.Getenv("DEBUG_COLORS") != "0"
	isTTY       = tty.IsStderrTerminal()

	// output is swapped by tests.
	output io.Writer = os.Stderr

	palette = []string{
		"\033[38;5;33m",
		"\033[38;5;35m",
		"\033[38;5;166m",
		"\033[38;5;125m",
		"\033[38;5;37m",
		"\033[38;5;161m",
		"\033[38;5;136m",
		"\033[38;5;63m",
	}
)

const colorReset = "\033[0m"

// New creates a Logger for namespace. Whether it is enabled is decided once,
// from DEBUG:
//
//	DEBUG=*                  all namespaces
//	DEBUG=workflow:*         every namespace starting with "workflow:"
//	DEBUG=cli:export,graph:* a list of patterns
//	DEBUG=*,-metafield:*     exclusions win over inclusions
func New(namespace string) *Logger {
	return &Logger{
		namespace: namespace,
		enabled:   parsePatterns(debugEnv).matches(namespace),
		color:     colorFor(namespace),
		lastLog:   time.Now(),
	}
}

// Enabled reports whether the logger prints anything.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Printf formats and prints a line when the logger is enabled.
func (l *Logger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprintf(format, args...))
}

// Print prints its arguments as a line when the logger is enabled.
func (l *Logger) Print(args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprint(args...))
}

func (l *Logger) write(message string) {
	l.mu.Lock()
	now := time.Now()
	diff := now.Sub(l.lastLog)
	l.lastLog = now
	l.mu.Unlock()

	name := l.namespace
	if l.color != "" {
		name = l.color + name + colorReset
	}
	fmt.Fprintf(output, "%s %s +%s\n", name, message, formatDiff(diff))
}

// formatDiff renders the time since the previous line like the debug package: 12ms, 3s, 2m.
func formatDiff(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	default:
		return fmt.Sprintf("%.1fh", d.Hours())
	}
}

func colorFor(namespace string) string {
	if !debugColors || !isTTY {
		return ""
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(namespace))
	return palette[h.Sum32()%uint32(len(palette))]
}

type patternSet struct {
	include []string
	exclude []string
}

func parsePatterns(env string) patternSet {
	var set patternSet
	for _, p := range strings.Split(env, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(p, "-"); ok {
			set.exclude = append(set.exclude, rest)
			continue
		}
		set.include = append(set.include, p)
	}
	return set
}

func (s patternSet) matches(namespace string) bool {
	for _, p := range s.exclude {
		if matchPattern(namespace, p) {
			return false
		}
	}
	for _, p := range s.include {
		if matchPattern(namespace, p) {
			return true
		}
	}
	return false
}

// matchPattern supports a single "*" wildcard at the start, end or middle.
func matchPattern(namespace, pattern string) bool {
	if pattern == "*" || pattern == namespace {
		return true
	}
	prefix, suffix, found := strings.Cut(pattern, "*")
	if !found {
		return false
	}
	return len(namespace) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(namespace, prefix) &&
		strings.HasSuffix(namespace, suffix)
}
