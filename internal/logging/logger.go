package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger writes tagged, leveled log lines. Messages more verbose than
// Level are dropped. Derived loggers (WithTag) share the output mutex
// of their parent so lines from different goroutines never interleave.
type Logger struct {
	Level

	// Tag classifies and filters log messages, e.g. "rtsp", "mount", "rtp".
	Tag string

	out io.Writer
	mu  *sync.Mutex
}

// DefaultLogger writes to stderr at the level selected by RTSPD_LOGLEVEL.
var DefaultLogger = &Logger{defaultLevel, "", os.Stderr, new(sync.Mutex)}

// SetDestination overrides where this logger writes.
func (log *Logger) SetDestination(out io.Writer) {
	log.out = out
}

// WithTag derives a new logger tagged with the given name, honoring any
// RTSPD_LOGLEVEL directive for that tag.
func (log *Logger) WithTag(tag string) *Logger {
	return &Logger{determineLevel(tag, log.Level), tag, log.out, log.mu}
}

type buffer []byte

func (b *buffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

func (b *buffer) writeByte(c byte) {
	*b = append(*b, c)
}

var bufPool = sync.Pool{
	New: func() interface{} {
		return make(buffer, 256)
	},
}

// Log writes a message at the given level, attributing it to the file
// and line 'calldepth' frames up the call stack.
func (log *Logger) Log(level Level, calldepth int, format string, a ...interface{}) {
	if level > log.Level {
		return
	}

	buf := bufPool.Get().(buffer)
	defer bufPool.Put(buf[:0])

	buf.Write(ansiWhite)
	buf = time.Now().AppendFormat(buf, timestampFormat)
	fmt.Fprintf(&buf, " %s%c/%s", level.color(), level.letter(), log.Tag)

	_, file, line, ok := runtime.Caller(calldepth + 1)
	if !ok {
		file = "?"
	}
	fmt.Fprintf(&buf, "[%s:%d] %s", filepath.Base(file), line, ansiReset)
	fmt.Fprintf(&buf, format, a...)

	if n := len(format); n == 0 || format[n-1] != '\n' {
		buf.writeByte('\n')
	}

	log.mu.Lock()
	log.out.Write(buf)
	log.mu.Unlock()
}

func (log *Logger) Error(format string, a ...interface{}) { log.Log(Error, 1, format, a...) }
func (log *Logger) Warn(format string, a ...interface{})  { log.Log(Warn, 1, format, a...) }
func (log *Logger) Info(format string, a ...interface{})  { log.Log(Info, 1, format, a...) }
func (log *Logger) Debug(format string, a ...interface{}) { log.Log(Debug, 1, format, a...) }
func (log *Logger) Trace(n int, format string, a ...interface{}) {
	log.Log(Level(n), 1, format, a...)
}
