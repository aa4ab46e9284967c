package logging

import (
	"fmt"
	"os"
)

// These ease call sites that want stdlib-"log"-style helpers without
// picking an explicit level.

func (log *Logger) Fatalf(format string, v ...interface{}) {
	log.Log(Error, 1, format, v...)
	os.Exit(1)
}

func (log *Logger) Print(v ...interface{}) {
	log.Log(Info, 1, fmt.Sprint(v...))
}

func (log *Logger) Printf(format string, v ...interface{}) {
	log.Log(Info, 1, format, v...)
}
