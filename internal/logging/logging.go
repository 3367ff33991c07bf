package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup routes the standard logger to a rotating file under the data
// directory. The TUI owns the terminal, so nothing may log to stderr while
// it runs; without --debug all logging is discarded.
func Setup(dataDir string, debug bool) {
	if !debug {
		log.SetOutput(io.Discard)
		return
	}

	os.MkdirAll(dataDir, 0o755)
	log.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(dataDir, "total-recall.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
	})
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("debug logging enabled")
}
