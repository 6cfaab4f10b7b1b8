// Package logger provides centralized logging for the application.
// File: logger/logger.go
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ------------------- global loggers -------------------

// four logger levels accessible throughout the application
var (
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
	Debug *log.Logger
)

// defaultDir is used when LOG_DIR is unset.
const defaultDir = "./logs"

// ------------------- logger initialization -------------------

// InitLogger creates or reinitializes the logging system. It:
// - Ensures the log directory exists (LOG_DIR, defaults to ./logs).
// - Creates a timestamped log file in it.
// - Writes logs to both the file and stdout.
func InitLogger(dir string) error {
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	logFileName := filepath.Join(dir, time.Now().Format("2006-01-02_15-04-05")+".log")
	file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec
	if err != nil {
		return err
	}

	configure(io.MultiWriter(os.Stdout, file))
	return nil
}

// UseWriter points every level at w. Tests use it to capture or silence output.
func UseWriter(w io.Writer) {
	configure(w)
}

func configure(w io.Writer) {
	Info = log.New(w, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	Warn = log.New(w, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error = log.New(w, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	Debug = log.New(w, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// SetLogLevel adjusts the Debug logger's output depending on environment.
// Production discards debug output; every other environment keeps it.
func SetLogLevel(env string) {
	if env == "production" {
		Debug.SetOutput(io.Discard)
	}
}

// init gives every package usable loggers before main runs. If the file
// cannot be opened we fall back to stdout only.
func init() {
	if err := InitLogger(os.Getenv("LOG_DIR")); err != nil {
		configure(os.Stdout)
		Warn.Printf("logger: file logging disabled: %v", err)
	}
}
