package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes diagnostics to a rotating file under the dealcoach home dir.
// Guidance failures and guardrail hits are operator signals, not user-facing
// errors, so they only ever land here.
type Logger struct {
	logger        *log.Logger
	jsonMode      bool
	correlationID string
}

var (
	globalLogger *Logger
	once         sync.Once
)

func logPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dealcoach/dealcoach.log"
	}
	return filepath.Join(home, ".dealcoach", "dealcoach.log")
}

// GetLogger returns the singleton logger, creating it with a rotating file
// handler on first use.
func GetLogger() *Logger {
	once.Do(func() {
		logFile := &lumberjack.Logger{
			Filename:   logPath(),
			MaxSize:    15, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		globalLogger = &Logger{
			logger: log.New(logFile, "", log.LstdFlags),
		}
		if os.Getenv("DEALCOACH_JSON_LOGS") == "1" {
			globalLogger.jsonMode = true
		}
		if cid := os.Getenv("DEALCOACH_CORRELATION_ID"); cid != "" {
			globalLogger.correlationID = cid
		}
	})
	return globalLogger
}

// Close closes the logger resources.
func (w *Logger) Close() error {
	if logFile, ok := w.logger.Writer().(*lumberjack.Logger); ok {
		return logFile.Close()
	}
	return nil
}

// Log logs a general message only to the log file.
func (w *Logger) Log(message string) {
	if w.jsonMode {
		_ = json.NewEncoder(w.logger.Writer()).Encode(map[string]any{"level": "info", "msg": message, "cid": w.correlationID})
		return
	}
	w.logger.Print(message)
}

// Logf logs a formatted general message only to the log file.
func (w *Logger) Logf(format string, v ...interface{}) {
	if w.jsonMode {
		w.Log(fmt.Sprintf(format, v...))
		return
	}
	w.logger.Printf(format, v...)
}

func (w *Logger) LogError(err error) {
	if w.jsonMode {
		_ = json.NewEncoder(w.logger.Writer()).Encode(map[string]any{"level": "error", "error": err.Error(), "cid": w.correlationID})
		return
	}
	w.logger.Printf("Error: %s", err)
}

// LogGuardrailViolation records guidance that was discarded for contradicting
// a locked ladder. Repeated hits indicate a prompt defect worth surfacing to
// operators.
func (w *Logger) LogGuardrailViolation(sessionID string, walk int64, text string) {
	w.Logf("Guardrail violation - Session: %s, Walk: %d, Discarded: %.200s", sessionID, walk, text)
}

// LogLLMFailure records a live-model failure that was recovered by the
// deterministic fallback.
func (w *Logger) LogLLMFailure(sessionID string, err error) {
	w.Logf("LLM failure - Session: %s, Error: %v (fell back to deterministic guidance)", sessionID, err)
}
