package publishers

import "github.com/Adda-Baaj/vidsum/internal/logger"

// Logger is the application logger; publishers log delivery results through it.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}
