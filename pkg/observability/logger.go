package observability

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a text logger at the given level. Unknown levels fall
// back to info.
func NewLogger(level string, output io.Writer) *logrus.Logger {
	if output == nil {
		output = os.Stderr
	}

	logger := logrus.New()
	logger.SetOutput(output)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}
