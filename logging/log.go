// Package logging holds the process-wide logrus logger shared by the
// orchestrator, the transports and the devctl command.
package logging

import (
	"io"
	"os"

	"github.com/nanoncore/nano-devctl/model"
	"github.com/sirupsen/logrus"
)

// Logger is the global logger instance
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLevel sets the logging level by name.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetOutput sets the log output destination
func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// SetJSONFormat enables JSON log format
func SetJSONFormat() {
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// Configure applies a level and a format ("text" or "json").
func Configure(level, format string) error {
	if err := SetLevel(level); err != nil {
		return err
	}
	if format == "json" {
		SetJSONFormat()
	}
	return nil
}

// Entry returns a bare entry on the global logger.
func Entry() *logrus.Entry {
	return logrus.NewEntry(Logger)
}

// WithDevice returns a logger with device context
func WithDevice(dev *model.Device) *logrus.Entry {
	if dev == nil {
		return Entry()
	}
	fields := logrus.Fields{"device_id": dev.ID, "device_type": int(dev.Type)}
	if dev.IP != "" {
		fields["device"] = dev.IP
	}
	return Logger.WithFields(fields)
}

// WithOperation returns a logger with operation context
func WithOperation(capability, operation string) *logrus.Entry {
	return Logger.WithFields(logrus.Fields{"capability": capability, "operation": operation})
}
