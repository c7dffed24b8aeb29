// Package log writes diagnostics of an unattended kiosk to daily files. Nothing is written unless logs.write is set.
package log

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/carekiosk/kiosk/constant"
	"github.com/carekiosk/kiosk/filesystem"
	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/where"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const dayLayout = "2006-01-02"

var (
	enabled bool
	entry   = logrus.NewEntry(discardLogger())
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// FileName is the log file of day t.
func FileName(t time.Time) string {
	return t.Format(dayLayout) + ".log"
}

// Setup opens today's log file, applies format and level, and deletes files past logs.keep_days.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		entry = logrus.NewEntry(discardLogger())
		return nil
	}

	dir := where.Logs()
	now := time.Now()
	Prune(dir, viper.GetInt(key.LogsKeepDays), now)

	f, err := filesystem.API().OpenFile(filepath.Join(dir, FileName(now)), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		enabled = false
		return err
	}

	logger := logrus.New()
	logger.SetOutput(f)
	if viper.GetBool(key.LogsJson) {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	entry = logger.WithField("version", constant.Version)
	return nil
}

// Prune removes daily log files in dir older than keepDays. keepDays <= 0 keeps everything.
func Prune(dir string, keepDays int, now time.Time) {
	if keepDays <= 0 {
		return
	}

	files, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return
	}

	cutoff := now.AddDate(0, 0, -keepDays).Format(dayLayout)
	for _, f := range files {
		day, ok := strings.CutSuffix(f.Name(), ".log")
		if !ok || f.IsDir() {
			continue
		}
		if _, err := time.Parse(dayLayout, day); err != nil {
			continue
		}
		// ISO dates compare lexically.
		if day < cutoff {
			_ = filesystem.API().Remove(filepath.Join(dir, f.Name()))
		}
	}
}

// Enabled reports whether records reach a file.
func Enabled() bool {
	return enabled
}

// WithFields returns an entry carrying structured fields. It writes nowhere while logging is disabled.
func WithFields(fields map[string]any) *logrus.Entry {
	return entry.WithFields(fields)
}

func Error(args ...any)                 { entry.Error(args...) }
func Errorf(format string, args ...any) { entry.Errorf(format, args...) }
func Warn(args ...any)                  { entry.Warn(args...) }
func Warnf(format string, args ...any)  { entry.Warnf(format, args...) }
func Info(args ...any)                  { entry.Info(args...) }
func Infof(format string, args ...any)  { entry.Infof(format, args...) }
func Debug(args ...any)                 { entry.Debug(args...) }
func Debugf(format string, args ...any) { entry.Debugf(format, args...) }
