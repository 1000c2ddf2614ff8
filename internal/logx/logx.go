// Package logx provides the module's single structured logger instance,
// built the way other_examples/thelolagemann-gomeboy's MMU constructs its
// own logrus.Logger: a dedicated instance with a TextFormatter rather than
// the package-level global, so the core never fights a host application's
// own logrus configuration.
package logx

import "github.com/sirupsen/logrus"

// Log is the shared logger for console/cartridge/backup/CPU/DMA events.
// It defaults to WarnLevel so a host embedding the core gets silence on
// the happy path; Configure lets a frontend raise verbosity.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp: false,
	}
	return l
}

// Configure sets the logger's level from a simple string ("debug", "info",
// "warn", "error"); unrecognized levels are ignored.
func Configure(level string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		Log.SetLevel(lvl)
	}
}
