// Package logger wraps zap.Logger behind the small named-level API this
// repo's callers use, so call sites read like the teacher's global Info/
// Warn/Error helpers without the global mutable singleton the teacher used
// to back them: a Logger is constructed once at process start and handed to
// every component that needs one.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger is a thin, leveled facade over *zap.Logger.
type Logger struct {
	z *zap.Logger
}

// New builds a production-configured Logger. debug enables development-mode
// encoding (human-readable, with caller info) instead of the default JSON
// production encoder.
func New(debug bool) (*Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: build zap logger: %w", err)
	}
	return &Logger{z: z}, nil
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// Sync flushes any buffered log entries. Call it before process exit.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

// With returns a child Logger carrying the given structured fields on every
// subsequent call.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

// Fatal logs at fatal level then terminates the process, mirroring the
// teacher's Fatal helper.
func (l *Logger) Fatal(msg string, fields ...zap.Field) { l.z.Fatal(msg, fields...) }

// Banner prints the startup banner the teacher printed on boot, kept as a
// plain stdout write since it is presentation, not a log record.
func Banner(title, version string) {
	const banner = `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║   ██████╗ ██╗███████╗████████╗                           ║
║   ██╔══██╗██║██╔════╝╚══██╔══╝                           ║
║   ██████╔╝██║█████╗     ██║                              ║
║   ██╔══██╗██║██╔══╝     ██║                              ║
║   ██║  ██║██║██║        ██║                              ║
║   ╚═╝  ╚═╝╚═╝╚═╝        ╚═╝                              ║
║                                                           ║
║              %-37s║
║                    Version %-7s                      ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, title, version)
}
