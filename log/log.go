// Package log is a thin structured logging layer over zerolog shared by the
// library and the command line tool. It also routes the output of gnark's
// own logger so compilation and proving messages end up in the same stream.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	gnarklog "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
	LevelNone  = "none"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.Nop()
	logger.Store(&l)
}

// Init configures the global logger with the given level, writing human
// readable lines to w (os.Stderr when nil). gnark's logger is set to the
// same output.
func Init(level string, w io.Writer) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	if w == nil {
		w = os.Stderr
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: true}
	l := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	logger.Store(&l)
	if lvl == zerolog.Disabled {
		gnarklog.Disable()
	} else {
		gnarklog.Set(l)
	}
	return nil
}

// Logger returns the current logger.
func Logger() *zerolog.Logger { return logger.Load() }

func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case LevelDebug:
		return zerolog.DebugLevel, nil
	case LevelInfo, "":
		return zerolog.InfoLevel, nil
	case LevelWarn:
		return zerolog.WarnLevel, nil
	case LevelError:
		return zerolog.ErrorLevel, nil
	case LevelNone:
		return zerolog.Disabled, nil
	}
	return zerolog.NoLevel, fmt.Errorf("log: unknown level %q", level)
}

// Debugw logs msg with key value pairs at debug level.
func Debugw(msg string, keyvalues ...any) { write(Logger().Debug(), msg, keyvalues) }

// Infow logs msg with key value pairs at info level.
func Infow(msg string, keyvalues ...any) { write(Logger().Info(), msg, keyvalues) }

// Warnw logs msg with key value pairs at warn level.
func Warnw(msg string, keyvalues ...any) { write(Logger().Warn(), msg, keyvalues) }

// Errorw logs err with key value pairs at error level.
func Errorw(err error, msg string, keyvalues ...any) {
	write(Logger().Error().Err(err), msg, keyvalues)
}

func write(ev *zerolog.Event, msg string, keyvalues []any) {
	if ev == nil {
		return
	}
	for i := 0; i < len(keyvalues); i += 2 {
		key := fmt.Sprint(keyvalues[i])
		if i+1 == len(keyvalues) {
			ev = ev.Str(key, "MISSING")
			break
		}
		switch v := keyvalues[i+1].(type) {
		case time.Duration:
			ev = ev.Dur(key, v)
		case error:
			ev = ev.AnErr(key, v)
		case fmt.Stringer:
			ev = ev.Stringer(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}
