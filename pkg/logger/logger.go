package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	Development = "development"
	Production  = "production"
)

var DefaultLoggerOpts = &LoggerOpts{
	Environment: Development,
}

type LoggerOpts struct {
	Environment string
	Debug       bool
	Output      io.Writer
}

func safe(opts ...LoggerOpts) *LoggerOpts {
	if len(opts) == 0 {
		return DefaultLoggerOpts
	}
	return &opts[0]
}

// Init configures the global logger. Production logs JSON at info level,
// anything else gets a console writer with caller info at debug level.
func Init(opts ...LoggerOpts) {
	o := safe(opts...)
	out := o.Output
	if out == nil {
		out = os.Stdout
	}

	if o.Environment == Production {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
		if o.Debug {
			log.Logger = log.Logger.Level(zerolog.DebugLevel)
		}
		return
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Caller().Logger()
	log.Logger = log.Logger.Level(zerolog.DebugLevel)
}

// Component returns a logger tagged with the given component name
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
