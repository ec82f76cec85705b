package logger

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns the application logger. Development gets a console writer,
// anything else stays structured JSON.
func New(environment string) zerolog.Logger {
	if environment == "development" {
		return log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
