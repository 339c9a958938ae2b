// Package blog is a thin structured-logging wrapper used at the few
// call sites in this module that need to log and continue (never to
// abort a caller's operation).
package blog

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

func get() zerolog.Logger {
	once.Do(func() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger()
	})
	return logger
}

// Warn logs msg with the given key/value pairs (alternating key, value).
// Kept deliberately small: this package is not meant to grow into a
// general logging facade.
func Warn(msg string, kv ...any) {
	ev := get().Warn()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}
