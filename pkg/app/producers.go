package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/adapters"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
)

// emitter writes one message at the given level through some logging front end.
type emitter func(level logging.LogLevel, msg string, n int)

var sampleMessages = []string{
	"cache refreshed",
	"request served",
	"slow response from upstream",
	"retrying connection",
	"worker idle",
	"failed to parse payload",
	"config reloaded",
}

// emitters returns one front end per facade so the demo exercises all of them.
func emitters(store *logging.Store, logger *logging.Logger) []emitter {
	sl := slog.New(adapters.NewSlogHandler(store, nil)).With("facade", "slog")
	zl := zap.New(adapters.NewZapCore(store, zapcore.InfoLevel)).Named("zap")
	zr := zerolog.New(adapters.NewZerologWriter(store)).With().Str("facade", "zerolog").Logger()

	return []emitter{
		func(level logging.LogLevel, msg string, n int) {
			switch level {
			case logging.LevelError:
				logger.Errorf("%s (#%d)", msg, n)
			case logging.LevelWarning:
				logger.Warnf("%s (#%d)", msg, n)
			default:
				logger.Infof("%s (#%d)", msg, n)
			}
		},
		func(level logging.LogLevel, msg string, n int) {
			switch level {
			case logging.LevelError:
				sl.Error(msg, "n", n, "err", errors.New("boom"))
			case logging.LevelWarning:
				sl.Warn(msg, "n", n)
			default:
				sl.Info(msg, "n", n)
			}
		},
		func(level logging.LogLevel, msg string, n int) {
			switch level {
			case logging.LevelError:
				zl.Error(msg, zap.Int("n", n), zap.Error(errors.New("boom")))
			case logging.LevelWarning:
				zl.Warn(msg, zap.Int("n", n))
			default:
				zl.Info(msg, zap.Int("n", n))
			}
		},
		func(level logging.LogLevel, msg string, n int) {
			switch level {
			case logging.LevelError:
				zr.Error().Int("n", n).Err(errors.New("boom")).Msg(msg)
			case logging.LevelWarning:
				zr.Warn().Int("n", n).Msg(msg)
			default:
				zr.Info().Int("n", n).Msg(msg)
			}
		},
	}
}

func randomLevel() logging.LogLevel {
	switch r := rand.IntN(100); {
	case r < 5:
		return logging.LevelError
	case r < 20:
		return logging.LevelWarning
	default:
		return logging.LevelInfo
	}
}

// runProducer emits rate messages per second until ctx is done.
func runProducer(ctx context.Context, id int, rate int, emit emitter) {
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()
	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msg := fmt.Sprintf("producer %d: %s", id, sampleMessages[rand.IntN(len(sampleMessages))])
			emit(randomLevel(), msg, n)
		}
	}
}
