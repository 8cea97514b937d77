package replay

import (
	"context"
	"time"

	"github.com/vinayprograms/mafiareplay/internal/gamelog"
	"github.com/vinayprograms/mafiareplay/internal/logging"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vinayprograms/mafiareplay/internal/replay"

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// Loader reads game logs and compiles them for a viewing mode.
type Loader struct {
	logger *logging.Logger
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Loader{logger: logger.WithComponent("loader")}
}

// Load reads and parses the log at path.
func (l *Loader) Load(ctx context.Context, path string) (*gamelog.Log, error) {
	_, span := tracer().Start(ctx, "log.load")
	defer span.End()
	span.SetAttributes(attribute.String("log.path", path))

	start := time.Now()
	log, _, err := gamelog.LoadFile(path)
	if err != nil {
		span.RecordError(err)
		l.logger.Error("log_load_failed", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("log.players", len(log.Players)),
		attribute.Int("log.events", len(log.Events)),
	)
	l.logger.LogLoaded(path, len(log.Players), len(log.Events), time.Since(start))
	return log, nil
}

// Compile builds the timeline of log for mode.
func (l *Loader) Compile(ctx context.Context, log *gamelog.Log, mode timeline.Mode) *timeline.Timeline {
	_, span := tracer().Start(ctx, "timeline.compile")
	defer span.End()

	tl := timeline.Compile(log, mode)

	span.SetAttributes(
		attribute.String("timeline.mode", string(mode)),
		attribute.Int("timeline.events", len(tl.Events)),
		attribute.Int("timeline.beats", tl.Len()),
		attribute.Int("timeline.phases", len(tl.PhaseIndex.Phases())),
	)
	l.logger.TimelineCompiled(string(mode), len(tl.Events), tl.Len(), len(tl.PhaseIndex.Phases()))
	return tl
}

// Open loads the log at path and compiles it for mode.
func (l *Loader) Open(ctx context.Context, path string, mode timeline.Mode) (*timeline.Timeline, error) {
	log, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return l.Compile(ctx, log, mode), nil
}
