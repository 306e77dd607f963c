package modeladapter

import (
	"context"
	"time"

	"github.com/germanamz/modelprobe/pkg/chats/message"
	"github.com/sirupsen/logrus"
)

var (
	_ Completer   = (*LoggingCompleter)(nil)
	_ ModelLister = (*LoggingCompleter)(nil)
)

// LoggingCompleter wraps a Completer and logs each call's start, duration
// and outcome. ListModels is forwarded when the wrapped value implements
// ModelLister.
type LoggingCompleter struct {
	inner Completer
	log   logrus.FieldLogger
	model string
}

// NewLoggingCompleter wraps inner. model is only used as a log field.
func NewLoggingCompleter(inner Completer, log logrus.FieldLogger, model string) *LoggingCompleter {
	return &LoggingCompleter{inner: inner, log: log, model: model}
}

// Unwrap returns the wrapped completer. Callers use it to reach the usage
// and rate limit state of the adapter underneath.
func (l *LoggingCompleter) Unwrap() Completer { return l.inner }

// Complete forwards to the wrapped completer.
func (l *LoggingCompleter) Complete(ctx context.Context, msgs []message.Message) (message.Message, error) {
	entry := l.entry(ctx).WithField("messages", len(msgs))
	entry.Debug("completion started")

	start := time.Now()
	reply, err := l.inner.Complete(ctx, msgs)
	entry = entry.WithField("duration", time.Since(start))

	if err != nil {
		entry.WithError(err).Debug("completion failed")
		return reply, err
	}

	entry.WithFields(logrus.Fields{
		"finish_reason": reply.FinishReason,
		"reply_chars":   len(reply.Text),
	}).Debug("completion finished")

	return reply, nil
}

// ListModels forwards to the wrapped value when it can list models.
func (l *LoggingCompleter) ListModels(ctx context.Context) ([]ModelInfo, error) {
	lister, ok := l.inner.(ModelLister)
	if !ok {
		return nil, ErrListingUnsupported
	}

	entry := l.entry(ctx)
	start := time.Now()
	models, err := lister.ListModels(ctx)
	entry = entry.WithField("duration", time.Since(start))

	if err != nil {
		entry.WithError(err).Debug("model listing failed")
		return nil, err
	}

	entry.WithField("count", len(models)).Debug("model listing finished")

	return models, nil
}

func (l *LoggingCompleter) entry(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{"model": l.model}
	if id := RequestIDFrom(ctx); id != "" {
		fields["request_id"] = id
	}
	return l.log.WithFields(fields)
}
