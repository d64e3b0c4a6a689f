package nullsink

import (
	"io"
	"log/slog"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestSink() *Sink {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
