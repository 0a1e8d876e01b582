package logging

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	t.Run("creates console logger", func(t *testing.T) {
		p, err := NewProvider(Config{Level: "debug", Format: "console"})
		require.NoError(t, err)

		logger := p.GetLogger("editable.test")
		require.NotNil(t, logger)

		child := logger.WithFields(map[string]any{"widget": "w1"})
		require.NotNil(t, child)

		assert.NotPanics(t, func() { child.Debug("editable.test.ready") })
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		_, err := NewProvider(Config{Format: "xml"})
		assert.Error(t, err)
	})

	t.Run("nil provider yields noop", func(t *testing.T) {
		var p *Provider
		assert.Equal(t, NoOp(), p.GetLogger("x"))
	})
}

func TestAdapter(t *testing.T) {
	t.Run("delegates levels", func(t *testing.T) {
		stub := &stubLogger{}
		adapted := Wrap(stub)

		adapted.Trace("trace", "key", "value")
		adapted.Debug("debug")
		adapted.Info("info")
		adapted.Warn("warn")
		adapted.Error("error")

		assert.Equal(t, []string{"trace", "debug", "info", "warn", "error"}, stub.calls)
	})

	t.Run("clones fields", func(t *testing.T) {
		stub := &stubLogger{}
		adapted := Wrap(stub)

		fields := map[string]any{"widget": "w1"}
		adapted.WithFields(fields)
		fields["widget"] = "w2"

		require.Len(t, stub.fields, 1)
		assert.Equal(t, "w1", stub.fields[0]["widget"])
	})

	t.Run("falls back to sorted args", func(t *testing.T) {
		plain := &plainLogger{}
		adapted := Wrap(plain).WithFields(map[string]any{"b": 2, "a": 1})

		adapted.Info("msg", "k", "v")

		assert.Equal(t, []any{"k", "v", "a", 1, "b", 2}, plain.args)
	})
}

type stubLogger struct {
	plainLogger
	fields []map[string]any
}

var _ glog.Logger = (*stubLogger)(nil)
var _ glog.FieldsLogger = (*stubLogger)(nil)

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	s.fields = append(s.fields, fields)
	return s
}

// plainLogger implements glog.Logger without field support.
type plainLogger struct {
	calls []string
	args  []any
}

var _ glog.Logger = (*plainLogger)(nil)

func (s *plainLogger) Trace(_ string, args ...any) { s.record("trace", args) }
func (s *plainLogger) Debug(_ string, args ...any) { s.record("debug", args) }
func (s *plainLogger) Info(_ string, args ...any)  { s.record("info", args) }
func (s *plainLogger) Warn(_ string, args ...any)  { s.record("warn", args) }
func (s *plainLogger) Error(_ string, args ...any) { s.record("error", args) }
func (s *plainLogger) Fatal(_ string, args ...any) { s.record("fatal", args) }

func (s *plainLogger) WithContext(context.Context) glog.Logger { return s }

func (s *plainLogger) record(level string, args []any) {
	s.calls = append(s.calls, level)
	s.args = args
}
