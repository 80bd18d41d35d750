package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// newBufferLogger builds a Logger writing JSON entries into a buffer.
func newBufferLogger() (Logger, *zaptest.Buffer) {
	buf := &zaptest.Buffer{}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), buf, zapcore.DebugLevel)
	return NewLoggerFromCore(core), buf
}

func TestNewLoggerJSON(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLoggerConsole(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLoggerDefaults(t *testing.T) {
	// Empty config gets info/json/stdout defaults applied.
	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestLevelsWrite(t *testing.T) {
	l, buf := newBufferLogger()

	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")

	out := buf.String()
	assert.Contains(t, out, "debug msg")
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, "warn msg")
	assert.Contains(t, out, `"level":"error"`)
}

func TestWithAddsFields(t *testing.T) {
	l, buf := newBufferLogger()
	l.With(String("contract_id", "c-1"), Int("clauses", 7)).Info("extracted")

	out := buf.String()
	assert.Contains(t, out, `"contract_id":"c-1"`)
	assert.Contains(t, out, `"clauses":7`)
}

func TestNamed(t *testing.T) {
	l, buf := newBufferLogger()
	l.Named("conflict").Info("scan complete")
	assert.Contains(t, buf.String(), `"logger":"conflict"`)
}

func TestFieldConstructors(t *testing.T) {
	l, buf := newBufferLogger()
	l.Info("fields",
		Float64("score", 0.42),
		Bool("degraded", true),
		Duration("elapsed", 250*time.Millisecond),
		Err(errors.New("boom")),
		Any("raw", []int{1, 2}),
	)

	out := buf.String()
	assert.Contains(t, out, `"score":0.42`)
	assert.Contains(t, out, `"degraded":true`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestErrNil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
	assert.NoError(t, l.Sync())
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l := NewNopLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	// nil is ignored
	SetDefault(nil)
	assert.Equal(t, l, Default())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}
