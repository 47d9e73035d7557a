package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newZapTestLogger(t *testing.T, lvl zapcore.Level) (*ZapLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	enc := zap.NewProductionEncoderConfig()
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(&buf), lvl)
	return NewZapLogger(zap.New(core)), &buf
}

func TestZapLogger_WritesKeyValues(t *testing.T) {
	log, buf := newZapTestLogger(t, zapcore.DebugLevel)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", "two")
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)
	require.NoError(t, log.Sync())

	out := buf.String()
	for _, s := range []string{`"msg":"dbg"`, `"a":1`, `"msg":"inf"`, `"b":"two"`, `"level":"warn"`, `"level":"error"`, `"d":4`} {
		assert.Contains(t, out, s)
	}
}

func TestZapLogger_With_AddsFields(t *testing.T) {
	log, buf := newZapTestLogger(t, zapcore.InfoLevel)

	log.With("component", "client").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	assert.Contains(t, out, `"component":"client"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestZapLogger_RespectsLevel(t *testing.T) {
	log, buf := newZapTestLogger(t, zapcore.WarnLevel)

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
