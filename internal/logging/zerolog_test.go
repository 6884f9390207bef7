package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestZerolog(t *testing.T) (*ZerologLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)
	return NewZerologLogger(l), &buf
}

func TestZerologLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newTestZerolog(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		attr  string
	}{
		{`"level":"debug"`, `"message":"dbg"`, `"a":1`},
		{`"level":"info"`, `"message":"inf"`, `"b":2`},
		{`"level":"warn"`, `"message":"wrn"`, `"c":3`},
		{`"level":"error"`, `"message":"err"`, `"d":4`},
	}

	for _, tc := range tests {
		for _, want := range []string{tc.level, tc.msg, tc.attr} {
			if !strings.Contains(out, want) {
				t.Fatalf("expected %q in output:\n%s", want, out)
			}
		}
	}
}

func TestZerologLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestZerolog(t)
	ctx := context.Background()

	log.With("job", "contact-sync").Info(ctx, "scheduled", "ids", 3)

	out := buf.String()
	for _, want := range []string{`"job":"contact-sync"`, `"ids":3`, `"message":"scheduled"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
