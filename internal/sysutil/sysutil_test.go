package sysutil

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"WARNING": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"fatal":   zerolog.FatalLevel,
		"panic":   zerolog.PanicLevel,
		"bogus":   zerolog.InfoLevel,
		"  Info ": zerolog.InfoLevel,
	}
	for in, want := range cases {
		SetLogLevel(in)
		if got := zerolog.GlobalLevel(); got != want {
			t.Fatalf("SetLogLevel(%q): global level = %v, want %v", in, got, want)
		}
	}
	SetLogLevel("info") // restore
}

func TestIsTruthy(t *testing.T) {
	truthy := []string{"1", "true", "TRUE", "yes", "Y", "on", " On "}
	for _, v := range truthy {
		if !IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = false, want true", v)
		}
	}
	falsy := []string{"", "0", "false", "no", "off", "maybe", "2"}
	for _, v := range falsy {
		if IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = true, want false", v)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "a", "b"); got != "a" {
		t.Fatalf("FirstNonEmpty = %q, want %q", got, "a")
	}
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("no args must yield empty, got %q", got)
	}
	if got := FirstNonEmpty("", "   "); got != "" {
		t.Fatalf("all blank must yield empty, got %q", got)
	}
}
