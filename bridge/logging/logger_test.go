package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("test", WARN, &buf)

	log.Debugf("should not appear")
	log.Infof("should not appear either")
	log.Warnf("this should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("level filtering failed, got: %s", out)
	}
	if !strings.Contains(out, "this should appear") {
		t.Fatalf("expected WARN message, got: %s", out)
	}
}

func TestForkExtendsPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("gpg-bridge", DEBUG, &buf)
	child := log.Fork("inner")
	grandchild := child.Fork("worker#%d", 3)

	if grandchild.Prefix() != "gpg-bridge/inner/worker#3" {
		t.Fatalf("prefix = %q", grandchild.Prefix())
	}

	grandchild.Infof("hello")
	if !strings.Contains(buf.String(), "gpg-bridge/inner/worker#3") {
		t.Fatalf("expected forked prefix in output, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DEBUG,
		"INFO":  INFO,
		"Warn":  WARN,
		"error": ERROR,
		"FATAL": FATAL,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := ParseLevel("nonsense"); err == nil {
		t.Fatalf("expected error for an unrecognized level")
	}
}
