package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level, format string
		wantErr       bool
	}{
		{"info", "text", false},
		{"debug", "json", false},
		{"warn", "", false},
		{"loud", "text", true},
		{"info", "xml", true},
	}

	for _, tt := range tests {
		_, err := New(tt.level, tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%q, %q) error = %v, wantErr %v", tt.level, tt.format, err, tt.wantErr)
		}
	}
}

func TestJSONOutput(t *testing.T) {
	l, err := New("debug", "json")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.WithField("steps", 3).Warn("not converged")

	if !strings.Contains(buf.String(), `"steps":3`) {
		t.Errorf("missing field in %q", buf.String())
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("expected logger")
	}
	l := logrus.New()
	if OrDiscard(l) != l {
		t.Error("expected the same logger back")
	}
}
