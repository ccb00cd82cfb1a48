package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level string
		exp   zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"WARN", zapcore.WarnLevel},
	}
	for _, test := range tests {
		l, err := New(test.level)
		if err != nil {
			t.Fatalf("Error building %q logger: %v", test.level, err)
		}
		if !l.Desugar().Core().Enabled(test.exp) {
			t.Errorf("Expected %v enabled for %q", test.exp, test.level)
		}
		if test.exp > zapcore.DebugLevel && l.Desugar().Core().Enabled(test.exp-1) {
			t.Errorf("Expected %v disabled for %q", test.exp-1, test.level)
		}
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, err := New("loud"); err == nil {
		t.Fatalf("Expected an error for a bad level")
	}
}
