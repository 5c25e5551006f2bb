package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env, level string
		wantErr    bool
		enabled    zapcore.Level
	}{
		{env: "prod", enabled: zapcore.InfoLevel},
		{env: "local", enabled: zapcore.DebugLevel},
		{env: "dev", level: "warn", enabled: zapcore.WarnLevel},
		{env: "staging", wantErr: true},
		{env: "prod", level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if !l.Core().Enabled(tt.enabled) {
				t.Errorf("level %s not enabled", tt.enabled)
			}
			if tt.enabled > zapcore.DebugLevel && l.Core().Enabled(tt.enabled-1) {
				t.Errorf("level %s unexpectedly enabled", tt.enabled-1)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup(context.Background()); ok {
		t.Error("expected no logger in empty context")
	}

	l := zap.NewExample()
	got, ok := Lookup(ContextWithLogger(context.Background(), l))
	if !ok || got != l {
		t.Error("expected stored logger")
	}

	if _, ok := Lookup(ContextWithLogger(context.Background(), nil)); ok {
		t.Error("nil logger must not be returned")
	}
}
