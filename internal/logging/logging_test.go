package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/tomz197/redlight/internal/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		cfg  config.LoggingConfig
		want zapcore.Level
	}{
		{config.LoggingConfig{Level: "debug", Format: "console"}, zapcore.DebugLevel},
		{config.LoggingConfig{Level: "warn", Format: "json"}, zapcore.WarnLevel},
		{config.LoggingConfig{Level: "shouting", Format: "console"}, zapcore.InfoLevel},
	}
	for _, tt := range tests {
		log, err := New(tt.cfg)
		if err != nil {
			t.Fatalf("New(%+v): %v", tt.cfg, err)
		}
		if !log.Core().Enabled(tt.want) {
			t.Errorf("New(%+v) disables %v", tt.cfg, tt.want)
		}
		if tt.want > zapcore.DebugLevel && log.Core().Enabled(tt.want-1) {
			t.Errorf("New(%+v) enables %v", tt.cfg, tt.want-1)
		}
	}
}
