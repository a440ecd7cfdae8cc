package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default values",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" {
					t.Errorf("expected port 8080, got %s", cfg.Port)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("expected log level info, got %s", cfg.LogLevel)
				}
				if cfg.DataDir != "./data" {
					t.Errorf("expected data dir ./data, got %s", cfg.DataDir)
				}
				if cfg.Timezone != "America/Sao_Paulo" {
					t.Errorf("expected timezone America/Sao_Paulo, got %s", cfg.Timezone)
				}
				if cfg.QueueMatchMode != "smart" {
					t.Errorf("expected queue match mode smart, got %s", cfg.QueueMatchMode)
				}
				if cfg.TokenTTL != 480*time.Minute {
					t.Errorf("expected TokenTTL 480m, got %v", cfg.TokenTTL)
				}
				if cfg.SnifferSampleRows != 200 {
					t.Errorf("expected SnifferSampleRows 200, got %d", cfg.SnifferSampleRows)
				}
				if cfg.DayFirstRatio != 0.6 {
					t.Errorf("expected DayFirstRatio 0.6, got %v", cfg.DayFirstRatio)
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"PORT":              "9000",
				"LOG_LEVEL":         "debug",
				"DATA_DIR":          "/var/lib/telereport",
				"QUEUE_TARGET":      "Outra Fila",
				"QUEUE_MATCH_MODE":  "exact",
				"TOKEN_TTL_MINUTES": "60",
				"ALLOWED_ORIGINS":   "http://example.com, http://test.com",
				"DAYFIRST_RATIO":    "0.8",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("expected port 9000, got %s", cfg.Port)
				}
				if cfg.DataDir != "/var/lib/telereport" {
					t.Errorf("expected custom data dir, got %s", cfg.DataDir)
				}
				if cfg.QueueTarget != "Outra Fila" {
					t.Errorf("expected custom queue target, got %s", cfg.QueueTarget)
				}
				if cfg.QueueMatchMode != "exact" {
					t.Errorf("expected exact match mode, got %s", cfg.QueueMatchMode)
				}
				if cfg.TokenTTL != time.Hour {
					t.Errorf("expected TokenTTL 1h, got %v", cfg.TokenTTL)
				}
				if len(cfg.AllowedOrigins) != 2 {
					t.Errorf("expected 2 allowed origins, got %d", len(cfg.AllowedOrigins))
				}
				if cfg.AllowedOrigins[1] != "http://test.com" {
					t.Errorf("expected trimmed origin, got %q", cfg.AllowedOrigins[1])
				}
				if cfg.DayFirstRatio != 0.8 {
					t.Errorf("expected DayFirstRatio 0.8, got %v", cfg.DayFirstRatio)
				}
			},
		},
		{
			name: "invalid TOKEN_TTL_MINUTES",
			env: map[string]string{
				"TOKEN_TTL_MINUTES": "invalid",
			},
			wantErr: true,
		},
		{
			name: "invalid SNIFFER_SAMPLE_ROWS",
			env: map[string]string{
				"SNIFFER_SAMPLE_ROWS": "many",
			},
			wantErr: true,
		},
		{
			name: "invalid DAYFIRST_RATIO",
			env: map[string]string{
				"DAYFIRST_RATIO": "most",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Load config
			cfg, err := Load()

			// Check error
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Run custom checks
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
