package lastfm

import (
	"errors"
	"testing"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantKey string
		wantErr error
	}{
		{
			name:    "valid API key",
			apiKey:  "abc123def456abc123def456abc12345",
			wantKey: "abc123def456abc123def456abc12345",
		},
		{
			name:    "surrounding whitespace trimmed",
			apiKey:  "  key \n",
			wantKey: "key",
		},
		{
			name:    "missing API key",
			apiKey:  "",
			wantErr: ErrMissingAPIKey,
		},
		{
			name:    "blank API key",
			apiKey:  "   ",
			wantErr: ErrMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.apiKey)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if cfg != nil {
					t.Errorf("NewConfig() returned non-nil config with error")
				}
				return
			}
			if cfg.APIKey != tt.wantKey {
				t.Errorf("NewConfig() APIKey = %q, want %q", cfg.APIKey, tt.wantKey)
			}
		})
	}
}
