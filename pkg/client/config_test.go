package client

import (
	"testing"
	"time"
)

func TestDefaultSocketConfig(t *testing.T) {
	cfg := DefaultSocketConfig()
	if cfg.BaseDelay != time.Second {
		t.Errorf("BaseDelay = %v, want 1s", cfg.BaseDelay)
	}
	if cfg.MaxDelay != 0 {
		t.Errorf("MaxDelay = %v, want uncapped", cfg.MaxDelay)
	}
	if cfg.DebounceDelay != 250*time.Millisecond {
		t.Errorf("DebounceDelay = %v, want 250ms", cfg.DebounceDelay)
	}
	if cfg.MaxMessageSize != 1<<20 {
		t.Errorf("MaxMessageSize = %d", cfg.MaxMessageSize)
	}
}

func TestSocketConfigClone(t *testing.T) {
	cfg := DefaultSocketConfig()
	clone := cfg.Clone()
	clone.BaseDelay = time.Minute
	if cfg.BaseDelay != time.Second {
		t.Error("Clone should not share state")
	}
}

func TestReconnectDelay(t *testing.T) {
	tests := []struct {
		name     string
		maxDelay time.Duration
		retry    int
		want     time.Duration
	}{
		{"first", 0, 1, time.Second},
		{"second", 0, 2, 2 * time.Second},
		{"linear", 0, 30, 30 * time.Second},
		{"zero retry", 0, 0, time.Second},
		{"capped", 5 * time.Second, 9, 5 * time.Second},
		{"under cap", 5 * time.Second, 3, 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSocketConfig()
			cfg.MaxDelay = tt.maxDelay
			if got := cfg.ReconnectDelay(tt.retry); got != tt.want {
				t.Errorf("ReconnectDelay(%d) = %v, want %v", tt.retry, got, tt.want)
			}
		})
	}
}
