package config

import (
	"testing"
)

func TestKeepAliveDefaultDerivedFromAppURL(t *testing.T) {
	t.Setenv("APP_URL", "https://filegate.example.com/")

	got := keepAliveDefault()
	if got != "https://filegate.example.com/health" {
		t.Fatalf("keepAliveDefault = %q, want the /health endpoint", got)
	}
}

func TestKeepAliveDefaultEmptyWithoutAppURL(t *testing.T) {
	t.Setenv("APP_URL", "")

	if got := keepAliveDefault(); got != "" {
		t.Fatalf("keepAliveDefault = %q, want empty", got)
	}
}

func TestKeepAliveURLOverridesAppURL(t *testing.T) {
	t.Setenv("APP_URL", "https://filegate.example.com")
	t.Setenv("KEEP_ALIVE_URL", "https://ping.example.com/up")

	got := envString("KEEP_ALIVE_URL", keepAliveDefault())
	if got != "https://ping.example.com/up" {
		t.Fatalf("explicit KEEP_ALIVE_URL must win, got %q", got)
	}
}
