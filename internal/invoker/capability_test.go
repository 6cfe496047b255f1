package invoker

import (
	"testing"
	"time"
)

func TestCapabilityConfigValidate(t *testing.T) {
	valid := CapabilityConfig{
		Name:              "sentiment-analysis",
		Auth:              AuthConfig{Method: AuthAPIKey, KeyEnv: "ANTHROPIC_API_KEY"},
		AccuracyThreshold: 0.7,
		ExpectedLatency:   200 * time.Millisecond,
		CostPerCall:       0.002,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*CapabilityConfig)
	}{
		{"missing name", func(c *CapabilityConfig) { c.Name = "" }},
		{"unknown auth method", func(c *CapabilityConfig) { c.Auth.Method = "oauth3" }},
		{"api_key without key_env", func(c *CapabilityConfig) { c.Auth.KeyEnv = "" }},
		{"zero latency", func(c *CapabilityConfig) { c.ExpectedLatency = 0 }},
		{"threshold above one", func(c *CapabilityConfig) { c.AccuracyThreshold = 1.5 }},
		{"negative cost", func(c *CapabilityConfig) { c.CostPerCall = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCapabilityTimeout(t *testing.T) {
	cfg := CapabilityConfig{ExpectedLatency: 300 * time.Millisecond}
	if got := cfg.Timeout(); got != 600*time.Millisecond {
		t.Errorf("Timeout() = %v, want 600ms", got)
	}
}

func TestCatalogRegisterAndResolve(t *testing.T) {
	cat := NewCatalog()
	for _, cfg := range DefaultCapabilities() {
		if err := cat.Register(cfg); err != nil {
			t.Fatalf("register %s: %v", cfg.Name, err)
		}
	}

	cfg, err := cat.Resolve("churn-prediction")
	if err != nil {
		t.Fatalf("resolve churn-prediction: %v", err)
	}
	if cfg.AccuracyThreshold != 0.80 {
		t.Errorf("unexpected threshold %v", cfg.AccuracyThreshold)
	}

	if _, err := cat.Resolve("time-travel"); err == nil {
		t.Error("expected error for unknown capability")
	} else if _, ok := err.(*ErrUnknownCapability); !ok {
		t.Errorf("expected *ErrUnknownCapability, got %T", err)
	}
}

func TestCatalogRegisterIsIdempotent(t *testing.T) {
	cat := NewCatalog()
	cfg := CapabilityConfig{
		Name:            "entity-analysis",
		Auth:            AuthConfig{Method: AuthNone},
		ExpectedLatency: time.Second,
	}
	if err := cat.Register(cfg); err != nil {
		t.Fatal(err)
	}
	cfg.CostPerCall = 0.5
	if err := cat.Register(cfg); err != nil {
		t.Fatal(err)
	}

	got, err := cat.Resolve("entity-analysis")
	if err != nil {
		t.Fatal(err)
	}
	if got.CostPerCall != 0.5 {
		t.Error("last write should win on re-registration")
	}
	if len(cat.Names()) != 1 {
		t.Errorf("expected 1 capability, got %d", len(cat.Names()))
	}
}

func TestExtractJSON(t *testing.T) {
	out, err := extractJSON("Here is the result:\n{\"sentiment\": \"positive\", \"confidence\": 0.9}\nDone.")
	if err != nil {
		t.Fatal(err)
	}
	if out["sentiment"] != "positive" {
		t.Errorf("unexpected output: %v", out)
	}

	if _, err := extractJSON("no json here"); err == nil {
		t.Error("expected error when response contains no JSON")
	}
}
