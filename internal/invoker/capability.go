package invoker

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// AuthMethod identifies how a capability endpoint authenticates.
type AuthMethod string

const (
	// AuthNone requires no authentication.
	AuthNone AuthMethod = "none"
	// AuthAPIKey authenticates with a bearer API key.
	AuthAPIKey AuthMethod = "api_key"
	// AuthAWSIAM authenticates with ambient AWS IAM credentials.
	AuthAWSIAM AuthMethod = "aws_iam"
)

// Valid returns true if the auth method is a known value.
func (m AuthMethod) Valid() bool {
	switch m {
	case AuthNone, AuthAPIKey, AuthAWSIAM:
		return true
	default:
		return false
	}
}

// AuthConfig carries resolved authentication settings for an invocation.
type AuthConfig struct {
	// Method is the authentication method.
	Method AuthMethod `yaml:"method"`
	// KeyEnv names the environment variable holding the API key, for
	// AuthAPIKey capabilities.
	KeyEnv string `yaml:"key_env,omitempty"`
	// Region is the AWS region, for AuthAWSIAM capabilities.
	Region string `yaml:"region,omitempty"`
}

// CapabilityConfig is the validated, per-capability configuration schema.
// Configs are checked at registration time so execution never sees an
// unknown auth method or a zero latency.
type CapabilityConfig struct {
	// Name is the capability identifier referenced by workflow steps.
	Name string `yaml:"name"`
	// Auth is the authentication configuration.
	Auth AuthConfig `yaml:"auth"`
	// Endpoint is the external endpoint, when the capability is remote.
	Endpoint string `yaml:"endpoint,omitempty"`
	// AccuracyThreshold is the minimum acceptable result confidence (0-1).
	AccuracyThreshold float64 `yaml:"accuracy_threshold"`
	// ExpectedLatency is the typical invocation latency. Invocations are
	// bounded at twice this value.
	ExpectedLatency time.Duration `yaml:"expected_latency"`
	// CostPerCall is the dollar cost of one invocation.
	CostPerCall float64 `yaml:"cost_per_call"`
}

// UnmarshalYAML accepts a Go duration string ("500ms", "2s") for the
// expected latency when configs are loaded from a catalog file.
func (c *CapabilityConfig) UnmarshalYAML(value *yaml.Node) error {
	type raw struct {
		Name              string     `yaml:"name"`
		Auth              AuthConfig `yaml:"auth"`
		Endpoint          string     `yaml:"endpoint"`
		AccuracyThreshold float64    `yaml:"accuracy_threshold"`
		ExpectedLatency   string     `yaml:"expected_latency"`
		CostPerCall       float64    `yaml:"cost_per_call"`
	}
	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}
	if r.ExpectedLatency != "" {
		d, err := time.ParseDuration(r.ExpectedLatency)
		if err != nil {
			return fmt.Errorf("expected_latency: %w", err)
		}
		c.ExpectedLatency = d
	}
	c.Name = r.Name
	c.Auth = r.Auth
	c.Endpoint = r.Endpoint
	c.AccuracyThreshold = r.AccuracyThreshold
	c.CostPerCall = r.CostPerCall
	return nil
}

// Validate checks the configuration for programmer errors.
func (c *CapabilityConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("capability config: name is required")
	}
	if !c.Auth.Method.Valid() {
		return fmt.Errorf("capability %s: unknown auth method %q", c.Name, c.Auth.Method)
	}
	if c.Auth.Method == AuthAPIKey && c.Auth.KeyEnv == "" {
		return fmt.Errorf("capability %s: api_key auth requires key_env", c.Name)
	}
	if c.ExpectedLatency <= 0 {
		return fmt.Errorf("capability %s: expected_latency must be positive", c.Name)
	}
	if c.AccuracyThreshold < 0 || c.AccuracyThreshold > 1 {
		return fmt.Errorf("capability %s: accuracy_threshold must be in [0,1]", c.Name)
	}
	if c.CostPerCall < 0 {
		return fmt.Errorf("capability %s: cost_per_call must not be negative", c.Name)
	}
	return nil
}

// Timeout returns the invocation deadline for this capability, roughly
// twice the expected latency.
func (c *CapabilityConfig) Timeout() time.Duration {
	return 2 * c.ExpectedLatency
}

// ErrUnknownCapability is returned when a step references a capability
// that was never registered. This is a configuration error, not a
// transient condition, and is never retried.
type ErrUnknownCapability struct {
	Name string
}

func (e *ErrUnknownCapability) Error() string {
	return fmt.Sprintf("unknown capability %q", e.Name)
}

// Catalog is the registered set of capability configurations.
type Catalog struct {
	configs map[string]CapabilityConfig
	mu      sync.RWMutex
}

// NewCatalog creates an empty capability catalog.
func NewCatalog() *Catalog {
	return &Catalog{configs: make(map[string]CapabilityConfig)}
}

// Register validates and stores a capability configuration.
// Registration is idempotent by name; the last write wins.
func (c *Catalog) Register(cfg CapabilityConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs[cfg.Name] = cfg
	return nil
}

// Resolve returns the configuration for a capability name.
func (c *Catalog) Resolve(name string) (CapabilityConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg, ok := c.configs[name]
	if !ok {
		return CapabilityConfig{}, &ErrUnknownCapability{Name: name}
	}
	return cfg, nil
}

// Names returns the registered capability names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.configs))
	for name := range c.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultCapabilities returns the built-in capability set with per-call
// costs and expected latencies taken from the production module
// integrations (sentiment analysis, forecasting, ERP operations).
func DefaultCapabilities() []CapabilityConfig {
	return []CapabilityConfig{
		{Name: "sentiment-analysis", Auth: AuthConfig{Method: AuthAPIKey, KeyEnv: "ANTHROPIC_API_KEY"}, AccuracyThreshold: 0.70, ExpectedLatency: 200 * time.Millisecond, CostPerCall: 0.002},
		{Name: "entity-analysis", Auth: AuthConfig{Method: AuthAPIKey, KeyEnv: "ANTHROPIC_API_KEY"}, AccuracyThreshold: 0.75, ExpectedLatency: 500 * time.Millisecond, CostPerCall: 0.004},
		{Name: "churn-prediction", Auth: AuthConfig{Method: AuthAPIKey, KeyEnv: "ANTHROPIC_API_KEY"}, AccuracyThreshold: 0.80, ExpectedLatency: 800 * time.Millisecond, CostPerCall: 0.006},
		{Name: "anomaly-detection", Auth: AuthConfig{Method: AuthAPIKey, KeyEnv: "ANTHROPIC_API_KEY"}, AccuracyThreshold: 0.85, ExpectedLatency: 400 * time.Millisecond, CostPerCall: 0.005},
		{Name: "cash-flow-forecast", Auth: AuthConfig{Method: AuthAPIKey, KeyEnv: "ANTHROPIC_API_KEY"}, AccuracyThreshold: 0.80, ExpectedLatency: 1200 * time.Millisecond, CostPerCall: 0.010},
		{Name: "payroll-processing", Auth: AuthConfig{Method: AuthNone}, AccuracyThreshold: 0.95, ExpectedLatency: 1500 * time.Millisecond, CostPerCall: 0.008},
		{Name: "bom-optimization", Auth: AuthConfig{Method: AuthNone}, AccuracyThreshold: 0.85, ExpectedLatency: 2 * time.Second, CostPerCall: 0.012},
		{Name: "strategic-analysis", Auth: AuthConfig{Method: AuthAPIKey, KeyEnv: "ANTHROPIC_API_KEY"}, AccuracyThreshold: 0.75, ExpectedLatency: 3 * time.Second, CostPerCall: 0.020},
		{Name: "process-automation", Auth: AuthConfig{Method: AuthNone}, AccuracyThreshold: 0.90, ExpectedLatency: 1 * time.Second, CostPerCall: 0.003},
		{Name: "cross-domain-synthesis", Auth: AuthConfig{Method: AuthAPIKey, KeyEnv: "ANTHROPIC_API_KEY"}, AccuracyThreshold: 0.70, ExpectedLatency: 4 * time.Second, CostPerCall: 0.025},
	}
}
