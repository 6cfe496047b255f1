package models

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts Go duration strings ("500ms", "2s") for the
// duration fields when profiles are loaded from a catalog file.
func (p *PerformanceTargets) UnmarshalYAML(value *yaml.Node) error {
	type raw struct {
		TargetLatency     string  `yaml:"target_latency"`
		TargetAccuracy    float64 `yaml:"target_accuracy"`
		CostPerOperation  float64 `yaml:"cost_per_operation"`
		ThroughputPerHour int     `yaml:"throughput_per_hour"`
		MaxErrorRate      float64 `yaml:"max_error_rate"`
	}
	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}
	if r.TargetLatency != "" {
		d, err := time.ParseDuration(r.TargetLatency)
		if err != nil {
			return fmt.Errorf("target_latency: %w", err)
		}
		p.TargetLatency = d
	}
	p.TargetAccuracy = r.TargetAccuracy
	p.CostPerOperation = r.CostPerOperation
	p.ThroughputPerHour = r.ThroughputPerHour
	p.MaxErrorRate = r.MaxErrorRate
	return nil
}

// UnmarshalYAML accepts a Go duration string for the retry timeout when
// workflows are defined in YAML.
func (p *RetryPolicy) UnmarshalYAML(value *yaml.Node) error {
	type raw struct {
		MaxRetries        int     `yaml:"max_retries"`
		BackoffMultiplier float64 `yaml:"backoff_multiplier"`
		Timeout           string  `yaml:"timeout"`
	}
	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}
	if r.Timeout != "" {
		d, err := time.ParseDuration(r.Timeout)
		if err != nil {
			return fmt.Errorf("retry timeout: %w", err)
		}
		p.Timeout = d
	}
	p.MaxRetries = r.MaxRetries
	p.BackoffMultiplier = r.BackoffMultiplier
	return nil
}

// UnmarshalYAML accepts a Go duration string for the estimated duration
// when workflows are defined in YAML.
func (w *Workflow) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		ID                   string         `yaml:"id"`
		Name                 string         `yaml:"name"`
		Steps                []WorkflowStep `yaml:"steps"`
		Trigger              Trigger        `yaml:"trigger"`
		MinTier              Tier           `yaml:"min_tier"`
		RequiredCapabilities []string       `yaml:"required_capabilities"`
		RequiredResources    []string       `yaml:"required_resources"`
		EstimatedDuration    string         `yaml:"estimated_duration"`
		EstimatedCost        float64        `yaml:"estimated_cost"`
		SuccessRate          float64        `yaml:"success_rate"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	w.ID = raw.ID
	w.Name = raw.Name
	w.Steps = raw.Steps
	w.Trigger = raw.Trigger
	w.MinTier = raw.MinTier
	w.RequiredCapabilities = raw.RequiredCapabilities
	w.RequiredResources = raw.RequiredResources
	w.EstimatedCost = raw.EstimatedCost
	w.SuccessRate = raw.SuccessRate
	if raw.EstimatedDuration != "" {
		d, err := time.ParseDuration(raw.EstimatedDuration)
		if err != nil {
			return fmt.Errorf("estimated_duration: %w", err)
		}
		w.EstimatedDuration = d
	}
	return nil
}
