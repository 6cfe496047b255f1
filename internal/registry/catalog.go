package registry

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/coreflow360/agentcore/internal/invoker"
	"github.com/coreflow360/agentcore/pkg/models"
)

// Catalog is the on-disk description of agents and capabilities.
type Catalog struct {
	// Agents are the agent profiles to register.
	Agents []models.AgentProfile `yaml:"agents"`
	// Capabilities are capability configurations. When empty, the built-in
	// defaults apply.
	Capabilities []invoker.CapabilityConfig `yaml:"capabilities"`
}

// LoadCatalog reads and validates a catalog YAML file.
// Validation happens at load time: a catalog with an unknown domain,
// capability, or auth method is rejected wholesale.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if len(cat.Agents) == 0 {
		return nil, fmt.Errorf("catalog %s: no agents defined", path)
	}
	for i := range cat.Agents {
		if err := validateProfile(&cat.Agents[i]); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
	}
	for i := range cat.Capabilities {
		if err := cat.Capabilities[i].Validate(); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
	}

	return &cat, nil
}

// Apply registers the catalog's agents into the registry and its
// capabilities into the capability catalog. When the file defines no
// capabilities, the built-in defaults are registered instead.
func (c *Catalog) Apply(reg *Registry, caps *invoker.Catalog) error {
	if err := reg.Replace(c.Agents); err != nil {
		return err
	}

	configs := c.Capabilities
	if len(configs) == 0 {
		configs = invoker.DefaultCapabilities()
	}
	for _, cfg := range configs {
		if err := caps.Register(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Watch re-applies the catalog whenever the file changes on disk.
// A reload that fails validation is logged and skipped; the running
// registry keeps its previous contents. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, reg *Registry, caps *invoker.Catalog) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cat, err := LoadCatalog(path)
			if err != nil {
				log.Printf("[registry] catalog reload skipped: %v", err)
				continue
			}
			if err := cat.Apply(reg, caps); err != nil {
				log.Printf("[registry] catalog reload skipped: %v", err)
				continue
			}
			log.Printf("[registry] catalog reloaded: %d agents", len(cat.Agents))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[registry] watch error: %v", err)
		}
	}
}
