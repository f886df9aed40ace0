package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"route-assignment-service/internal/ingest"
	"route-assignment-service/internal/normalize"
	"route-assignment-service/internal/services"
)

// Rules are the depot's tunable business rules, read from YAML.
type Rules struct {
	Capacity struct {
		WarnRatio        float64 `yaml:"warn_ratio"`
		BlockRatio       float64 `yaml:"block_ratio"`
		PackageCubicFeet float64 `yaml:"package_cubic_feet"`
	} `yaml:"capacity"`

	Affinity struct {
		WindowDays    int `yaml:"window_days"`
		RetentionDays int `yaml:"retention_days"`
	} `yaml:"affinity"`

	Ingest struct {
		HeaderSearchRows int `yaml:"header_search_rows"`
		MinHeaderHits    int `yaml:"min_header_hits"`
	} `yaml:"ingest"`

	// Extra spellings per service type. Keys may be any known alias.
	ServiceAliases map[string][]string `yaml:"service_aliases"`
	// Fallback order per service type. Names may be any known alias.
	FallbackChains map[string][]string `yaml:"fallback_chains"`
}

func DefaultRules() Rules {
	var r Rules
	r.Capacity.WarnRatio = 0.85
	r.Capacity.BlockRatio = 1.0
	r.Capacity.PackageCubicFeet = 0.35
	r.Affinity.WindowDays = 7
	r.Affinity.RetentionDays = 30
	r.Ingest.HeaderSearchRows = 25
	r.Ingest.MinHeaderHits = 2
	return r
}

// LoadRules reads YAML rules over the defaults. An empty path or a missing
// file yields the defaults.
func LoadRules(path string) (Rules, error) {
	r := DefaultRules()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return Rules{}, fmt.Errorf("load rules: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("load rules: parse %q: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, fmt.Errorf("load rules: %q: %w", path, err)
	}
	return r, nil
}

func (r Rules) Validate() error {
	switch {
	case r.Capacity.WarnRatio <= 0:
		return errors.New("capacity.warn_ratio must be positive")
	case r.Capacity.BlockRatio < r.Capacity.WarnRatio:
		return errors.New("capacity.block_ratio must not be below warn_ratio")
	case r.Capacity.PackageCubicFeet <= 0:
		return errors.New("capacity.package_cubic_feet must be positive")
	case r.Affinity.WindowDays < 0:
		return errors.New("affinity.window_days must not be negative")
	case r.Affinity.RetentionDays < r.Affinity.WindowDays:
		return errors.New("affinity.retention_days must cover window_days")
	case r.Ingest.HeaderSearchRows < 1:
		return errors.New("ingest.header_search_rows must be at least 1")
	case r.Ingest.MinHeaderHits < 1:
		return errors.New("ingest.min_header_hits must be at least 1")
	}
	return nil
}

// Catalog extends the built-in service types with the configured aliases.
func (r Rules) Catalog() (*normalize.Catalog, error) {
	base := normalize.DefaultCatalog()
	if len(r.ServiceAliases) == 0 {
		return base, nil
	}

	extra := make(map[string][]string, len(r.ServiceAliases))
	for name, aliases := range r.ServiceAliases {
		canonical, err := base.ServiceType(name)
		if err != nil {
			return nil, fmt.Errorf("service_aliases: %w", err)
		}
		extra[canonical] = append(extra[canonical], aliases...)
	}

	cat, err := base.WithAliases(extra)
	if err != nil {
		return nil, fmt.Errorf("service_aliases: %w", err)
	}
	return cat, nil
}

// Policy resolves the rules into engine thresholds, naming chain members
// canonically through cat.
func (r Rules) Policy(cat *normalize.Catalog) (services.Policy, error) {
	p := services.DefaultPolicy()
	p.CapacityWarn = decimal.NewFromFloat(r.Capacity.WarnRatio)
	p.CapacityBlock = decimal.NewFromFloat(r.Capacity.BlockRatio)
	p.PackageCubicFeet = decimal.NewFromFloat(r.Capacity.PackageCubicFeet)
	p.AffinityWindow = time.Duration(r.Affinity.WindowDays) * 24 * time.Hour

	if len(r.FallbackChains) == 0 {
		return p, nil
	}

	p.FallbackChains = make(map[string][]string, len(r.FallbackChains))
	for name, chain := range r.FallbackChains {
		from, err := cat.ServiceType(name)
		if err != nil {
			return services.Policy{}, fmt.Errorf("fallback_chains: %w", err)
		}
		resolved := make([]string, 0, len(chain))
		for _, member := range chain {
			to, err := cat.ServiceType(member)
			if err != nil {
				return services.Policy{}, fmt.Errorf("fallback_chains %q: %w", name, err)
			}
			resolved = append(resolved, to)
		}
		p.FallbackChains[from] = resolved
	}
	return p, nil
}

func (r Rules) IngestOptions(cat *normalize.Catalog) ingest.Options {
	return ingest.Options{
		Catalog:    cat,
		SearchRows: r.Ingest.HeaderSearchRows,
		MinHits:    r.Ingest.MinHeaderHits,
	}
}

// Retention is how long affinity history is kept before pruning.
func (r Rules) Retention() time.Duration {
	return time.Duration(r.Affinity.RetentionDays) * 24 * time.Hour
}

// CycleDeps assembles the rule-driven parts of a cycle's collaborators.
func (r Rules) CycleDeps() (services.CycleDeps, error) {
	cat, err := r.Catalog()
	if err != nil {
		return services.CycleDeps{}, err
	}
	policy, err := r.Policy(cat)
	if err != nil {
		return services.CycleDeps{}, err
	}
	return services.CycleDeps{
		Catalog: cat,
		Engine:  services.NewAssignmentEngine(cat, policy),
		Ingest:  r.IngestOptions(cat),
	}, nil
}
