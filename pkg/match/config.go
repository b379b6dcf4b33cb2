package match

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/crossmap/pkg/errors"
	"github.com/agentstation/crossmap/pkg/normalize"
	"github.com/agentstation/crossmap/pkg/score"
)

// DefaultThreshold is the similarity cutoff used when a config does not set
// one.
const DefaultThreshold = 80

// KeyPair names one master column and the target column it is compared
// against. Pairs are evaluated in the order they appear in the config.
type KeyPair struct {
	Master string `json:"master" yaml:"master"`
	Target string `json:"target" yaml:"target"`
}

// Config is the fully-formed description of one join. It is a plain value:
// the engine never mutates it after validation.
type Config struct {
	// KeyPairs drive the cascade, most significant first.
	KeyPairs []KeyPair `json:"keyPairs" yaml:"keyPairs"`

	// Algorithms enables matching strategies. Order here is irrelevant;
	// the cascade always consults scorers in fixed priority order.
	Algorithms []score.Algorithm `json:"algorithms" yaml:"algorithms"`

	// Threshold gates the edit-distance scorer, 0 to 100 inclusive.
	Threshold int `json:"threshold" yaml:"threshold"`

	// Normalize configures value normalization for keys on both sides.
	Normalize normalize.Config `json:"normalize" yaml:"normalize"`

	// MasterColumns and TargetColumns select the columns copied into each
	// result row. Empty means every column of the respective dataset.
	MasterColumns []string `json:"masterColumns" yaml:"masterColumns"`
	TargetColumns []string `json:"targetColumns" yaml:"targetColumns"`
}

// DefaultConfig returns a config with exact and levenshtein matching at the
// default threshold and default normalization. Key pairs must still be set.
func DefaultConfig() *Config {
	return &Config{
		Algorithms: []score.Algorithm{score.AlgorithmExact, score.AlgorithmLevenshtein},
		Threshold:  DefaultThreshold,
		Normalize:  normalize.DefaultConfig(),
	}
}

// Validate rejects a malformed config before any matching work begins.
// Referencing a column a dataset does not have is not a config error; such
// lookups read as null at match time.
func (c *Config) Validate() error {
	if len(c.KeyPairs) == 0 {
		return &errors.ConfigError{Component: "keyPairs", Message: "at least one key pair is required"}
	}
	for i, kp := range c.KeyPairs {
		if kp.Master == "" {
			return &errors.ConfigError{
				Component: fmt.Sprintf("keyPairs[%d].master", i),
				Message:   "master column name is required",
			}
		}
		if kp.Target == "" {
			return &errors.ConfigError{
				Component: fmt.Sprintf("keyPairs[%d].target", i),
				Message:   "target column name is required",
			}
		}
	}
	if len(c.Algorithms) == 0 {
		return &errors.ConfigError{Component: "algorithms", Message: "at least one algorithm is required"}
	}
	for i, a := range c.Algorithms {
		if !a.Valid() {
			return &errors.ConfigError{
				Component: fmt.Sprintf("algorithms[%d]", i),
				Message:   fmt.Sprintf("unknown algorithm %q", a),
			}
		}
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return &errors.ConfigError{
			Component: "threshold",
			Message:   fmt.Sprintf("threshold %d is outside [0,100]", c.Threshold),
		}
	}
	return nil
}

// enabled reports whether the config turns on the given algorithm.
func (c *Config) enabled(a score.Algorithm) bool {
	for _, x := range c.Algorithms {
		if x == a {
			return true
		}
	}
	return false
}

// rightColumns returns the distinct target-side key columns in first-use
// order.
func (c *Config) rightColumns() []string {
	seen := make(map[string]bool, len(c.KeyPairs))
	var cols []string
	for _, kp := range c.KeyPairs {
		if !seen[kp.Target] {
			seen[kp.Target] = true
			cols = append(cols, kp.Target)
		}
	}
	return cols
}

// LoadConfig reads and validates a YAML join config from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the config to path as YAML.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
