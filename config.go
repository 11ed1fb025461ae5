package recolor

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/goliatone/go-recolor/layering"
)

// Config holds the tunables shared by the store, the editor and the CLI.
// Zero fields fall back to DefaultConfig when layered with LoadConfig.
type Config struct {
	AttributeName     string            `toml:"attribute_name" json:"attribute_name,omitempty"`
	BasisName         string            `toml:"basis_name" json:"basis_name,omitempty"`
	PaletteName       string            `toml:"palette_name" json:"palette_name,omitempty"`
	DefaultLabel      string            `toml:"default_label" json:"default_label,omitempty"`
	CoalesceInterval  time.Duration     `toml:"coalesce_interval" json:"coalesce_interval,omitempty"`
	RemovedSlotPolicy RemovedSlotPolicy `toml:"removed_slot_policy" json:"removed_slot_policy,omitempty"`
	Evaluator         string            `toml:"evaluator" json:"evaluator,omitempty"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		AttributeName:     DefaultAttributeName,
		BasisName:         DefaultBasisName,
		PaletteName:       DefaultPaletteName,
		CoalesceInterval:  DefaultCoalesceInterval,
		RemovedSlotPolicy: RemovedSlotUnassign,
		Evaluator:         "expr",
	}
}

// Validate rejects unknown enumerations and negative intervals.
func (c Config) Validate() error {
	if c.RemovedSlotPolicy != "" && !c.RemovedSlotPolicy.Valid() {
		return fmt.Errorf("recolor: unknown removed_slot_policy %q", c.RemovedSlotPolicy)
	}
	if c.CoalesceInterval < 0 {
		return fmt.Errorf("recolor: coalesce_interval must not be negative")
	}
	switch c.Evaluator {
	case "", "expr", "cel", "js":
	default:
		return fmt.Errorf("recolor: unknown evaluator %q", c.Evaluator)
	}
	return nil
}

// LoadConfig layers overrides over the TOML file at path over DefaultConfig.
// A missing file is not an error; an empty path skips the file layer.
func LoadConfig(path string, overrides Config) (Config, error) {
	var file Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, fmt.Errorf("recolor: read config %q: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &file); err != nil {
				return Config{}, fmt.Errorf("recolor: parse config %q: %w", path, err)
			}
		}
	}
	cfg := layering.MergeLayers(overrides, file, DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeConfig fills zero fields of c from DefaultConfig.
func mergeConfig(c Config) Config {
	return layering.MergeLayers(c, DefaultConfig())
}
