package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/atomicfile"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/parser"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/task"
)

// VaultConfig represents vault-level configuration from gtc.yaml.
type VaultConfig struct {
	// Formats lists the enabled task syntaxes: "tasks", "dataview".
	// Empty enables both.
	Formats []string `yaml:"formats,omitempty"`

	// GlobalFilter restricts parsing to lines containing it (e.g. "#task").
	// The filter token is stripped from descriptions.
	GlobalFilter string `yaml:"global_filter,omitempty"`

	// Statuses maps extra checkbox characters to status keys, merged over
	// the built-in vocabulary.
	Statuses map[string]string `yaml:"statuses,omitempty"`

	// DebounceMS is the per-file re-scan debounce delay in milliseconds.
	DebounceMS int `yaml:"debounce_ms,omitempty"`

	// BatchSize is how many files a full scan processes between yields.
	BatchSize int `yaml:"batch_size,omitempty"`

	// IgnoreDirs replaces the default ignored directory names when set.
	IgnoreDirs []string `yaml:"ignore_dirs,omitempty"`
}

// DefaultVaultConfig returns the default vault configuration.
func DefaultVaultConfig() *VaultConfig {
	return &VaultConfig{}
}

// DebounceDelay returns the configured debounce delay, or zero when unset
// so the scanner default applies.
func (vc *VaultConfig) DebounceDelay() time.Duration {
	if vc.DebounceMS <= 0 {
		return 0
	}
	return time.Duration(vc.DebounceMS) * time.Millisecond
}

// ParserOptions translates the vault config into parse options.
// Configured statuses are merged over the built-in vocabulary.
func (vc *VaultConfig) ParserOptions() parser.Options {
	opts := parser.Options{GlobalFilter: vc.GlobalFilter}

	for _, f := range vc.Formats {
		switch f {
		case string(task.FormatTasks):
			opts.Formats = append(opts.Formats, task.FormatTasks)
		case string(task.FormatDataview):
			opts.Formats = append(opts.Formats, task.FormatDataview)
		}
	}

	if len(vc.Statuses) > 0 {
		statuses := parser.DefaultStatuses()
		for char, status := range vc.Statuses {
			statuses[char] = status
		}
		opts.Statuses = statuses
	}

	return opts
}

// LoadVaultConfig loads vault configuration from gtc.yaml.
// Returns default config if file doesn't exist.
func LoadVaultConfig(vaultPath string) (*VaultConfig, error) {
	configPath := filepath.Join(vaultPath, "gtc.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultVaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault config %s: %w", configPath, err)
	}

	var config VaultConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse vault config %s: %w", configPath, err)
	}

	return &config, nil
}

// CreateDefaultVaultConfig creates a default gtc.yaml file in the vault.
// Returns true if a new file was created, false if one already existed.
func CreateDefaultVaultConfig(vaultPath string) (bool, error) {
	configPath := filepath.Join(vaultPath, "gtc.yaml")

	// Skip if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	}

	defaultConfig := `# gtc vault configuration

# Enabled task syntaxes. Omit to enable both.
# formats:
#   - tasks      # emoji markers: - [ ] Buy milk 📅 2024-01-01
#   - dataview   # bracket fields: - [ ] Buy milk [due:: 2024-01-01]

# Only lines containing this token are treated as tasks.
# The token is stripped from descriptions.
# global_filter: "#task"

# Extra checkbox characters, merged over the built-in vocabulary
# (space=todo, x/X=done, -=cancelled, /=in_progress).
# statuses:
#   "?": question
#   "!": important

# Per-file re-scan debounce in milliseconds (default: 50)
# debounce_ms: 50

# Directories excluded from scanning and watching.
# Omit for the defaults: .git, .obsidian, .trash, node_modules
# ignore_dirs:
#   - .git
#   - .obsidian
#   - .trash
#   - node_modules
`

	if err := atomicfile.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return false, fmt.Errorf("failed to write vault config: %w", err)
	}

	return true, nil
}

// SaveVaultConfig writes the vault config back to gtc.yaml.
func SaveVaultConfig(vaultPath string, cfg *VaultConfig) error {
	configPath := filepath.Join(vaultPath, "gtc.yaml")

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomicfile.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write gtc.yaml: %w", err)
	}

	return nil
}
