package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/config"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Initialize a vault for task tracking",
	Long: `Create the vault directory if needed and write a default gtc.yaml.

With --name, the vault is also registered in the global config and made
the active vault.

Examples:
  gtc init ~/notes
  gtc init ~/work-notes --name work`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("name", "", "Register the vault under this name in the global config")
}

func runInit(cmd *cobra.Command, args []string) error {
	vaultPath, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(vaultPath, 0755); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}

	created, err := config.CreateDefaultVaultConfig(vaultPath)
	if err != nil {
		return err
	}

	// Make sure a global config exists so there is a template to edit.
	if configPath == "" {
		if _, err := config.CreateDefault(); err != nil {
			return err
		}
	}

	name, _ := cmd.Flags().GetString("name")
	if name != "" {
		name = strings.TrimSpace(name)

		globalCfg, cfgPath, err := loadGlobalConfigWithPath()
		if err != nil {
			return err
		}
		if globalCfg.Vaults == nil {
			globalCfg.Vaults = make(map[string]string)
		}
		globalCfg.Vaults[name] = vaultPath
		if globalCfg.DefaultVault == "" {
			globalCfg.DefaultVault = name
		}
		if err := config.SaveTo(cfgPath, globalCfg); err != nil {
			return err
		}

		statePath := config.ResolveStatePath(statePathFlag, cfgPath, globalCfg)
		state, err := config.LoadState(statePath)
		if err != nil {
			return err
		}
		state.ActiveVault = name
		if err := config.SaveState(statePath, state); err != nil {
			return err
		}
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{
			"vault":          vaultPath,
			"config_created": created,
			"name":           name,
		}, nil)
		return nil
	}

	if created {
		fmt.Println(ui.Successf("initialized vault at %s", vaultPath))
	} else {
		fmt.Println(ui.Infof("vault at %s already initialized", vaultPath))
	}
	if name != "" {
		fmt.Println(ui.Successf("registered and activated as '%s'", name))
	}
	return nil
}
