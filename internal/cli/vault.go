package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/config"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/ui"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage configured vaults",
}

var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured vaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgPath, err := loadGlobalConfigWithPath()
		if err != nil {
			return err
		}
		statePath := config.ResolveStatePath(statePathFlag, cfgPath, cfg)
		state, err := config.LoadState(statePath)
		if err != nil {
			return err
		}

		vaults := cfg.ListVaults()
		if isJSONOutput() {
			outputSuccess(map[string]any{
				"vaults":       vaults,
				"default":      cfg.DefaultVault,
				"active_vault": state.ActiveVault,
			}, &Meta{Count: len(vaults)})
			return nil
		}

		if len(vaults) == 0 {
			fmt.Println(ui.Hint("no vaults configured"))
			fmt.Println(ui.Hint(fmt.Sprintf("add one to %s under [vaults]", cfgPath)))
			return nil
		}

		table := ui.NewTable(3)
		for name, path := range vaults {
			marker := ""
			if name == state.ActiveVault {
				marker = "* active"
			} else if name == cfg.DefaultVault {
				marker = "  default"
			}
			table.AddRow(name, ui.FilePath(path), marker)
		}
		fmt.Print(table.String())
		return nil
	},
}

var vaultUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])

		cfg, cfgPath, err := loadGlobalConfigWithPath()
		if err != nil {
			return err
		}
		if _, err := cfg.GetVaultPath(name); err != nil {
			return fmt.Errorf("vault '%s' not found\n\nRun 'gtc vault list' to see configured vaults", name)
		}

		statePath := config.ResolveStatePath(statePathFlag, cfgPath, cfg)
		state, err := config.LoadState(statePath)
		if err != nil {
			return err
		}
		state.ActiveVault = name
		if err := config.SaveState(statePath, state); err != nil {
			return err
		}

		if isJSONOutput() {
			outputSuccess(map[string]string{"active_vault": name}, nil)
			return nil
		}
		fmt.Println(ui.Successf("active vault set to '%s'", name))
		return nil
	},
}

var vaultPathCmd = &cobra.Command{
	Use:   "path [name]",
	Short: "Print a vault's path",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgPath, err := loadGlobalConfigWithPath()
		if err != nil {
			return err
		}

		name := ""
		if len(args) > 0 {
			name = args[0]
		} else {
			statePath := config.ResolveStatePath(statePathFlag, cfgPath, cfg)
			if state, err := config.LoadState(statePath); err == nil {
				name = state.ActiveVault
			}
		}

		path, err := cfg.GetVaultPath(name)
		if err != nil {
			return err
		}

		if isJSONOutput() {
			outputSuccess(map[string]string{"path": path}, nil)
			return nil
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	vaultCmd.AddCommand(vaultListCmd)
	vaultCmd.AddCommand(vaultUseCmd)
	vaultCmd.AddCommand(vaultPathCmd)
	rootCmd.AddCommand(vaultCmd)
}
