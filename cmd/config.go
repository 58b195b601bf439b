package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/casescan/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set casescan configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "id_column: %s\n", cfg.IDColumn)
		fmt.Fprintf(out, "duration_divisor: %g\n", cfg.DurationDivisor)
		if cfg.RangesFile != "" {
			fmt.Fprintf(out, "ranges_file: %s\n", cfg.RangesFile)
		}
		fmt.Fprintf(out, "strict_columns: %t\n", cfg.StrictColumns)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "log_level":
			cfg.LogLevel = strings.ToLower(val)
		case "log_format":
			switch strings.ToLower(val) {
			case "text", "json":
				cfg.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		case "id_column":
			cfg.IDColumn = val
		case "duration_divisor":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for duration_divisor: %w", err)
			}
			cfg.DurationDivisor = f
		case "ranges_file":
			cfg.RangesFile = val
		case "strict_columns":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for strict_columns: %w", err)
			}
			cfg.StrictColumns = b
		case "delimiter":
			if val == "tab" {
				val = `\t`
			}
			cfg.Delimiter = val
		case "sheet_name":
			cfg.SheetName = val
		case "output_dir":
			cfg.OutputDir = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
