package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	cfgpkg "github.com/KaramelBytes/casescan/internal/config"
	"github.com/KaramelBytes/casescan/internal/clinical"
	"github.com/KaramelBytes/casescan/internal/logging"
	"github.com/KaramelBytes/casescan/internal/parser"
	"github.com/KaramelBytes/casescan/internal/ranges"
	"github.com/KaramelBytes/casescan/internal/sink"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile    string
	debug      bool
	rangesFile string

	// Loaded configuration
	cfg *cfgpkg.Global

	// Per-run logger carrying the run_id field
	log *logrus.Entry
)

var rootCmd = &cobra.Command{
	Use:   "casescan",
	Short: "casescan: screen surgical case datasets for abnormal findings",
	Long: `casescan loads a surgical case dataset (CSV, TSV or XLSX), flags lab and
vital values outside their reference ranges, selects cases by ASA class,
medical history or procedure, derives anesthesia and surgery durations and
runs simple statistics and charts over the result.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.casescan/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&rangesFile, "ranges", "", "YAML range table to use instead of the built-in one (overrides config)")
}

// setup loads configuration, applies flag overrides and builds the run logger.
func setup(cmd *cobra.Command, args []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	f := cmd.Root().PersistentFlags()
	if f.Changed("debug") && debug {
		cfg.LogLevel = "debug"
	}
	if f.Changed("ranges") && rangesFile != "" {
		cfg.RangesFile = rangesFile
	}

	l, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	log, _ = logging.WithRunID(l)
	log.WithField("command", cmd.CommandPath()).Debug("starting")
	return nil
}

func loadTable(path string) (*clinical.Table, error) {
	t, err := parser.LoadFile(path, parser.Options{
		Delimiter: cfg.DelimiterRune(),
		SheetName: cfg.SheetName,
		Strict:    cfg.StrictColumns,
		Log:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	log.WithFields(logrus.Fields{"file": t.Name, "cases": len(t.Records), "columns": len(t.Columns)}).Debug("dataset loaded")
	return t, nil
}

func loadRanges() (*ranges.Table, error) {
	if cfg.RangesFile == "" {
		return ranges.Default(), nil
	}
	rt, err := ranges.LoadFile(cfg.RangesFile)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"file": cfg.RangesFile, "fields": rt.Len()}).Debug("range table loaded")
	return rt, nil
}

// outputPath places relative paths under output_dir.
func outputPath(p string) string {
	if filepath.IsAbs(p) || cfg.OutputDir == "" || cfg.OutputDir == "." {
		return p
	}
	return filepath.Join(cfg.OutputDir, p)
}

// writeResult writes src to out, or as CSV to stdout when out is empty.
func writeResult(cmd *cobra.Command, out string, src sink.RowSource) error {
	if out == "" {
		return sink.CSV{W: cmd.OutOrStdout()}.Write(src)
	}
	path := outputPath(out)
	if err := (sink.File{Path: path}).Write(src); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", path)
	return nil
}
