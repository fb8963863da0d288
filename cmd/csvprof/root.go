package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"csvprof/adapters/csvsource"
	"csvprof/adapters/excelsource"
	"csvprof/domain/profile"
	"csvprof/internal"
	"csvprof/internal/config"
	"csvprof/internal/engine"
	"csvprof/internal/errors"
	"csvprof/internal/sampling"
	"csvprof/ports"
)

var (
	flagDepth string
	flagJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "csvprof",
	Short: "Streaming statistical profiler for tabular data",
	Long: `csvprof profiles csv and xlsx datasets in a single streaming pass:
column types, distribution moments, quantiles, outliers, correlations
and a weighted data quality score.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDepth, "depth", "standard",
		"analysis depth: fast, standard or deep")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false,
		"emit the full report as JSON")

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(qualityCmd)
}

// runProfile loads config, opens the source and runs one profiling pass
func runProfile(cmd *cobra.Command, path string) (*profile.Report, error) {
	depth := sampling.Depth(flagDepth)
	switch depth {
	case sampling.DepthFast, sampling.DepthStandard, sampling.DepthDeep:
	default:
		return nil, errors.InvalidInput("depth must be fast, standard or deep")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	source, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	eng := engine.NewEngine(cfg.Engine, depth, internal.NewDefaultLogger())
	return eng.Profile(cmd.Context(), source)
}

// openSource picks the row source adapter from the file extension
func openSource(path string) (ports.RowSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return excelsource.NewSource(path, ""), nil
	default:
		return csvsource.NewFileSource(path), nil
	}
}
