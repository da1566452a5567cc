package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/unigen/internal/config"
	"github.com/Lumos-Labs-HQ/unigen/internal/database"
	"github.com/Lumos-Labs-HQ/unigen/internal/export"
	"github.com/Lumos-Labs-HQ/unigen/internal/logger"
	"github.com/Lumos-Labs-HQ/unigen/internal/metrics"
	"github.com/Lumos-Labs-HQ/unigen/internal/seeder"
	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the university dataset and write it to the enabled sinks",
		Long: `
Generate every university table in dependency order, assign heads of
department, then write the tables to the enabled sinks and a manifest.json.

Examples:
  unigen generate
  unigen generate --seed 42 --out ./data
  unigen generate --count students=5000 --count enrollments=20000
  unigen generate --json --db --mongo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := applyGenerateFlags(cmd.Flags(), cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			log, err := logger.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			defer log.Sync()

			result, err := runGenerate(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			color.Cyan("Seed: %d", result.Manifest.Seed)
			for _, file := range result.Files {
				fmt.Printf("  wrote %s\n", file)
			}
			for _, sink := range result.Sinks {
				fmt.Printf("  loaded %s\n", sink)
			}
			color.Green("Data generation completed!")
			return nil
		},
	}

	cmd.Flags().Int64("seed", 0, "Seed for reproducible output (0 picks one)")
	cmd.Flags().StringP("out", "o", "", "Output directory for flat files and the manifest")
	cmd.Flags().StringToInt("count", nil, "Row count override, e.g. --count students=5000")
	cmd.Flags().Bool("csv", false, "Write <Entity>.csv files")
	cmd.Flags().Bool("json", false, "Write <Entity>.json files")
	cmd.Flags().Bool("db", false, "Load the tables into the configured relational database")
	cmd.Flags().Bool("mongo", false, "Insert the tables into MongoDB")
	cmd.Flags().Bool("metrics", false, "Write Prometheus metrics to unigen.prom in the output directory")
	return cmd
}

// applyGenerateFlags overlays explicitly set flags on the loaded config.
func applyGenerateFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("seed") {
		seed, err := flags.GetInt64("seed")
		if err != nil {
			return err
		}
		cfg.Seed = seed
	}
	if flags.Changed("out") {
		out, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.OutputDir = out
	}
	if flags.Changed("count") {
		counts, err := flags.GetStringToInt("count")
		if err != nil {
			return err
		}
		for name, n := range counts {
			cfg.Counts[name] = n
		}
	}

	toggles := map[string]*bool{
		"csv":     &cfg.Sinks.CSV,
		"json":    &cfg.Sinks.JSON,
		"db":      &cfg.Sinks.Database,
		"mongo":   &cfg.Sinks.Mongo,
		"metrics": &cfg.Sinks.Metrics,
	}
	for name, target := range toggles {
		if !flags.Changed(name) {
			continue
		}
		on, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*target = on
	}
	return nil
}

type generateResult struct {
	Dataset  *seeder.Dataset
	Files    []string
	Sinks    []string
	Manifest types.Manifest
}

// runGenerate builds the dataset and writes it to every enabled sink. The
// first failing sink aborts the remaining sinks, but the metrics textfile and
// manifest are still written before its error is returned.
func runGenerate(ctx context.Context, cfg *config.Config, log *zap.Logger) (*generateResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var recorder *metrics.Recorder
	seedCfg := seeder.SeedConfig{
		Counts: cfg.Counts,
		Probabilities: seeder.Probabilities{
			MembershipEndUnset: cfg.Probabilities.MembershipEndUnset,
			BorrowReturnUnset:  cfg.Probabilities.BorrowReturnUnset,
		},
	}
	if cfg.Sinks.Metrics {
		recorder = metrics.NewRecorder()
		seedCfg.Observe = recorder.ObserveTable
	}

	gen := seeder.NewDataGenerator(seeder.GeneratorOptions{
		Seed:   cfg.Seed,
		Unique: cfg.Unique,
	})
	s := seeder.NewSeeder(gen, log)
	if err := s.ValidateUnique(cfg.Unique); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dataset, err := s.Seed(seedCfg)
	if err != nil {
		return nil, err
	}

	result := &generateResult{Dataset: dataset}
	tables := dataset.Ordered()

	// timed runs one sink write and reports it to the recorder.
	timed := func(sink string, write func() error) error {
		start := time.Now()
		err := write()
		if recorder != nil {
			recorder.ObserveSink(sink, time.Since(start), err)
		}
		return err
	}

	sinkErr := writeSinks(ctx, cfg, tables, result, timed, log)

	// metrics and manifest describe whatever was written, including a
	// failed sink
	if recorder != nil {
		recorder.Finish(gen.Seed(), time.Now())
		path, err := recorder.WriteTextfile(cfg.OutputDir)
		if err != nil {
			return nil, errors.Join(sinkErr, err)
		}
		result.Files = append(result.Files, path)
	}

	result.Manifest = export.NewManifest(gen.Seed(), Version, dataset.Order, tables)
	result.Manifest.Files = result.Files
	if _, err := export.WriteManifest(cfg.OutputDir, result.Manifest); err != nil {
		return nil, errors.Join(sinkErr, err)
	}
	if sinkErr != nil {
		return nil, sinkErr
	}
	return result, nil
}

// writeSinks writes tables to every enabled sink in turn, recording what
// succeeded on result. It stops at the first failing sink.
func writeSinks(ctx context.Context, cfg *config.Config, tables []*types.Table, result *generateResult, timed func(string, func() error) error, log *zap.Logger) error {
	for _, format := range fileFormats(cfg.Sinks) {
		err := timed(format, func() error {
			files, err := export.PerformExport(cfg.OutputDir, format, tables)
			result.Files = append(result.Files, files...)
			return err
		})
		if err != nil {
			return fmt.Errorf("%s sink: %w", format, err)
		}
		log.Info("flat files written", zap.String("format", format), zap.String("dir", cfg.OutputDir))
	}

	if cfg.Sinks.Database {
		adapter, err := database.NewAdapter(cfg.Database.Provider)
		if err != nil {
			return err
		}
		url, err := cfg.GetDatabaseURL()
		if err != nil {
			return err
		}
		err = timed(cfg.Database.Provider, func() error {
			return writeSink(ctx, adapter, url, tables, log)
		})
		if err != nil {
			return fmt.Errorf("%s sink: %w", cfg.Database.Provider, err)
		}
		result.Sinks = append(result.Sinks, cfg.Database.Provider)
		log.Info("relational sink written", zap.String("provider", cfg.Database.Provider))
	}

	if cfg.Sinks.Mongo {
		uri, err := cfg.GetMongoURI()
		if err != nil {
			return err
		}
		err = timed("mongodb", func() error {
			return writeSink(ctx, database.NewDocumentAdapter(cfg.Mongo.Database), uri, tables, log)
		})
		if err != nil {
			return fmt.Errorf("mongodb sink: %w", err)
		}
		result.Sinks = append(result.Sinks, "mongodb")
		log.Info("document sink written", zap.String("database", cfg.Mongo.Database))
	}
	return nil
}

func fileFormats(sinks config.Sinks) []string {
	var formats []string
	if sinks.CSV {
		formats = append(formats, "csv")
	}
	if sinks.JSON {
		formats = append(formats, "json")
	}
	return formats
}

func writeSink(ctx context.Context, adapter database.DatabaseAdapter, url string, tables []*types.Table, log *zap.Logger) error {
	if err := adapter.Connect(ctx, url); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer adapter.Close()

	if err := adapter.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return database.WriteAll(ctx, adapter, tables, log)
}

func init() {
	rootCmd.AddCommand(newGenerateCmd())
}
