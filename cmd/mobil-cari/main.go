// Package main provides the mobil-cari CLI for one-off queries, indexing,
// and retrieval quality evaluation against a local catalog.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mobilcari/mobil-cari/internal/config"
	"github.com/mobilcari/mobil-cari/internal/dataset"
	"github.com/mobilcari/mobil-cari/internal/evaluation"
	"github.com/mobilcari/mobil-cari/internal/index"
	"github.com/mobilcari/mobil-cari/internal/ml"
	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
	"github.com/mobilcari/mobil-cari/internal/pkg/security"
	"github.com/mobilcari/mobil-cari/internal/qdrant"
	"github.com/mobilcari/mobil-cari/internal/recommend"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mobil-cari",
		Short: "Mobil Cari - used car recommendations from the command line",
		Long: `Mobil Cari answers free-text Indonesian queries about used cars.

Run 'mobil-cari query "mobil diesel di bawah 200 juta"' for a quick answer,
'mobil-cari index' to build the vector index, or
'mobil-cari evaluate ground_truth.json' to score retrieval quality.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().String("dataset", "", "catalog CSV path (overrides config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(
		queryCmd(),
		indexCmd(),
		evaluateCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSetup loads config and the catalog shared by all subcommands.
func loadSetup(cmd *cobra.Command) (*config.Config, *dataset.Manager, *logger.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	datasetPath, _ := cmd.Flags().GetString("dataset")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if datasetPath != "" {
		cfg.Dataset.Path = datasetPath
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	data := dataset.NewManager(cfg.Dataset.Path, cfg.Dataset.CurrentYear, log)
	if _, err := data.Reload(); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return cfg, data, log, nil
}

// buildProvider connects the similarity path, or returns nil when
// disabled. CLI subcommands degrade to filter-only retrieval.
func buildProvider(cfg *config.Config, log *logger.Logger) (recommend.SimilarityProvider, func(), error) {
	if !cfg.EnableML {
		return nil, func() {}, nil
	}

	mlSvc := ml.NewOllamaService(ml.OllamaConfig{
		BaseURL:   cfg.Ollama.URL,
		Model:     cfg.Ollama.EmbedModel,
		CacheSize: cfg.Ollama.EmbedCacheSize,
	}, log)

	qc, err := qdrant.NewClient(qdrant.ClientConfig{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		APIKey: cfg.Qdrant.APIKey,
		UseTLS: cfg.Qdrant.UseTLS,
	})
	if err != nil {
		mlSvc.Close()
		return nil, nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	cleanup := func() {
		qc.Close()
		mlSvc.Close()
	}

	return index.NewProvider(mlSvc, qc, cfg.Qdrant.Collection), cleanup, nil
}

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Recommend cars for a free-text query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topK, _ := cmd.Flags().GetInt("top-k")
			asJSON, _ := cmd.Flags().GetBool("json")
			noML, _ := cmd.Flags().GetBool("no-ml")

			if err := security.ValidateTopK(topK); err != nil {
				return err
			}

			cfg, data, log, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			if noML {
				cfg.EnableML = false
			}

			provider, cleanup, err := buildProvider(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			svcCfg := recommend.DefaultConfig()
			svcCfg.PrefetchLimit = cfg.Recommend.PrefetchLimit
			svcCfg.DefaultTopK = cfg.Recommend.DefaultTopK
			svcCfg.Rank.AgePreferenceYears = cfg.Recommend.AgeThreshold
			svc := recommend.NewService(provider, data, log, svcCfg)

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			resp, err := svc.Recommend(ctx, recommend.Request{
				Query: args[0],
				TopK:  topK,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			fmt.Printf("Query: %s (match: %s)\n\n", resp.Query, resp.Match)
			for i, r := range resp.Results {
				fmt.Printf("%d. %s (%d)\n", i+1, r.Name, r.Year)
				fmt.Printf("   %s | %s | %s | score %.4f\n",
					r.PriceDisplay, r.Transmission, r.FuelType, r.Score)
			}
			return nil
		},
	}

	cmd.Flags().IntP("top-k", "k", 5, "number of results")
	cmd.Flags().Bool("json", false, "print the raw JSON response")
	cmd.Flags().Bool("no-ml", false, "disable similarity retrieval (filter-only)")

	return cmd
}

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Embed the catalog and upsert it into Qdrant",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			cfg, data, log, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			cfg.EnableML = true

			mlSvc := ml.NewOllamaService(ml.OllamaConfig{
				BaseURL:   cfg.Ollama.URL,
				Model:     cfg.Ollama.EmbedModel,
				CacheSize: cfg.Ollama.EmbedCacheSize,
			}, log)
			defer mlSvc.Close()

			qc, err := qdrant.NewClient(qdrant.ClientConfig{
				Host:   cfg.Qdrant.Host,
				Port:   cfg.Qdrant.Port,
				APIKey: cfg.Qdrant.APIKey,
				UseTLS: cfg.Qdrant.UseTLS,
			})
			if err != nil {
				return fmt.Errorf("failed to connect to Qdrant: %w", err)
			}
			defer qc.Close()

			pipeline := index.NewPipeline(index.PipelineConfig{
				Collection: cfg.Qdrant.Collection,
				VectorSize: uint64(cfg.Ollama.EmbedDim),
				Workers:    cfg.Recommend.IndexWorkers,
			}, mlSvc, qc, log, nil)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			result, err := pipeline.Index(ctx, data.Snapshot(), force)
			if err != nil {
				return err
			}

			if result.Skipped {
				fmt.Printf("Collection %q already current, nothing to do (use --force to rebuild)\n", result.Collection)
				return nil
			}

			fmt.Printf("Indexed %d vehicles into %q in %s\n",
				result.Indexed, result.Collection, result.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "rebuild the collection even when current")

	return cmd
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate [ground-truth.json]",
		Short: "Score retrieval quality against labeled queries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			noML, _ := cmd.Flags().GetBool("no-ml")

			cfg, data, log, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			if noML {
				cfg.EnableML = false
			}

			gts, err := evaluation.LoadGroundTruth(args[0])
			if err != nil {
				return err
			}

			provider, cleanup, err := buildProvider(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			svcCfg := recommend.DefaultConfig()
			svcCfg.PrefetchLimit = cfg.Recommend.PrefetchLimit
			svcCfg.DefaultTopK = cfg.Recommend.DefaultTopK
			svcCfg.Rank.AgePreferenceYears = cfg.Recommend.AgeThreshold
			svc := recommend.NewService(provider, data, log, svcCfg)

			evaluator := evaluation.NewEvaluator(svc, nil)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			results, summary, err := evaluator.Evaluate(ctx, gts)
			if err != nil {
				return err
			}

			for i, r := range results {
				fmt.Printf("%-40s  P@5=%.3f  R@5=%.3f  F1@5=%.3f  MRR=%.3f\n",
					truncate(gts[i].Query, 40), r.Precision[5], r.Recall[5], r.F1[5], r.MRR)
			}
			fmt.Printf("\n%d queries  mean P@5=%.3f  mean R@5=%.3f  mean F1@5=%.3f  MRR=%.3f  MAP=%.3f\n",
				summary.QueryCount, summary.MeanPrecision[5], summary.MeanRecall[5],
				summary.MeanF1[5], summary.MeanMRR, summary.MAP)
			return nil
		},
	}

	cmd.Flags().Bool("no-ml", false, "disable similarity retrieval (filter-only)")

	return cmd
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mobil-cari %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}
