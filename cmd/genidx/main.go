// Package main provides the genidx command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/genidx/internal/ingest"
	"github.com/inodb/genidx/internal/store"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	initConfig()

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

// initConfig loads ~/.genidx.yaml (if present) and sets defaults.
func initConfig() {
	viper.SetConfigName(".genidx")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}

	viper.SetDefault("db", "genome.db")
	viper.SetDefault("batch_size", 1000)
	viper.SetDefault("progress_interval", 1_000_000)

	// A missing config file just means defaults.
	_ = viper.ReadInConfig()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "genidx",
		Short:         "Index genomic position data into a queryable store",
		Long:          "genidx ingests VCF, consumer genotype-array, and FASTA files\n(plain or compressed) into a single indexed DuckDB store.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newIngestCmd() *cobra.Command {
	var (
		dbPath    string
		batchSize int
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <input-file>",
		Short: "Ingest a genomic file into the store",
		Long:  "Ingest a VCF, genotype-array, or FASTA file into the store.\nThe format is detected from the file name, falling back to a content probe.",
		Example: `  genidx ingest sample.vcf
  genidx ingest --db dmel_exon.db dmel-all-exon-r6.65.fasta
  genidx ingest genome_raw_data.txt.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = viper.GetString("db")
			}
			if batchSize == 0 {
				batchSize = viper.GetInt("batch_size")
			}
			return runIngest(args[0], dbPath, batchSize, quiet)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "store file (default from config, genome.db)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "records per insertion transaction")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress logging")

	return cmd
}

func runIngest(inputPath, dbPath string, batchSize int, quiet bool) error {
	// Pre-flight: refuse before the store is opened, so a bad path never
	// creates an empty database file.
	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", inputPath)
		}
		return fmt.Errorf("stat input file: %w", err)
	}

	logger := zap.NewNop()
	if !quiet {
		l, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer l.Sync()
		logger = l
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store %s: %w", dbPath, err)
	}
	defer st.Close()

	cfg := ingest.DefaultConfig()
	cfg.BatchSize = batchSize
	cfg.ProgressInterval = viper.GetInt64("progress_interval")

	pipe := ingest.New(st, cfg)
	pipe.SetLogger(logger)

	total, err := pipe.Ingest(inputPath)
	if err != nil {
		return err
	}

	stored, err := st.Count()
	if err != nil {
		return fmt.Errorf("count stored rows: %w", err)
	}

	fmt.Printf("Done. Inserted %d rows into %s (%d total).\n", total, dbPath, stored)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("genidx version %s (%s) built %s\n", version, commit, date)
		},
	}
}
