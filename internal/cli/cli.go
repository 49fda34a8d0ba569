package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"specs-archiver/internal/archive"
	"specs-archiver/internal/cache"
	"specs-archiver/internal/config"
	"specs-archiver/internal/filewalker"
	"specs-archiver/internal/parser"
	"specs-archiver/internal/textutil"
	"specs-archiver/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "specs-archiver",
		Short: "Convert and archive Specs Prodigy .xy spectroscopy exports",
		Long:  "Parses ASCII-encoded XPS/NEXAFS .xy exports from SpecsLab Prodigy into normalized measurement records, and archives them in PostgreSQL and a Neo4j catalog graph.",
	}

	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(similarCmd())
	rootCmd.AddCommand(regionsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addMetadataFlags registers the operator-supplied metadata flags shared by
// convert and ingest.
func addMetadataFlags(cmd *cobra.Command) {
	cmd.Flags().String("author", "", "Author recorded on every measurement")
	cmd.Flags().String("sample", "", "Sample identifier recorded on every measurement")
	cmd.Flags().String("experiment-id", "", "Experiment identifier recorded on every measurement")
	cmd.Flags().String("project", "", "Project name recorded on every measurement")
}

func optionsFromFlags(cmd *cobra.Command) parser.Options {
	author, _ := cmd.Flags().GetString("author")
	sample, _ := cmd.Flags().GetString("sample")
	experimentID, _ := cmd.Flags().GetString("experiment-id")
	project, _ := cmd.Flags().GetString("project")

	return parser.Options{
		Author:       author,
		Sample:       sample,
		ExperimentID: experimentID,
		Project:      project,
	}
}

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file-or-directory>",
		Short: "Parse .xy exports and write normalized JSON next to each input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], optionsFromFlags(cmd))
		},
	}
	addMetadataFlags(cmd)
	return cmd
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <directory>",
		Short: "Parse .xy exports and archive them in PostgreSQL and Neo4j",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(args[0], optionsFromFlags(cmd))
		},
	}
	addMetadataFlags(cmd)
	return cmd
}

func similarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <file>",
		Short: "Find archived spectra similar to the first spectrum in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topK, _ := cmd.Flags().GetInt("top")
			return runSimilar(args[0], topK)
		},
	}
	cmd.Flags().Int("top", 5, "Number of matches to return")
	return cmd
}

func regionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List archived spectrum regions with measurement counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegions()
		},
	}
}

// runConvert handles the `convert` command: parse only, no databases.
func runConvert(input string, opts parser.Options) error {
	cfg := config.Load()

	xy := parser.NewXYParser()
	xy.Prefix = cfg.CommentPrefix
	xy.Opts = opts

	w := filewalker.NewWalker(xy)
	entries, err := w.Walk(input)
	if err != nil {
		return fmt.Errorf("walk input: %w", err)
	}

	converted := 0
	for _, entry := range entries {
		records, err := w.ParseFile(entry)
		if err != nil {
			var perr *parser.ParseError
			if errors.As(err, &perr) {
				log.Error().
					Str("file", perr.Path).
					Int("line", perr.Line).
					Err(perr.Err).
					Msg("Parse failed")
			} else {
				log.Error().Err(err).Str("file", entry.Path).Msg("Parse failed")
			}
			continue
		}

		measurements := archive.Build(records, entry.Path)
		outPath := strings.TrimSuffix(entry.Path, filepath.Ext(entry.Path)) + ".json"
		if err := archive.WriteJSON(outPath, measurements); err != nil {
			log.Error().Err(err).Str("file", entry.Path).Msg("JSON export failed")
			continue
		}
		converted++
	}

	log.Info().Int("files", len(entries)).Int("converted", converted).Msg("Conversion complete")
	return nil
}

// runIngest handles the `ingest` command.
func runIngest(inputDir string, opts parser.Options) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	pgPool, err := initPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	neo4jDriver, err := initNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer neo4jDriver.Close(ctx)

	store := archive.NewStore(pgPool, cfg.FingerprintDim)
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure store schema: %w", err)
	}

	catalog := archive.NewCatalog(neo4jDriver)
	if err := catalog.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure catalog schema: %w", err)
	}

	ingestCache := cache.NewIngestCache(pgPool)
	if err := ingestCache.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure ingest cache schema: %w", err)
	}
	if err := ingestCache.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload ingest cache")
	}

	xy := parser.NewXYParser()
	xy.Prefix = cfg.CommentPrefix
	xy.Opts = opts

	w := filewalker.NewWalker(xy)
	entries, err := w.Walk(inputDir)
	if err != nil {
		return fmt.Errorf("walk input directory: %w", err)
	}

	// Skip files whose content is already archived.
	type pending struct {
		entry filewalker.FileEntry
		hash  string
	}
	var todo []pending
	skipped := 0
	for _, entry := range entries {
		content, err := os.ReadFile(entry.Path)
		if err != nil {
			log.Error().Err(err).Str("file", entry.Path).Msg("Read failed")
			continue
		}
		hash := textutil.Hash(content)
		if ingestCache.Seen(ctx, hash) {
			skipped++
			continue
		}
		todo = append(todo, pending{entry: entry, hash: hash})
	}

	log.Info().
		Int("files", len(entries)).
		Int("to_ingest", len(todo)).
		Int("skipped", skipped).
		Msg("Starting ingestion")

	// Parse files using the worker pool.
	parsePool := worker.NewPool[pending, []parser.Record](cfg.WorkerCount,
		func(ctx context.Context, p pending) ([]parser.Record, error) {
			return w.ParseFile(p.entry)
		},
	)
	parseResults := parsePool.Execute(ctx, todo)

	ingested := 0
	stored := 0
	for _, pr := range parseResults {
		if pr.Err != nil {
			log.Error().Err(pr.Err).Str("file", pr.Input.entry.Path).Msg("Parse failed")
			continue
		}

		measurements := archive.Build(pr.Result, pr.Input.entry.Path)
		if err := store.UpsertAll(ctx, measurements); err != nil {
			log.Error().Err(err).Str("file", pr.Input.entry.Path).Msg("Store failed")
			continue
		}

		for _, m := range measurements {
			if err := catalog.Upsert(ctx, m); err != nil {
				log.Warn().Err(err).Str("measurement", m.ID).Msg("Catalog update failed")
			}
		}

		if err := ingestCache.Mark(ctx, pr.Input.hash, pr.Input.entry.Path, len(measurements)); err != nil {
			log.Warn().Err(err).Str("file", pr.Input.entry.Path).Msg("Failed to mark file ingested")
		}

		ingested++
		stored += len(measurements)
	}

	log.Info().
		Int("files", ingested).
		Int("measurements", stored).
		Int("skipped", skipped).
		Msg("Ingestion complete")

	return nil
}

// runSimilar handles the `similar` command.
func runSimilar(input string, topK int) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	pgPool, err := initPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	xy := parser.NewXYParser()
	xy.Prefix = cfg.CommentPrefix

	records, err := xy.Parse(input)
	if err != nil {
		return fmt.Errorf("parse query file: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no retained spectra in %s", input)
	}

	store := archive.NewStore(pgPool, cfg.FingerprintDim)
	results, err := store.SearchSimilar(ctx, records[0].Count, topK)
	if err != nil {
		return fmt.Errorf("similarity search: %w", err)
	}

	for _, r := range results {
		fmt.Printf("%.4f  %-20s %-20s %s\n", r.Distance, r.Region, r.GroupName, r.SourceFile)
	}

	log.Info().Int("matches", len(results)).Str("query", input).Msg("Similarity search complete")
	return nil
}

// runRegions handles the `regions` command.
func runRegions() error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	neo4jDriver, err := initNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer neo4jDriver.Close(ctx)

	catalog := archive.NewCatalog(neo4jDriver)
	regions, err := catalog.Regions(ctx)
	if err != nil {
		return fmt.Errorf("list regions: %w", err)
	}

	for _, r := range regions {
		fmt.Printf("%6d  %s\n", r.Measurements, r.Name)
	}

	return nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// initPostgres connects and pings the PostgreSQL pool.
func initPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	return pgPool, nil
}

// initNeo4j connects and verifies the Neo4j driver.
func initNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")

	return driver, nil
}
