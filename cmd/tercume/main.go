// Command tercume runs the translation service and its maintenance tasks.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ZaguanLabs/tercume"
	"github.com/ZaguanLabs/tercume/api"
	"github.com/ZaguanLabs/tercume/api/handler"
	"github.com/ZaguanLabs/tercume/cache"
	"github.com/ZaguanLabs/tercume/config"
	"github.com/ZaguanLabs/tercume/detect"
	"github.com/ZaguanLabs/tercume/jobs"
	"github.com/ZaguanLabs/tercume/processor"
)

const usage = `usage: tercume <command> [flags]

commands:
  serve                      run the HTTP API
  html --lang xx [file]      translate an HTML document
  detect [text]              detect the language of text
  purge --lang xx            delete stored translations
  cache-export FILE          write the translation cache to FILE
  cache-import FILE          load translations from FILE
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("a command is required")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "--version", "-version", "version":
		printVersion(stdout)
		return nil
	case "serve":
		return runServe(rest, stderr)
	case "html":
		return runHTML(rest, os.Stdin, stdout, stderr)
	case "detect":
		return runDetect(rest, os.Stdin, stdout, stderr)
	case "purge":
		return runPurge(rest, stdout, stderr)
	case "cache-export":
		return runCacheExport(rest, stdout, stderr)
	case "cache-import":
		return runCacheImport(rest, stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}

	fmt.Fprint(stderr, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", tercume.Name, tercume.Version)
	if tercume.GitCommit != "unknown" {
		fmt.Fprintf(w, "  commit:  %s\n", tercume.ShortCommit())
	}
	if tercume.BuildDate != "unknown" {
		fmt.Fprintf(w, "  built:   %s\n", tercume.BuildDate)
	}
}

// loadConfig reads the environment and returns a logger at the configured level.
func loadConfig(stderr io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return cfg, logger, nil
}

func runServe(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	port := fs.Int("port", 0, "Listen port (default: TERCUME_PORT)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	slog.Info("config loaded", "env", cfg.Server.Env, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := buildBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	tr := buildTranslator(cfg, b, logger)
	html := processor.NewLineProcessor(tr, processor.WithLogger(logger))

	runner := jobs.NewRunner(jobs.WithLogger(logger))
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start job runner: %w", err)
	}

	router := api.NewRouter(api.Dependencies{
		HealthHandler:         handler.NewHealthHandler(b.pingers),
		DetectHandler:         handler.NewDetectHandler(tr),
		TranslateFieldHandler: handler.NewTranslateFieldHandler(tr, runner),
		GetFieldHandler:       handler.NewGetFieldHandler(tr),
		ListFieldsHandler:     handler.NewListFieldsHandler(b.lister),
		TranslateArrayHandler: handler.NewTranslateArrayHandler(tr, runner),
		LookupArrayHandler:    handler.NewLookupArrayHandler(tr),
		TranslateHTMLHandler:  handler.NewTranslateHTMLHandler(html),
		JobStatusHandler:      handler.NewJobStatusHandler(runner),
		PurgeHandler:          handler.NewPurgeHandler(b.purgers...),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Queued jobs are abandoned once the signal context is done.
	select {
	case <-runner.Done():
	case <-shutdownCtx.Done():
		slog.Warn("job runner did not stop in time", "queued", runner.QueueDepth())
	}

	slog.Info("server stopped gracefully")
	return nil
}

func runHTML(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	fs.SetOutput(stderr)

	targetLang := fs.String("lang", "", "Target language code (en, az, ru)")
	sourceLang := fs.String("source", "", "Source language code (default: detect)")
	output := fs.String("output", "", "Output file (default: stdout)")
	outputShort := fs.String("o", "", "Output file (short for --output)")
	dryRun := fs.Bool("dry-run", false, "Show what would be translated without calling any provider")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	if *targetLang == "" {
		fs.Usage()
		return fmt.Errorf("--lang is required")
	}
	if !tercume.IsSupported(*targetLang) {
		return fmt.Errorf("unsupported target language %q", *targetLang)
	}

	input, inputName, err := readInput(fs, stdin)
	if err != nil {
		return err
	}

	if *dryRun {
		return runDryRun(input, inputName, *targetLang, stdout, *jsonOutput)
	}

	cfg, logger, err := loadConfig(stderr)
	if err != nil {
		return err
	}
	ctx := context.Background()
	b, err := buildBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	tr := buildTranslator(cfg, b, logger)
	proc := processor.NewLineProcessor(tr, processor.WithLogger(logger))

	start := time.Now()
	result := proc.TranslateHTML(ctx, input, *targetLang, *sourceLang)
	elapsed := time.Since(start)

	var out io.Writer = stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if *jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"input_file":  inputName,
			"target_lang": *targetLang,
			"html":        result,
			"duration_ms": elapsed.Milliseconds(),
		})
	}

	fmt.Fprint(out, result)
	return nil
}

// runDryRun lists the translatable units without calling any provider.
func runDryRun(input, inputName, targetLang string, stdout io.Writer, jsonOut bool) error {
	units, err := processor.NewHTMLProcessor().Extract(input)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}

	if jsonOut {
		type dryRunUnit struct {
			Kind string `json:"kind"`
			Text string `json:"text"`
		}
		type dryRunOutput struct {
			InputFile  string       `json:"input_file"`
			TargetLang string       `json:"target_lang"`
			UnitCount  int          `json:"unit_count"`
			Units      []dryRunUnit `json:"units"`
		}

		out := dryRunOutput{
			InputFile:  inputName,
			TargetLang: targetLang,
			UnitCount:  len(units),
			Units:      make([]dryRunUnit, len(units)),
		}
		for i, u := range units {
			out.Units[i] = dryRunUnit{Kind: u.Kind, Text: u.Text}
		}

		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(stdout, "Dry run: %s -> %s\n", inputName, targetLang)
	fmt.Fprintf(stdout, "Found %d translatable units:\n\n", len(units))

	for i, u := range units {
		text := u.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(stdout, "%3d. [%s] %q\n", i+1, u.Kind, text)
		if u.Context != "" {
			fmt.Fprintf(stdout, "     Context: %s\n", u.Context)
		}
	}

	return nil
}

func runDetect(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var text string
	if fs.NArg() > 0 {
		text = strings.Join(fs.Args(), " ")
	} else {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}

	cfg, logger, err := loadConfig(stderr)
	if err != nil {
		return err
	}
	// Detection needs no storage.
	tr := tercume.NewTranslator(nil,
		tercume.WithDetector(detect.New()),
		tercume.WithDefaultLanguage(cfg.Translation.DefaultLanguage),
		tercume.WithLogger(logger),
	)
	fmt.Fprintln(stdout, tr.DetectLanguage(text))
	return nil
}

func runPurge(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("purge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	lang := fs.String("lang", "", "Target language whose translations are deleted")
	contentType := fs.String("content-type", "", "Only delete field translations of this content type")
	all := fs.Bool("all", false, "Allow an unfiltered purge")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *lang == "" && *contentType == "" && !*all {
		fs.Usage()
		return fmt.Errorf("--lang is required (or --all to purge everything)")
	}
	if *lang != "" && !tercume.IsSupported(*lang) {
		return fmt.Errorf("unsupported language %q", *lang)
	}

	cfg, logger, err := loadConfig(stderr)
	if err != nil {
		return err
	}
	ctx := context.Background()
	b, err := buildBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := tercume.PurgeAll(ctx, tercume.PurgeFilter{TargetLang: *lang, ContentType: *contentType}, b.purgers...)
	if err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	fmt.Fprintf(stdout, "Deleted %d cache entries and %d field translations\n", res.CacheDeleted, res.FieldsDeleted)
	return nil
}

func runCacheExport(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cache-export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("cache-export takes exactly one FILE argument")
	}

	cfg, logger, err := loadConfig(stderr)
	if err != nil {
		return err
	}
	ctx := context.Background()
	b, err := buildBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	c, err := b.exportable()
	if err != nil {
		return err
	}
	n, err := cache.NewExporter(c).ExportToFile(ctx, fs.Arg(0), map[string]string{
		"backend": cfg.Cache.Backend,
		"version": tercume.Version,
	})
	if err != nil {
		return fmt.Errorf("export cache: %w", err)
	}
	fmt.Fprintf(stdout, "Exported %d entries to %s\n", n, fs.Arg(0))
	return nil
}

func runCacheImport(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cache-import", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("cache-import takes exactly one FILE argument")
	}

	cfg, logger, err := loadConfig(stderr)
	if err != nil {
		return err
	}
	ctx := context.Background()
	b, err := buildBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	c, err := b.exportable()
	if err != nil {
		return err
	}
	res, err := cache.NewImporter(c).ImportFromFile(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("import cache: %w", err)
	}
	fmt.Fprintf(stdout, "Imported %d entries (%d failed) from %s\n", res.Imported, res.Failed, fs.Arg(0))
	return nil
}

// readInput reads the file named by the first argument, or stdin.
func readInput(fs *flag.FlagSet, stdin io.Reader) (string, string, error) {
	if fs.NArg() == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), filepath.Base(path), nil
}
