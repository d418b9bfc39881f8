package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/fishgrade/internal/config"
	"github.com/TobiSchelling/fishgrade/internal/database"
	"github.com/TobiSchelling/fishgrade/internal/ingest"
	"github.com/TobiSchelling/fishgrade/internal/interpret"
	"github.com/TobiSchelling/fishgrade/internal/mcptools"
	"github.com/TobiSchelling/fishgrade/internal/organoleptic"
	"github.com/TobiSchelling/fishgrade/internal/pipeline"
	webserver "github.com/TobiSchelling/fishgrade/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "fishgrade",
	Short:   "Fish identification and freshness grading",
	Long:    "fishgrade turns AI-generated fish descriptions into structured, quality-scored records and grades fish freshness from organoleptic scores.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetFlags(log.LstdFlags)

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		switch {
		case err == nil:
			cfg, err = config.Load(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
		case configPath != "":
			return err
		default:
			cfg = config.Default()
		}

		if verbose || cfg.Debug() {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("fishgrade", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/fishgrade/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to change cleaning defaults, worker count, data directory and server port.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Database: %s\n\n", db.Path())
		fmt.Println("Analyses:")
		fmt.Printf("  Stored: %d\n", stats.Analyses)
		fmt.Printf("  Valid: %d\n", stats.ValidAnalyses)
		fmt.Println("\nSamples:")
		fmt.Printf("  Stored: %d\n", stats.Samples)
		fmt.Printf("  Average score: %.1f\n", stats.AvgScore)
		for _, c := range []organoleptic.Category{organoleptic.Prima, organoleptic.Baik, organoleptic.Sedang, organoleptic.Busuk, organoleptic.Invalid} {
			fmt.Printf("  %s: %d\n", c, stats.ByCategory[c])
		}
		return nil
	},
}

// --- clean command ---

var (
	cleanKeepMarkdown   bool
	cleanKeepWhitespace bool
	cleanKeepEmpty      bool
	cleanKeepArtifacts  bool
	cleanMinLength      int
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file]",
	Short: "Clean AI-generated text (reads stdin when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "-"
		if len(args) == 1 {
			name = args[0]
		}
		text, err := readInput(name)
		if err != nil {
			return err
		}

		opts := cfg.Cleaning.Options()
		if cleanKeepMarkdown {
			opts.RemoveMarkdown = false
		}
		if cleanKeepWhitespace {
			opts.NormalizeWhitespace = false
		}
		if cleanKeepEmpty {
			opts.RemoveEmptyLines = false
		}
		if cleanKeepArtifacts {
			opts.RemoveArtifacts = false
		}
		if cmd.Flags().Changed("min-length") {
			opts.MinimumLength = cleanMinLength
		}

		fmt.Println(interpret.Clean(text, opts))
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanKeepMarkdown, "keep-markdown", false, "Do not remove markdown formatting")
	cleanCmd.Flags().BoolVar(&cleanKeepWhitespace, "keep-whitespace", false, "Do not collapse whitespace")
	cleanCmd.Flags().BoolVar(&cleanKeepEmpty, "keep-empty", false, "Do not drop empty and short lines")
	cleanCmd.Flags().BoolVar(&cleanKeepArtifacts, "keep-artifacts", false, "Do not remove stray symbols and bullets")
	cleanCmd.Flags().IntVar(&cleanMinLength, "min-length", interpret.DefaultMinimumLength, "Minimum characters a line needs to be kept")
}

// --- analyze command ---

var (
	analyzeSave bool
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file...]",
	Short: "Extract species, confidence and characteristics from AI responses",
	Long: `Analyze reads AI responses from files (or stdin when none are given),
extracts the structured fields and scores the analysis quality.
Files ending in .html or .htm are reduced to their readable text first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"-"}
		}

		var inputs []pipeline.Input
		for _, name := range args {
			text, err := readInput(name)
			if err != nil {
				return err
			}
			source := name
			if name == "-" {
				source = "stdin"
			}
			inputs = append(inputs, pipeline.Input{Source: source, Text: text})
		}

		var db *database.DB
		if analyzeSave {
			var err error
			db, err = openDB()
			if err != nil {
				return err
			}
			defer db.Close()
		}

		result, err := pipeline.New(cfg, db).AnalyzeAll(cmd.Context(), inputs)
		if err != nil {
			return err
		}

		if analyzeJSON {
			return printJSON(result.Reports)
		}
		for i, r := range result.Reports {
			if i > 0 {
				fmt.Println()
			}
			printReport(r)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Store the analyses in the database")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print reports as JSON")
}

func printReport(r pipeline.Report) {
	a := r.Analysis
	fmt.Printf("== %s", r.Source)
	if r.ID != 0 {
		fmt.Printf(" (saved as #%d)", r.ID)
	}
	fmt.Println()

	species := "unknown"
	if a.Species != nil {
		species = *a.Species
	}
	fmt.Printf("Species:    %s\n", species)
	fmt.Printf("Confidence: %s (%s)\n", r.Confidence.Percentage, r.Confidence.Level)
	if len(a.Characteristics) > 0 {
		fmt.Println("Characteristics:")
		for _, c := range a.Characteristics {
			fmt.Printf("  - %s\n", c)
		}
	}
	for _, s := range a.Sections {
		fmt.Printf("%s: %s\n", s.Title, s.Content)
	}
	fmt.Printf("Quality:    %s (%d/100, valid: %t)\n", r.Assessment.Quality, r.Assessment.Score, r.Assessment.IsValid)
	for _, issue := range r.Assessment.Issues {
		fmt.Printf("  ! %s\n", issue)
	}
}

// --- grade command ---

var (
	gradeLabel string
	gradeSave  bool
	gradeJSON  bool
	gradeBatch string
)

var gradeCmd = &cobra.Command{
	Use:   "grade [eye gill slime flesh odor texture]",
	Short: "Score fish freshness from six organoleptic grades (1-9)",
	Long: `Grade averages the six organoleptic grades, leaving out any grade of 4,
and classifies the result as Prima, Baik, Sedang, Busuk or Invalid.

With --batch, every line of the file holds six grades and all samples are
scored concurrently.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if gradeBatch != "" {
			return runGradeBatch(cmd.Context(), gradeBatch)
		}
		if len(args) != len(organoleptic.AllParameters) {
			return fmt.Errorf("expected %d grades, got %d", len(organoleptic.AllParameters), len(args))
		}

		p, err := parseGrades(args)
		if err != nil {
			return err
		}

		var db *database.DB
		if gradeSave {
			db, err = openDB()
			if err != nil {
				return err
			}
			defer db.Close()
		}

		rec, err := pipeline.New(cfg, db).Grade(gradeLabel, p)
		if err != nil {
			return err
		}
		if gradeJSON {
			return printJSON(rec)
		}
		printSample(rec)
		return nil
	},
}

func init() {
	gradeCmd.Flags().StringVar(&gradeLabel, "label", "", "Label for the sample")
	gradeCmd.Flags().BoolVar(&gradeSave, "save", false, "Store the sample in the database")
	gradeCmd.Flags().BoolVar(&gradeJSON, "json", false, "Print the result as JSON")
	gradeCmd.Flags().StringVar(&gradeBatch, "batch", "", "File with one sample of six grades per line")
}

func parseGrades(fields []string) (organoleptic.Parameters, error) {
	var p organoleptic.Parameters
	for i, param := range organoleptic.AllParameters {
		v, err := strconv.Atoi(strings.TrimSpace(fields[i]))
		if err != nil {
			return p, fmt.Errorf("%s: %q is not a whole number", param, fields[i])
		}
		p = p.With(param, v)
	}
	return p, p.Validate()
}

func runGradeBatch(ctx context.Context, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("opening batch file: %w", err)
	}
	defer f.Close()

	var samples []organoleptic.Parameters
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
		if len(fields) != len(organoleptic.AllParameters) {
			return fmt.Errorf("line %d: expected %d grades, got %d", line, len(organoleptic.AllParameters), len(fields))
		}
		p, err := parseGrades(fields)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, p)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading batch file: %w", err)
	}

	results, err := pipeline.New(cfg, nil).GradeAll(ctx, samples)
	if err != nil {
		return err
	}
	if gradeJSON {
		return printJSON(results)
	}
	for i, r := range results {
		fmt.Printf("%3d  %4.1f  %s\n", i+1, r.Score, r.Category)
	}
	return nil
}

func printSample(rec *database.SampleRecord) {
	if rec.ID != 0 {
		fmt.Printf("Sample #%d", rec.ID)
	} else {
		fmt.Print("Sample")
	}
	if rec.Label != nil {
		fmt.Printf(" (%s)", *rec.Label)
	}
	fmt.Println()
	for _, param := range organoleptic.AllParameters {
		fmt.Printf("  %-8s %-8s %d\n", param, param.Label(), rec.Parameters.Get(param))
	}
	fmt.Printf("Score:    %.1f\n", rec.Freshness.Score)
	fmt.Printf("Category: %s\n", rec.Freshness.Category)
	if invalid := organoleptic.ListInvalidParameters(rec.Parameters); len(invalid) > 0 {
		fmt.Printf("Not scored (grade 4): %s\n", strings.Join(invalid, ", "))
	}
}

// --- samples command ---

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Manage stored samples",
}

var samplesCategory string

var samplesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored samples",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		items, err := db.ListSamples(organoleptic.Category(samplesCategory))
		if err != nil {
			return err
		}

		if len(items) == 0 {
			fmt.Println("No samples stored. Add one with: fishgrade grade --save")
			return nil
		}

		fmt.Printf("  %-5s %-20s %-5s %-5s %-5s %-5s %-5s %-7s %-5s %s\n",
			"ID", "Label", "Eye", "Gill", "Slime", "Flesh", "Odor", "Texture", "Score", "Category")
		for _, s := range items {
			label := ""
			if s.Label != nil {
				label = *s.Label
				if len(label) > 20 {
					label = label[:17] + "..."
				}
			}
			p := s.Parameters
			fmt.Printf("  %-5d %-20s %-5d %-5d %-5d %-5d %-5d %-7d %-5.1f %s\n",
				s.ID, label, p.Eye, p.Gill, p.Slime, p.Flesh, p.Odor, p.Texture,
				s.Freshness.Score, s.Freshness.Category)
		}
		return nil
	},
}

var samplesSetCmd = &cobra.Command{
	Use:   "set [id] [parameter] [grade]",
	Short: "Change one grade of a stored sample",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sample ID: %s", args[0])
		}
		param, err := organoleptic.ParseParameter(args[1])
		if err != nil {
			return err
		}
		value, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid grade: %s", args[2])
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		rec, err := pipeline.New(cfg, db).EditSample(id, param, value)
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("sample %d not found", id)
		}
		if err != nil {
			return err
		}
		printSample(rec)
		return nil
	},
}

var samplesRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a stored sample",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sample ID: %s", args[0])
		}

		deleted, err := db.DeleteSample(id)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("sample %d not found", id)
		}
		fmt.Printf("Removed sample [%d]\n", id)
		return nil
	},
}

func init() {
	samplesListCmd.Flags().StringVar(&samplesCategory, "category", "", "Only show samples in this category (Prima, Baik, Sedang, Busuk, Invalid)")

	samplesCmd.AddCommand(samplesListCmd)
	samplesCmd.AddCommand(samplesSetCmd)
	samplesCmd.AddCommand(samplesRemoveCmd)
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return webserver.Serve(db, pipeline.New(cfg, db), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on (overrides config)")
}

// --- mcp command ---

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		s := mcptools.NewServer(version, cfg, pipeline.New(cfg, db))
		return server.ServeStdio(s)
	},
}

// readInput reads a named file, or stdin for "-". HTML files are reduced to
// their readable text.
func readInput(name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return "", fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		abs, _ := filepath.Abs(name)
		return ingest.FromHTML(f, &url.URL{Scheme: "file", Path: abs})
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(data), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func openDB() (*database.DB, error) {
	return database.Open(cfg.DBPath())
}
