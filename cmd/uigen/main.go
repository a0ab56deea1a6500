package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"uigen/internal/config"
	"uigen/internal/conflict"
	"uigen/internal/detect"
	"uigen/internal/generator"
	"uigen/internal/gitdrift"
	"uigen/internal/knowledge"
	"uigen/internal/logging"
	"uigen/internal/server"
	"uigen/internal/storage"
	"uigen/internal/taxonomy"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "uigen",
		Short: "Detects a project's UI stack and generates components that match it",
	}

	cfgPath string
	dbPath  string

	detectJSON bool
	genPrompt  string
	genName    string
	genProps   []string
	genOut     string
	serveAddr  string
	historyN   int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "Path to the uigen config file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the local history database (SQLite), overrides config")

	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Print the decision as JSON instead of the summary")

	generateCmd.Flags().StringVarP(&genPrompt, "prompt", "p", "", "What the component should do")
	generateCmd.Flags().StringVarP(&genName, "name", "n", "", "Component name (PascalCase)")
	generateCmd.Flags().StringSliceVar(&genProps, "props", nil, "Props the component must accept")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "Directory for generated files (default: src/components under the project root)")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overrides config")

	historyCmd.Flags().IntVar(&historyN, "limit", 10, "How many entries to show")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig reads the config file, wires logging, and applies flag
// overrides.
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.Init(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	return cfg
}

func initStore(cfg *config.Config) (*storage.SQLiteStore, error) {
	return storage.NewSQLiteStore(cfg.Storage.Path)
}

func initWriter(ctx context.Context, cfg *config.Config) (knowledge.CodeWriter, error) {
	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("AI API key not configured (set UIGEN_API_KEY or ai.api_key in %s)", cfgPath)
	}
	return knowledge.NewWriter(ctx, knowledge.WriterOptions{
		Provider:   cfg.AI.Provider,
		APIKey:     cfg.AI.APIKey,
		Model:      cfg.AI.Model,
		BaseURL:    cfg.AI.BaseURL,
		MaxRetries: cfg.AI.MaxRetries,
	})
}

func newDriftChecker() *gitdrift.Checker {
	return gitdrift.New(taxonomy.DefaultFrameworkCatalog(), taxonomy.DefaultStylingCatalog())
}

// recordAnalysis persists the decision for later reuse. Best effort: a
// read-only checkout should still get its detection output.
func recordAnalysis(ctx context.Context, store *storage.SQLiteStore, drift *gitdrift.Checker, root string, dec *detect.Decision) {
	now := time.Now().UTC()
	a := &storage.Analysis{
		Root:         root,
		ManifestHash: detect.ManifestHash(root),
		Head:         drift.Head(ctx, root),
		Decision:     dec,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.SaveAnalysis(ctx, a); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record analysis: %v\n", err)
	}
}

// resolveDecision reuses the recorded analysis when the tree still matches
// it, otherwise re-detects and records the fresh result.
func resolveDecision(ctx context.Context, store *storage.SQLiteStore, root string) (*detect.Decision, error) {
	drift := newDriftChecker()

	prev, err := store.LatestAnalysis(ctx, root)
	if err == nil && prev.ManifestHash == detect.ManifestHash(root) {
		d := drift.Since(ctx, root, prev.Head)
		if d.State != gitdrift.StateDrifted {
			fmt.Printf("♻️  Reusing analysis from %s\n", prev.UpdatedAt.Local().Format("2006-01-02 15:04"))
			return prev.Decision, nil
		}
		fmt.Printf("🔁 %d watched paths changed since the last analysis, re-detecting...\n", len(d.Paths))
	}

	dec, err := detect.New().Detect(ctx, root)
	if err != nil {
		return nil, err
	}
	recordAnalysis(ctx, store, drift, root, dec)
	return dec, nil
}

var detectCmd = &cobra.Command{
	Use:   "detect [path]",
	Short: "Detect the UI framework and styling system of a project",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			log.Fatalf("Failed to resolve %s: %v", root, err)
		}

		ctx := cmd.Context()
		if !detectJSON {
			fmt.Printf("📂 Analyzing project: %s\n", absRoot)
		}

		dec, err := detect.New().Detect(ctx, absRoot)
		if err != nil {
			log.Fatalf("Detection failed: %v", err)
		}

		if store, err := initStore(cfg); err == nil {
			recordAnalysis(ctx, store, newDriftChecker(), absRoot, dec)
			store.Close()
		} else {
			fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		}

		if detectJSON {
			out, err := json.MarshalIndent(dec, "", "  ")
			if err != nil {
				log.Fatalf("Failed to encode decision: %v", err)
			}
			fmt.Println(string(out))
			return
		}
		renderDecision(dec)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Generate a component that matches the project's detected stack",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if strings.TrimSpace(genName) == "" {
			log.Fatalf("--name is required: what should the component be called?")
		}
		if strings.TrimSpace(genPrompt) == "" {
			log.Fatalf("--prompt is required: describe what the component does")
		}

		cfg := loadConfig()
		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			log.Fatalf("Failed to resolve %s: %v", root, err)
		}

		ctx := cmd.Context()

		store, err := initStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		writer, err := initWriter(ctx, cfg)
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}

		fmt.Printf("📂 Project: %s\n", absRoot)
		dec, err := resolveDecision(ctx, store, absRoot)
		if err != nil {
			log.Fatalf("Detection failed: %v", err)
		}
		fmt.Printf("🧭 Stack: %s + %s (confidence %s)\n",
			color.New(color.FgHiGreen).Sprint(dec.Framework.Label),
			color.New(color.FgHiGreen).Sprint(dec.Styling.Label),
			confidenceString(dec.Confidence))
		if dec.Unresolved {
			color.Yellow("⚠️  The stack decision has unresolved conflicts; generated code may target the wrong library.")
		}

		outDir := genOut
		if outDir == "" {
			outDir = filepath.Join(absRoot, "src", "components")
		}

		gen, err := generator.New(writer, generator.WithProgress(printProgress))
		if err != nil {
			log.Fatalf("Failed to build generator: %v", err)
		}

		req := knowledge.ComponentRequest{
			Name:        genName,
			Description: genPrompt,
			Props:       genProps,
		}

		fmt.Printf("🚀 Generating %s...\n", genName)
		start := time.Now()
		res, err := gen.Generate(ctx, dec, req, outDir)
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}

		fmt.Printf("\n✅ %s generated in %v (quality %s)\n",
			res.Component.ComponentName,
			time.Since(start).Round(time.Millisecond),
			confidenceString(res.Quality.Score))
		for _, p := range res.Written {
			fmt.Printf("   📄 %s\n", p)
		}
		if len(res.Quality.Issues) > 0 {
			color.Yellow("⚠️  Remaining issues: %s", strings.Join(res.Quality.Issues, ", "))
		}

		reportPath := filepath.Join(outDir, res.Component.ComponentName+".report.json")
		if err := res.Report.Save(reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save report: %v\n", err)
		} else {
			fmt.Printf("   🧾 %s\n", reportPath)
		}

		rec := &storage.ComponentRecord{
			ID:        uuid.NewString(),
			Root:      absRoot,
			Name:      res.Component.ComponentName,
			Request:   req,
			Files:     res.Component.Files,
			Quality:   res.Quality.Score,
			Signals:   res.Report.SignalCodes(),
			CreatedAt: time.Now().UTC(),
		}
		if err := store.SaveComponent(ctx, rec); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not record component: %v\n", err)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve detection and generation over HTTP with SSE progress",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		store, err := initStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		ctx := cmd.Context()
		var writer knowledge.CodeWriter
		if cfg.AI.APIKey == "" {
			color.Yellow("⚠️  No AI API key configured; /api/generate will respond 503")
		} else {
			writer, err = initWriter(ctx, cfg)
			if err != nil {
				log.Fatalf("Failed to build code writer: %v", err)
			}
		}

		srv, err := server.New(server.Options{
			Addr:   cfg.Server.Addr,
			Store:  store,
			Writer: writer,
		})
		if err != nil {
			log.Fatalf("Failed to build server: %v", err)
		}

		go func() {
			if err := srv.Start(); err != nil {
				log.Printf("Server error: %v", err)
			}
		}()
		fmt.Printf("🌐 Listening on %s\n", cfg.Server.Addr)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		fmt.Println("\n👋 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent analyses and generated components",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store, err := initStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		ctx := cmd.Context()
		drift := newDriftChecker()

		analyses, err := store.ListAnalyses(ctx, historyN)
		if err != nil {
			log.Fatalf("Failed to load history: %v", err)
		}
		if len(analyses) == 0 {
			fmt.Println("No analyses recorded yet. Run 'uigen detect' first.")
			return
		}

		fmt.Println("🕘 Recent analyses:")
		for _, a := range analyses {
			fmt.Printf("  %s  %s + %s  %s%s\n",
				a.UpdatedAt.Local().Format("2006-01-02 15:04"),
				color.New(color.FgHiGreen).Sprint(a.Decision.Framework.Label),
				color.New(color.FgHiGreen).Sprint(a.Decision.Styling.Label),
				a.Root,
				staleMark(ctx, drift, a))
		}

		comps, err := store.ListComponents(ctx, "", historyN)
		if err != nil {
			log.Fatalf("Failed to load components: %v", err)
		}
		if len(comps) > 0 {
			fmt.Println("\n🧩 Recent components:")
			for _, c := range comps {
				fmt.Printf("  %s  %s (quality %.2f, %d files)  %s\n",
					c.CreatedAt.Local().Format("2006-01-02 15:04"),
					c.Name, c.Quality, len(c.Files), c.Root)
			}
		}
	},
}

// staleMark annotates an analysis whose project has moved on since it was
// recorded.
func staleMark(ctx context.Context, drift *gitdrift.Checker, a *storage.Analysis) string {
	if detect.ManifestHash(a.Root) != a.ManifestHash {
		return color.YellowString(" (manifest changed)")
	}
	if d := drift.Since(ctx, a.Root, a.Head); d.State == gitdrift.StateDrifted {
		return color.YellowString(" (drifted)")
	}
	return ""
}

var stageEmoji = map[string]string{
	"strategy": "🧭",
	"write":    "✍️",
	"parse":    "🧪",
	"quality":  "🧹",
	"repair":   "🔧",
	"emit":     "💾",
	"done":     "🎉",
}

func printProgress(stage, detail string) {
	emoji, ok := stageEmoji[stage]
	if !ok {
		emoji = "•"
	}
	fmt.Printf("  %s %s: %s\n", emoji, stage, detail)
}

func renderDecision(dec *detect.Decision) {
	fmt.Println()
	fmt.Printf("🧭 Framework: %s\n", pickLine(dec.Framework))
	fmt.Printf("🎨 Styling:   %s\n", pickLine(dec.Styling))
	fmt.Printf("📊 Overall confidence: %s\n", confidenceString(dec.Confidence))

	if len(dec.Conflicts) > 0 {
		if dec.Unresolved {
			color.Red("\n❌ Conflicts (manual review needed):")
		} else {
			color.Yellow("\n⚔️  Conflicts:")
		}
		for _, f := range dec.Conflicts {
			if f.Status == conflict.StatusUnresolved {
				color.Red("   %s", f.String())
				continue
			}
			fmt.Printf("   %s\n", f.String())
		}
	}

	if len(dec.Warnings) > 0 {
		color.Yellow("\n⚠️  Warnings:")
		for _, w := range dec.Warnings {
			fmt.Printf("   - %s\n", w)
		}
	}
	if len(dec.Recommendations) > 0 {
		fmt.Println("\n💡 Recommendations:")
		for _, r := range dec.Recommendations {
			fmt.Printf("   - %s\n", r)
		}
	}
}

func pickLine(p detect.Pick) string {
	label := color.New(color.FgHiGreen).Sprint(p.Label)
	if p.Fallback {
		label = color.New(color.FgHiBlack).Sprintf("%s (fallback)", p.Label)
	}
	line := fmt.Sprintf("%s  %s", label, confidenceString(p.Confidence))
	if len(p.Secondary) > 0 {
		names := make([]string, 0, len(p.Secondary))
		for _, s := range p.Secondary {
			names = append(names, string(s.Label))
		}
		line += color.New(color.FgHiBlack).Sprintf("  (also seen: %s)", strings.Join(names, ", "))
	}
	return line
}

func confidenceString(v float64) string {
	pct := fmt.Sprintf("%.0f%%", v*100)
	switch {
	case v >= 0.7:
		return color.GreenString(pct)
	case v >= 0.4:
		return color.YellowString(pct)
	default:
		return color.RedString(pct)
	}
}
