package cmd

import (
	"log"
	"path/filepath"

	"github.com/derivekit/derivekit/internal/comment"
	"github.com/derivekit/derivekit/internal/config"
	"github.com/derivekit/derivekit/rewrite"
	"github.com/spf13/cobra"
)

const (
	defaultPackagePath = ""
	defaultDiffFile    = ""
	defaultSweepLimit  = 0
	defaultJobs        = 0
)

var (
	packagePath string
	diffFile    string
	writeFiles  bool
	formatFiles bool
	useCache    bool
	watchFiles  bool
	sweepLimit  int
	jobs        int
	debug       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "generate derived methods",
	Long:  "scan the package at --path and generate the methods its annotations request",
	Args:  cobra.ExactArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		Generate()
	},
}

// buildConfig layers the config file under the command-line flags and
// validates the result.
func buildConfig() *config.Config {
	if packagePath == "" {
		log.Fatal("--path is required")
	}

	cfg := config.Default()
	cfg.Path = packagePath
	if err := config.LoadFile(cfg, filepath.Join(packagePath, config.FileName)); err != nil {
		cobra.CheckErr(err)
	}

	if diffFile != "" {
		cfg.DiffFile = diffFile
	}
	if writeFiles {
		cfg.Write = true
	}
	if formatFiles {
		cfg.Format = true
	}
	if useCache && cfg.CacheFile == "" {
		cfg.CacheFile = cfg.DefaultCacheFile()
	}
	if sweepLimit > 0 {
		cfg.SweepLimit = sweepLimit
	}
	if jobs > 0 {
		cfg.Concurrency = jobs
	}
	if debug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		cobra.CheckErr(err)
	}
	return cfg
}

func Generate() {
	cfg := buildConfig()
	comment.EnableConsolePrinter()

	if watchFiles {
		if err := watch(cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	failed := runOnce(cfg)
	comment.WriteAll()
	if failed > 0 {
		log.Fatalf("%d unit(s) failed", failed)
	}
}

// runOnce executes one full pipeline pass and returns the number of
// failed units.
func runOnce(cfg *config.Config) int {
	manager := rewrite.NewManager(cfg)

	if err := manager.DiscoverUnits(); err != nil {
		log.Fatal(err)
	}

	manager.MergeFragments()
	manager.Rewrite()

	if err := manager.WriteOutputs(); err != nil {
		log.Fatal(err)
	}

	rewritten := 0
	for _, state := range manager.Results() {
		if state.Status == rewrite.StatusRewritten {
			rewritten++
		}
		if cfg.Debug {
			log.Printf("%s: %s", state.Rel, state.Status)
		}
	}

	failures := manager.FailedUnits()
	for _, state := range failures {
		log.Printf("error: %s: %v", state.Rel, state.Err)
	}
	log.Printf("%d unit(s) rewritten, %d failed", rewritten, len(failures))

	return len(failures)
}

func init() {
	generateCmd.Flags().StringVar(&packagePath, "path", defaultPackagePath, "specify package path")
	generateCmd.Flags().StringVar(&diffFile, "diff", defaultDiffFile, "specify diff output file path")
	generateCmd.Flags().BoolVar(&writeFiles, "write", false, "rewrite files in place instead of emitting a diff")
	generateCmd.Flags().BoolVar(&formatFiles, "format", false, "run goimports over rewritten files")
	generateCmd.Flags().BoolVar(&useCache, "cache", false, "skip units that were stable in a previous run")
	generateCmd.Flags().BoolVar(&watchFiles, "watch", false, "re-run generation when source files change")
	generateCmd.Flags().IntVar(&sweepLimit, "sweeps", defaultSweepLimit, "override the per-unit sweep budget")
	generateCmd.Flags().IntVar(&jobs, "jobs", defaultJobs, "number of units rewritten in parallel")
	generateCmd.Flags().BoolVar(&debug, "debug", false, "enable debugging output")
	cobra.MarkFlagFilename(generateCmd.Flags(), "diff", ".diff") // for file completion

	rootCmd.AddCommand(generateCmd)
}
