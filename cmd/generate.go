package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cwbudde/asgen/internal/config"
	"github.com/cwbudde/asgen/internal/gen"
	"github.com/cwbudde/asgen/internal/opt"
	"github.com/cwbudde/asgen/internal/store"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dataPath   string
	classID    string
	outDir     string
	genSize    int
	budget     int
	initNum    int
	lower      float64
	upper      float64
	seed       int64
	polarity   string
	appendMode string
	autoSet    bool
	popSize    int
	maxIters   int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate synthetic exemplars for one class",
	Long: `Runs the positive and/or negative generation pass for one class.
Each round fits a fresh classifier per candidate evaluation and writes the
accepted vector to the append log under datastorage/ and the full set to
gendata/. Run records and traces are kept under runs/.`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML config file (flags override its values)")
	f.StringVar(&dataPath, "data", "", "Original class data, one whitespace-separated vector per line")
	f.StringVar(&classID, "class", "", "Class identifier used in output names")
	f.StringVar(&outDir, "out", ".", "Output root directory")
	f.IntVar(&genSize, "size", 10, "Exemplars to generate per polarity")
	f.IntVar(&budget, "budget", 1000, "Objective evaluations per round")
	f.IntVar(&initNum, "init", 10, "Optimizer seeds drawn from the original data per round")
	f.Float64Var(&lower, "lower", -1, "Lower bound of every feature")
	f.Float64Var(&upper, "upper", 1, "Upper bound of every feature")
	f.Int64Var(&seed, "seed", 42, "Random seed")
	f.StringVar(&polarity, "polarity", config.PolarityBoth, "Passes to run: both, positive, negative")
	f.StringVar(&appendMode, "append-mode", "line", "Append log mode: line, cumulative")
	f.BoolVar(&autoSet, "auto-set", true, "Derive optimizer population and iterations from the budget")
	f.IntVar(&popSize, "pop", 20, "Optimizer population size (without --auto-set)")
	f.IntVar(&maxIters, "iters", 25, "Optimizer iterations (without --auto-set)")

	rootCmd.AddCommand(generateCmd)
}

// loadGenerateConfig merges the config file and the explicitly set flags.
func loadGenerateConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("data") {
		cfg.Data = dataPath
	}
	if changed("class") {
		cfg.Class = classID
	}
	if changed("out") {
		cfg.OutDir = outDir
	}
	if changed("size") {
		cfg.GenerateSize = genSize
	}
	if changed("budget") {
		cfg.Budget = budget
	}
	if changed("init") {
		cfg.InitNum = initNum
	}
	if changed("lower") {
		cfg.Lower = lower
	}
	if changed("upper") {
		cfg.Upper = upper
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("polarity") {
		cfg.Polarity = polarity
	}
	if changed("append-mode") {
		cfg.AppendMode = appendMode
	}
	if changed("auto-set") {
		cfg.Optimizer.AutoSet = autoSet
	}
	if changed("pop") {
		cfg.Optimizer.PopSize = popSize
	}
	if changed("iters") {
		cfg.Optimizer.MaxIters = maxIters
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadGenerateConfig(cmd)
	if err != nil {
		return err
	}
	mode, err := store.ParseAppendMode(cfg.AppendMode)
	if err != nil {
		return err
	}

	original, err := store.LoadVectors(cfg.Data)
	if err != nil {
		return err
	}
	slog.Info("Loaded original data", "path", cfg.Data, "points", len(original))

	session, err := gen.NewSession(original, gen.SessionConfig{
		ClassID:      cfg.Class,
		GenerateSize: cfg.GenerateSize,
		Budget:       cfg.Budget,
		InitNum:      cfg.InitNum,
		Lower:        cfg.Lower,
		Upper:        cfg.Upper,
		Algorithm:    cfg.Optimizer.Algorithm,
		AutoSet:      cfg.Optimizer.AutoSet,
	})
	if err != nil {
		return err
	}

	runStore, err := store.NewFSStore(cfg.OutDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	clf := cfg.NewClassifier()
	optimizer := opt.NewMayfly(cfg.Optimizer.MaxIters, cfg.Optimizer.PopSize, cfg.Seed)
	started := time.Now()

	for _, name := range cfg.Polarities() {
		p, err := gen.ParsePolarity(name)
		if err != nil {
			return err
		}

		set, err := runPass(runStore, session, clf, optimizer, cfg, p, mode, started)
		if err != nil {
			return err
		}
		fmt.Printf("Generated %d %s exemplar(s) for class %s\n", len(set), p, cfg.Class)
	}

	return nil
}

// runPass executes one polarity pass and keeps its run record current.
func runPass(runStore *store.FSStore, session *gen.Session, clf gen.Classifier, optimizer opt.Optimizer,
	cfg *config.Config, p gen.Polarity, mode store.AppendMode, started time.Time) ([][]float64, error) {

	record := store.NewRunRecord(cfg.Class, p.String(), store.RunConfig{
		DataPath:     cfg.Data,
		GenerateSize: cfg.GenerateSize,
		Budget:       cfg.Budget,
		InitNum:      cfg.InitNum,
		Lower:        cfg.Lower,
		Upper:        cfg.Upper,
		Seed:         cfg.Seed,
		Algorithm:    cfg.Optimizer.Algorithm,
		AppendMode:   cfg.AppendMode,
	})
	record.Deta = session.Deta()
	record.DetaMin = session.DetaMin()
	record.State = store.StateRunning

	sink, err := store.NewFSSink(cfg.OutDir, cfg.Class, p, mode, started)
	if err != nil {
		return nil, err
	}
	tw, err := store.NewTraceWriter(runStore.RunDir(record.ID), false)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace: %w", err)
	}
	sink.WithTrace(tw).WithRun(runStore, record)
	defer sink.Close()

	if err := runStore.SaveRun(record); err != nil {
		return nil, fmt.Errorf("failed to save run record: %w", err)
	}

	slog.Info("Run started", "run_id", record.ID, "polarity", p, "class", cfg.Class)

	// Seeds differ per polarity but stay reproducible
	rng := rand.New(rand.NewSource(cfg.Seed + int64(p)))
	set, genErr := gen.NewGenerator(session, clf, optimizer, sink, rng).Generate(p)

	if genErr != nil {
		record.Accepted = len(set)
		record.MarkFailed(genErr)
		slog.Error("Generation pass failed",
			"run_id", record.ID,
			"polarity", p,
			"accepted", len(set),
			"error", genErr,
		)
	} else {
		record.MarkCompleted()
		slog.Info("Run completed", "run_id", record.ID, "polarity", p, "accepted", len(set))
	}

	if err := runStore.SaveRun(record); err != nil {
		return set, errors.Join(genErr, fmt.Errorf("failed to save run record: %w", err))
	}
	return set, genErr
}
