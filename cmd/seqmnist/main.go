// Package main provides the seqmnist CLI: train a one-layer recurrent
// classifier on MNIST read row by row.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/born-ml/born/backend/cpu"
	"github.com/sirupsen/logrus"

	"github.com/born-ml/seqmnist/internal/config"
	"github.com/born-ml/seqmnist/internal/dataset"
	"github.com/born-ml/seqmnist/internal/report"
	"github.com/born-ml/seqmnist/internal/rnn"
	"github.com/born-ml/seqmnist/internal/runinfo"
)

const version = "v0.1.0"

// Synthetic split sizes used by -synthetic.
var syntheticSizes = dataset.SyntheticSizes{Train: 2000, Validation: 500, Test: 500}

// summaryWindow is the number of trailing history samples averaged in the
// closing log entry.
const summaryWindow = 10

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	dataDir := flag.String("data", "", "Directory containing MNIST files (raw or .gz)")
	synthetic := flag.Bool("synthetic", false, "Use generated digits instead of MNIST files")
	category := flag.String("category", "", "Cell category: basicRNN or LSTM")
	lr := flag.Float64("lr", 0, "Adam learning rate")
	iters := flag.Int("iters", 0, "Number of training iterations")
	batch := flag.Int("batch", 0, "Batch size")
	hidden := flag.Int("hidden", 0, "Hidden units")
	regression := flag.String("regression", "", "Output activation: logistic or linear")
	order := flag.String("order", "", "Image to sequence ordering: C (rows) or F (columns)")
	reportEvery := flag.Int("report-every", 0, "Record accuracies every N iterations")
	sampleSize := flag.Int("sample-size", 0, "Samples per accuracy report (0 = current batch)")
	displayEvery := flag.Int("display-every", 0, "Print accuracies every N iterations")
	seed := flag.Int64("seed", 0, "Seed for batch shuffling")
	csvPath := flag.String("csv", "", "Write the accuracy history as CSV")
	plotPath := flag.String("plot", "", "Plot the accuracy history (.png, .svg, .pdf)")
	checkpoint := flag.String("checkpoint", "", "Save trained parameters (.born)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("seqmnist %s\n", version)
		return
	}

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	cfg.ApplyOverrides(config.Overrides{
		Category:     ifSet(explicit, "category", category),
		LearningRate: ifSet(explicit, "lr", lr),
		MaxIters:     ifSet(explicit, "iters", iters),
		BatchSize:    ifSet(explicit, "batch", batch),
		NHidden:      ifSet(explicit, "hidden", hidden),
		Regression:   ifSet(explicit, "regression", regression),
		Order:        ifSet(explicit, "order", order),
		ReportEvery:  ifSet(explicit, "report-every", reportEvery),
		SampleSize:   ifSet(explicit, "sample-size", sampleSize),
		DisplayEvery: ifSet(explicit, "display-every", displayEvery),
		DataDir:      ifSet(explicit, "data", dataDir),
		Synthetic:    ifSet(explicit, "synthetic", synthetic),
		Seed:         ifSet(explicit, "seed", seed),
		CSVPath:      ifSet(explicit, "csv", csvPath),
		PlotPath:     ifSet(explicit, "plot", plotPath),
		Checkpoint:   ifSet(explicit, "checkpoint", checkpoint),
		LogLevel:     ifSet(explicit, "log-level", logLevel),
	})
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid config: %v", err)
	}
	level, _ := cfg.Level()
	logrus.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logrus.WithError(err).Fatal("Training failed")
	}
}

// ifSet returns v when the flag was given on the command line.
func ifSet[T any](explicit map[string]bool, name string, v *T) *T {
	if explicit[name] {
		return v
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config) error {
	modelCfg, err := cfg.Model()
	if err != nil {
		return err
	}
	opts, err := cfg.TrainOptions()
	if err != nil {
		return err
	}

	data, err := loadData(cfg)
	if err != nil {
		return err
	}

	backend := cpu.New()
	info := runinfo.New(backend.Name())
	logrus.WithFields(info.Fields()).Info("Run started")
	opts.Metadata = info.Metadata()

	model, err := rnn.New(modelCfg, backend)
	if err != nil {
		return err
	}
	result, err := model.Train(ctx, data, opts)
	if err != nil {
		return err
	}

	history := model.History()
	fields := logrus.Fields{
		"run":       info.ID,
		"iters":     result.Iterations,
		"train_acc": result.FinalTrainAccuracy,
		"test_acc":  result.FinalTestAccuracy,
		"elapsed":   result.Elapsed,
	}
	if summary, err := report.Summarize(history, summaryWindow); err == nil {
		fields["best_val_acc"] = summary.BestValidation
		fields["best_iter"] = summary.BestIteration
		fields["tail_val_mean"] = summary.TailValidationMean
		fields["tail_val_std"] = summary.TailValidationStd
	}
	logrus.WithFields(fields).Info("Run finished")

	if cfg.CSVPath != "" {
		if err := report.SaveCSV(cfg.CSVPath, history); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"path": cfg.CSVPath, "samples": history.Len()}).Info("History written")
	}
	if cfg.PlotPath != "" {
		title := fmt.Sprintf("%s on MNIST (%s order)", modelCfg.Category, opts.Order)
		if err := report.PlotHistory(cfg.PlotPath, history, title); err != nil {
			return err
		}
		logrus.WithField("path", cfg.PlotPath).Info("History plotted")
	}
	return nil
}

func loadData(cfg *config.Config) (*dataset.MNIST, error) {
	if cfg.Synthetic {
		logrus.WithFields(logrus.Fields{
			"train":      syntheticSizes.Train,
			"validation": syntheticSizes.Validation,
			"test":       syntheticSizes.Test,
		}).Info("Using synthetic digits")
		return dataset.NewSynthetic(syntheticSizes, cfg.Seed)
	}

	data, err := dataset.Load(cfg.DataDir, dataset.Options{
		ValidationSize: cfg.ValidationSize,
		Seed:           cfg.Seed,
		Verify:         cfg.Verify,
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w\n\nDownload the four MNIST archives into %s:\n"+
			"  %s.gz\n  %s.gz\n  %s.gz\n  %s.gz\n"+
			"or run with -synthetic to use generated digits", err, cfg.DataDir,
			dataset.TrainImagesFile, dataset.TrainLabelsFile, dataset.TestImagesFile, dataset.TestLabelsFile)
	}
	return data, err
}
