package rnn_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seqmnist/internal/dataset"
	"github.com/born-ml/seqmnist/internal/rnn"
)

func trainConfig(category rnn.Category) rnn.Config {
	cfg := rnn.DefaultConfig()
	cfg.Category = category
	cfg.MaxIters = 20
	cfg.BatchSize = 16
	cfg.NHidden = 8
	return cfg
}

func syntheticData(t *testing.T) *dataset.MNIST {
	t.Helper()
	data, err := dataset.NewSynthetic(dataset.SyntheticSizes{Train: 64, Validation: 32, Test: 32}, 7)
	require.NoError(t, err)
	return data
}

func newQuietModel(t *testing.T, cfg rnn.Config) *rnn.Model[*cpu.Backend] {
	t.Helper()
	model, err := rnn.New(cfg, cpu.New())
	require.NoError(t, err)
	model.SetLogger(nil)
	return model
}

func TestTrainRecordsHistory(t *testing.T) {
	for _, category := range []rnn.Category{rnn.BasicRNN, rnn.LSTM} {
		t.Run(string(category), func(t *testing.T) {
			model := newQuietModel(t, trainConfig(category))

			var out bytes.Buffer
			result, err := model.Train(context.Background(), syntheticData(t), rnn.TrainOptions{
				ReportEvery:  5,
				DisplayEvery: 10,
				Output:       &out,
			})
			require.NoError(t, err)
			assert.Equal(t, 20, result.Iterations)

			train, validation := model.Params()
			assert.Len(t, train, 4)
			assert.Len(t, validation, 4)
			for i := range train {
				assert.GreaterOrEqual(t, train[i], float32(0))
				assert.LessOrEqual(t, train[i], float32(1))
				assert.GreaterOrEqual(t, validation[i], float32(0))
				assert.LessOrEqual(t, validation[i], float32(1))
			}
			assert.GreaterOrEqual(t, result.FinalTrainAccuracy, float32(0))
			assert.LessOrEqual(t, result.FinalTrainAccuracy, float32(1))
			assert.GreaterOrEqual(t, result.FinalTestAccuracy, float32(0))
			assert.LessOrEqual(t, result.FinalTestAccuracy, float32(1))

			text := out.String()
			assert.Contains(t, text, "Iteration 10, Training Accuracy= ")
			assert.Contains(t, text, "Iteration 20, Training Accuracy= ")
			assert.NotContains(t, text, "Iteration 5,")
			assert.Regexp(t, `\n\nTraining is finished in \d+\.0 s !\n`, text)
			assert.Contains(t, text, "Final Training Accuracy: ")
			assert.Contains(t, text, "Final Testing Accuracy:  ")
		})
	}
}

func TestTrainColumnOrderAndSampleSize(t *testing.T) {
	cfg := trainConfig(rnn.BasicRNN)
	cfg.Regression = rnn.Linear
	model := newQuietModel(t, cfg)

	_, err := model.Train(context.Background(), syntheticData(t), rnn.TrainOptions{
		Order:       rnn.OrderF,
		ReportEvery: 10,
		SampleSize:  24,
		Output:      &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, model.History().Len())
	assert.Equal(t, 10, model.History().Every)
}

func TestParamsReturnsCopies(t *testing.T) {
	model := newQuietModel(t, trainConfig(rnn.BasicRNN))
	_, err := model.Train(context.Background(), syntheticData(t), rnn.TrainOptions{
		ReportEvery: 10,
		Output:      &bytes.Buffer{},
	})
	require.NoError(t, err)

	train, validation := model.Params()
	require.Len(t, train, 2)
	want := train[0]
	train[0] = 42
	validation[0] = 42

	again, againVal := model.Params()
	assert.Equal(t, want, again[0])
	assert.NotEqual(t, float32(42), againVal[0])
}

func TestParamsBeforeTraining(t *testing.T) {
	model := newQuietModel(t, trainConfig(rnn.LSTM))
	train, validation := model.Params()
	assert.Empty(t, train)
	assert.Empty(t, validation)
}

func TestTrainTwiceAccumulatesHistory(t *testing.T) {
	model := newQuietModel(t, trainConfig(rnn.BasicRNN))
	data := syntheticData(t)
	opts := rnn.TrainOptions{ReportEvery: 10, Output: &bytes.Buffer{}}

	_, err := model.Train(context.Background(), data, opts)
	require.NoError(t, err)
	_, err = model.Train(context.Background(), data, opts)
	require.NoError(t, err)

	assert.Equal(t, 4, model.History().Len())
}

func TestTrainCanceled(t *testing.T) {
	model := newQuietModel(t, trainConfig(rnn.LSTM))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := model.Train(ctx, syntheticData(t), rnn.TrainOptions{Output: &bytes.Buffer{}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Iterations)
	assert.Equal(t, 0, model.History().Len())
}

func TestTrainInvalidOptions(t *testing.T) {
	model := newQuietModel(t, trainConfig(rnn.LSTM))
	data := syntheticData(t)

	_, err := model.Train(context.Background(), data, rnn.TrainOptions{Order: 'X'})
	assert.ErrorIs(t, err, rnn.ErrInvalidOrder)

	_, err = model.Train(context.Background(), data, rnn.TrainOptions{SampleSize: -1})
	assert.ErrorIs(t, err, rnn.ErrInvalidOptions)

	_, err = model.Train(context.Background(), nil, rnn.TrainOptions{})
	assert.ErrorIs(t, err, rnn.ErrInvalidOptions)
}

func TestTrainShapeMismatch(t *testing.T) {
	cfg := trainConfig(rnn.BasicRNN)
	cfg.NSteps = 14
	model := newQuietModel(t, cfg)

	_, err := model.Train(context.Background(), syntheticData(t), rnn.TrainOptions{Output: &bytes.Buffer{}})
	assert.ErrorIs(t, err, rnn.ErrShapeMismatch)
}

func TestNewUnknownCategory(t *testing.T) {
	cfg := rnn.DefaultConfig()
	cfg.Category = "GRU"
	_, err := rnn.New(cfg, cpu.New())
	assert.ErrorIs(t, err, rnn.ErrUnknownCategory)
}

func TestModelConfigIsCopied(t *testing.T) {
	cfg := trainConfig(rnn.LSTM)
	model := newQuietModel(t, cfg)
	cfg.NHidden = 999
	assert.Equal(t, 8, model.Config().NHidden)
}

func TestTrainSavesCheckpoint(t *testing.T) {
	cfg := trainConfig(rnn.LSTM)
	cfg.MaxIters = 10
	model := newQuietModel(t, cfg)

	path := filepath.Join(t.TempDir(), "rowrnn.born")
	_, err := model.Train(context.Background(), syntheticData(t), rnn.TrainOptions{
		ReportEvery:    5,
		CheckpointPath: path,
		Metadata:       map[string]string{"run": "test"},
		Output:         &bytes.Buffer{},
	})
	require.NoError(t, err)

	backend := autodiff.New(cpu.New())
	net, err := rnn.NewNetwork(cfg, backend)
	require.NoError(t, err)
	header, err := nn.Load(path, backend, net)
	require.NoError(t, err)

	assert.Equal(t, "RowRNN", header.ModelType)
	assert.Equal(t, "LSTM", header.Metadata["category"])
	assert.Equal(t, "C", header.Metadata["order"])
	assert.Equal(t, "test", header.Metadata["run"])

	x := tensor.Zeros[float32](tensor.Shape{2, cfg.NSteps, cfg.NInput}, backend)
	assert.Equal(t, tensor.Shape{2, cfg.NClasses}, net.Forward(x).Shape())
}

func TestTrainLogsReports(t *testing.T) {
	model := newQuietModel(t, trainConfig(rnn.BasicRNN))
	var logs bytes.Buffer
	model.SetLogger(newLogger(&logs, logrus.DebugLevel))

	_, err := model.Train(context.Background(), syntheticData(t), rnn.TrainOptions{
		ReportEvery: 10,
		Output:      &bytes.Buffer{},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "category=basicRNN")
	assert.Contains(t, lines[1], "iter=10")
	assert.Contains(t, lines[2], "iter=20")
}

func TestTrainInfoLevelHidesReports(t *testing.T) {
	model := newQuietModel(t, trainConfig(rnn.BasicRNN))
	var logs bytes.Buffer
	model.SetLogger(newLogger(&logs, logrus.InfoLevel))

	_, err := model.Train(context.Background(), syntheticData(t), rnn.TrainOptions{
		ReportEvery: 10,
		Output:      &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "iter=")
	assert.Contains(t, logs.String(), "Starting training")
}
