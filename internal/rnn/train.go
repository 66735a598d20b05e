package rnn

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/optim"
	"github.com/born-ml/born/tensor"
	"github.com/sirupsen/logrus"
)

// Adam hyperparameters besides the learning rate.
const (
	adamBeta1 = 0.9
	adamBeta2 = 0.999
	adamEps   = 1e-8
)

// checkpointModelType is the model type recorded in saved checkpoints.
const checkpointModelType = "RowRNN"

// Train builds the graph, runs MaxIters Adam updates on ds.Train() batches,
// records periodic accuracies, evaluates the full training and test splits,
// and prints a summary to opts.Output.
//
// The graph is torn down before Train returns. ctx is checked between
// iterations; on cancellation the history keeps what was recorded so far.
func (m *Model[B]) Train(ctx context.Context, ds Dataset, opts TrainOptions) (Result, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return Result{}, err
	}
	if ds == nil {
		return Result{}, errorf(ErrInvalidOptions, "nil dataset")
	}
	start := time.Now()

	backend := autodiff.New(m.base)
	net, err := NewNetwork(m.cfg, backend)
	if err != nil {
		return Result{}, err
	}
	optimizer := optim.NewAdam(
		net.Parameters(),
		optim.AdamConfig{
			LR:    m.cfg.LearningRate,
			Betas: [2]float32{adamBeta1, adamBeta2},
			Eps:   adamEps,
		},
		backend,
	)

	tape := backend.Tape()
	tape.StartRecording()
	defer func() {
		tape.Clear()
		tape.StopRecording()
	}()

	run := &trainRun[B]{
		cfg:       m.cfg,
		opts:      opts,
		net:       net,
		optimizer: optimizer,
		backend:   backend,
	}
	m.history.Every = opts.ReportEvery
	m.logger.WithFields(logrus.Fields{
		"category":   m.cfg.Category,
		"regression": m.cfg.Regression,
		"order":      opts.Order.String(),
		"iters":      m.cfg.MaxIters,
		"batch":      m.cfg.BatchSize,
		"hidden":     m.cfg.NHidden,
		"params":     net.NumParameters(),
	}).Info("Starting training")

	for i := 1; i <= m.cfg.MaxIters; i++ {
		if err := ctx.Err(); err != nil {
			return Result{Iterations: i - 1, Elapsed: time.Since(start)},
				fmt.Errorf("rnn: stopped before iteration %d: %w", i, err)
		}

		images, labels := ds.Train().NextBatch(m.cfg.BatchSize)
		loss, err := run.step(images, labels)
		if err != nil {
			return Result{Iterations: i - 1, Elapsed: time.Since(start)},
				fmt.Errorf("rnn: iteration %d: %w", i, err)
		}

		if i%opts.ReportEvery != 0 {
			continue
		}
		trainAcc, valAcc, err := run.sample(ds, images, labels)
		if err != nil {
			return Result{Iterations: i, Elapsed: time.Since(start)},
				fmt.Errorf("rnn: report at iteration %d: %w", i, err)
		}
		m.history.append(trainAcc, valAcc)
		m.logger.WithFields(logrus.Fields{
			"iter":      i,
			"loss":      loss,
			"train_acc": trainAcc,
			"val_acc":   valAcc,
		}).Debug("Accuracy recorded")

		if opts.DisplayEvery > 0 && i%opts.DisplayEvery == 0 {
			fmt.Fprintf(opts.Output, "Iteration %d, Training Accuracy= %.5f, Validation Accuracy= %.5f\n",
				i, trainAcc, valAcc)
		}
	}

	result := Result{Iterations: m.cfg.MaxIters}
	train := ds.Train()
	if result.FinalTrainAccuracy, err = run.accuracy(train.Images(), train.Labels()); err != nil {
		return result, fmt.Errorf("rnn: final training accuracy: %w", err)
	}
	test := ds.Test()
	if result.FinalTestAccuracy, err = run.accuracy(test.Images(), test.Labels()); err != nil {
		return result, fmt.Errorf("rnn: final testing accuracy: %w", err)
	}
	result.Elapsed = time.Since(start)

	fmt.Fprintf(opts.Output, "\n\nTraining is finished in %.1f s !\n", math.Round(result.Elapsed.Seconds()))
	fmt.Fprintf(opts.Output, "Final Training Accuracy: %.5f\n", result.FinalTrainAccuracy)
	fmt.Fprintf(opts.Output, "Final Testing Accuracy:  %.5f\n", result.FinalTestAccuracy)

	if opts.CheckpointPath != "" {
		if err := nn.Save[*autodiff.Backend[B]](net, opts.CheckpointPath, checkpointModelType, m.metadata(opts)); err != nil {
			return result, fmt.Errorf("rnn: save checkpoint: %w", err)
		}
		m.logger.WithField("path", opts.CheckpointPath).Info("Checkpoint saved")
	}

	return result, nil
}

func (m *Model[B]) metadata(opts TrainOptions) map[string]string {
	meta := map[string]string{
		"category":   string(m.cfg.Category),
		"regression": string(m.cfg.Regression),
		"order":      opts.Order.String(),
		"n_input":    strconv.Itoa(m.cfg.NInput),
		"n_steps":    strconv.Itoa(m.cfg.NSteps),
		"n_hidden":   strconv.Itoa(m.cfg.NHidden),
		"n_classes":  strconv.Itoa(m.cfg.NClasses),
	}
	for k, v := range opts.Metadata {
		if _, ok := meta[k]; !ok {
			meta[k] = v
		}
	}
	return meta
}

// trainRun is the graph built by one Train call.
type trainRun[B tensor.Backend] struct {
	cfg       Config
	opts      TrainOptions
	net       *Network[*autodiff.Backend[B]]
	optimizer optim.Optimizer
	backend   *autodiff.Backend[B]
}

// step performs one forward/backward pass and Adam update, returning the
// batch loss.
func (r *trainRun[B]) step(images, labels [][]float32) (float32, error) {
	x, y, err := r.encode(images, labels)
	if err != nil {
		return 0, err
	}

	r.optimizer.ZeroGrad()

	scores := r.net.Forward(x)
	lossRaw := r.backend.CrossEntropy(scores.Raw(), y.Raw())
	loss := lossRaw.AsFloat32()[0]

	outputGrad, err := tensor.NewRaw(lossRaw.Shape(), lossRaw.DType(), r.backend.Device())
	if err != nil {
		return 0, err
	}
	outputGrad.AsFloat32()[0] = 1.0

	grads := r.backend.Tape().Backward(outputGrad, r.backend)
	r.optimizer.Step(grads)
	r.backend.Tape().Clear()

	return loss, nil
}

// sample measures accuracy on a training slice and a validation slice.
func (r *trainRun[B]) sample(ds Dataset, batchImages, batchLabels [][]float32) (train, validation float32, err error) {
	trainImages, trainLabels := batchImages, batchLabels
	valSize := r.cfg.BatchSize
	if r.opts.SampleSize > 0 {
		trainImages, trainLabels = ds.Train().NextBatch(r.opts.SampleSize)
		valSize = r.opts.SampleSize
	}
	valImages, valLabels := ds.Validation().NextBatch(valSize)

	if train, err = r.accuracy(trainImages, trainLabels); err != nil {
		return 0, 0, fmt.Errorf("training sample: %w", err)
	}
	if validation, err = r.accuracy(valImages, valLabels); err != nil {
		return 0, 0, fmt.Errorf("validation sample: %w", err)
	}
	return train, validation, nil
}

// accuracy evaluates the fraction of correctly classified samples with
// gradient recording disabled.
func (r *trainRun[B]) accuracy(images, labels [][]float32) (float32, error) {
	if len(images) == 0 {
		return 0, ErrEmptySplit
	}

	tape := r.backend.Tape()
	wasRecording := tape.IsRecording()
	tape.StopRecording()
	defer func() {
		if wasRecording {
			tape.StartRecording()
		}
	}()

	correct := 0
	for start := 0; start < len(images); start += r.opts.EvalBatchSize {
		end := min(start+r.opts.EvalBatchSize, len(images))
		x, y, err := r.encode(images[start:end], labels[start:end])
		if err != nil {
			return 0, fmt.Errorf("samples %d-%d: %w", start, end, err)
		}
		acc := nn.Accuracy(r.net.Forward(x), y)
		correct += int(math.Round(float64(acc) * float64(end-start)))
	}
	return float32(correct) / float32(len(images)), nil
}

// encode lays out a batch as an input tensor [batch, NSteps, NInput] and a
// class index tensor [batch].
func (r *trainRun[B]) encode(images, labels [][]float32) (
	*tensor.Tensor[float32, *autodiff.Backend[B]],
	*tensor.Tensor[int32, *autodiff.Backend[B]],
	error,
) {
	if len(images) == 0 {
		return nil, nil, ErrEmptySplit
	}
	if len(images) != len(labels) {
		return nil, nil, fmt.Errorf("%w: %d images, %d labels", ErrShapeMismatch, len(images), len(labels))
	}
	for i, l := range labels {
		if len(l) != r.cfg.NClasses {
			return nil, nil, fmt.Errorf("%w: label %d has %d classes, want %d",
				ErrShapeMismatch, i, len(l), r.cfg.NClasses)
		}
	}

	data, err := r.opts.Order.Batch(images, r.cfg.NSteps, r.cfg.NInput)
	if err != nil {
		return nil, nil, err
	}
	x, err := tensor.FromSlice(data, tensor.Shape{len(images), r.cfg.NSteps, r.cfg.NInput}, r.backend)
	if err != nil {
		return nil, nil, fmt.Errorf("images tensor: %w", err)
	}
	y, err := tensor.FromSlice(classIndices(labels), tensor.Shape{len(labels)}, r.backend)
	if err != nil {
		return nil, nil, fmt.Errorf("labels tensor: %w", err)
	}
	return x, y, nil
}
