// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package rnn trains one-layer recurrent classifiers that read an image
// as a sequence of rows.
//
// # Overview
//
// A Model is configured once with a Config and trained with Train. Every
// ReportEvery iterations the model records the accuracy on a training
// sample and on a validation sample. Params returns both sequences.
//
// Two cells are available:
//   - BasicRNN: h = tanh(x·Wx + h·Wh + b)
//   - LSTM: input, candidate, forget and output gates with forget bias 1.0
//
// # Basic Usage
//
//	import (
//	    "context"
//
//	    "github.com/born-ml/born/backend/cpu"
//	    "github.com/born-ml/seqmnist/mnist"
//	    "github.com/born-ml/seqmnist/rnn"
//	)
//
//	func main() {
//	    data, _ := mnist.Load("./data", mnist.Options{})
//
//	    cfg := rnn.DefaultConfig()
//	    cfg.Category = rnn.BasicRNN
//	    model, _ := rnn.New(cfg, cpu.New())
//
//	    model.Train(context.Background(), data, rnn.TrainOptions{Order: rnn.OrderC})
//	    train, validation := model.Params()
//	    _, _ = train, validation
//	}
package rnn
