/*
 * train.go, part of gonnp.
 *
 * Copyright 2023 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 * goNNP is currently developed at the Universidad de Santiago de Chile
 * (USACH)
 *
 */

//Package train binds a composed potential to named outputs, each with a
//loss function, a scalar weight and a set of metrics. Optimizer stepping,
//checkpoint scheduling and epoch iteration belong to an external training
//loop; the only contract here is to produce, per batch, the scalar total
//loss and the per-output metric values.
package train

import (
	"fmt"
	"math"

	nnp "github.com/rmera/gonnp"
	"github.com/rmera/gonnp/model"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Loss maps a (prediction, reference) array pair to a scalar, normalized
// per its own convention.
type Loss interface {
	Eval(pred, ref *mat.Dense) float64
	Name() string
}

// MSE is the mean squared error, averaged over every element of the array
// (so for per-atom properties, over atoms and components as well as over
// the batch).
type MSE struct{}

// Eval implements Loss.
func (MSE) Eval(pred, ref *mat.Dense) float64 {
	rows, cols := pred.Dims()
	var sum float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d := pred.At(i, j) - ref.At(i, j)
			sum += d * d
		}
	}
	return sum / float64(rows*cols)
}

// Name implements Loss.
func (MSE) Name() string { return "mse" }

// MAE is the mean absolute error, averaged over every element of the array.
type MAE struct{}

// Eval implements Loss.
func (MAE) Eval(pred, ref *mat.Dense) float64 {
	rows, cols := pred.Dims()
	var sum float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			sum += math.Abs(pred.At(i, j) - ref.At(i, j))
		}
	}
	return sum / float64(rows*cols)
}

// Name implements Loss.
func (MAE) Name() string { return "mae" }

// Metric accumulates an error measure over batches until Reset.
type Metric interface {
	Name() string
	Update(pred, ref *mat.Dense)
	Compute() float64
	Reset()
}

// MAEMetric accumulates the mean absolute error.
type MAEMetric struct {
	sum float64
	n   int
}

// Name implements Metric.
func (m *MAEMetric) Name() string { return "mae" }

// Update implements Metric.
func (m *MAEMetric) Update(pred, ref *mat.Dense) {
	rows, cols := pred.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.sum += math.Abs(pred.At(i, j) - ref.At(i, j))
		}
	}
	m.n += rows * cols
}

// Compute implements Metric.
func (m *MAEMetric) Compute() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

// Reset implements Metric.
func (m *MAEMetric) Reset() { m.sum, m.n = 0, 0 }

// RMSEMetric accumulates the root mean squared error.
type RMSEMetric struct {
	sum float64
	n   int
}

// Name implements Metric.
func (m *RMSEMetric) Name() string { return "rmse" }

// Update implements Metric.
func (m *RMSEMetric) Update(pred, ref *mat.Dense) {
	rows, cols := pred.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d := pred.At(i, j) - ref.At(i, j)
			m.sum += d * d
		}
	}
	m.n += rows * cols
}

// Compute implements Metric.
func (m *RMSEMetric) Compute() float64 {
	if m.n == 0 {
		return 0
	}
	return math.Sqrt(m.sum / float64(m.n))
}

// Reset implements Metric.
func (m *RMSEMetric) Reset() { m.sum, m.n = 0, 0 }

// Output binds one named model output to the stored reference property of
// the same name.
type Output struct {
	Name    string
	Loss    Loss
	Weight  float64
	Metrics []Metric
}

// Task wraps a potential and its outputs for an external training loop.
type Task struct {
	model   *model.Potential
	outputs []Output
	log     *zap.Logger
}

// NewTask builds a training task. logger may be nil, in which case the
// task is silent.
func NewTask(m *model.Potential, outputs []Output, logger *zap.Logger) (*Task, error) {
	if len(outputs) == 0 {
		return nil, Error{"a task needs at least one output", []string{"NewTask"}, true}
	}
	for _, o := range outputs {
		if o.Loss == nil {
			return nil, Error{fmt.Sprintf("output %s has no loss", o.Name), []string{"NewTask"}, true}
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Task{model: m, outputs: outputs, log: logger}, nil
}

// Step runs the model on one batch and returns the weighted total loss and
// the current value of every metric, keyed "output_metric". A reference
// property missing from the batch is reported as PropertyNotFound.
func (T *Task) Step(b nnp.Record) (float64, map[string]float64, error) {
	pred, err := T.model.Forward(b)
	if err != nil {
		return 0, nil, errDecorate(err, "Task.Step")
	}
	var total float64
	metrics := make(map[string]float64)
	for _, o := range T.outputs {
		ref, err := b.Get(o.Name)
		if err != nil {
			return 0, nil, errDecorate(err, "Task.Step")
		}
		p, err := pred.Get(o.Name)
		if err != nil {
			return 0, nil, errDecorate(err, "Task.Step")
		}
		pr, pc := p.Dims()
		rr, rc := ref.Dims()
		if pr != rr || pc != rc {
			return 0, nil, nnp.NewShapeMismatch(o.Name, "Task.Step", rr, pr)
		}
		total += o.Weight * o.Loss.Eval(p, ref)
		for _, m := range o.Metrics {
			m.Update(p, ref)
			metrics[o.Name+"_"+m.Name()] = m.Compute()
		}
	}
	T.log.Debug("training step", zap.Float64("loss", total))
	return total, metrics, nil
}

// ResetMetrics resets every metric of every output, typically at epoch
// boundaries.
func (T *Task) ResetMetrics() {
	for _, o := range T.outputs {
		for _, m := range o.Metrics {
			m.Reset()
		}
	}
}

//Errors

//errDecorate asserts that the error implements nnp.Error and decorates it
//with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(nnp.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for training errors. It fulfills nnp.Error.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("train error: %s", err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }
