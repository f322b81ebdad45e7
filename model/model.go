/*
 * model.go, part of gonnp.
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

//Package model composes potentials as strict pipelines: input modules
//(pairwise distances), a representation/energy model, and output modules
//(among them the force module, which turns the gradient of a scalar energy
//into per-atom forces), followed by postprocessing transforms that restore
//physical offsets. The reverse-mode differentiation needed for forces is a
//collaborator the caller plugs in through the Gradienter interface; neural
//network layers themselves live in an external engine and are out of scope.
package model

import (
	"fmt"
	"math"

	nnp "github.com/rmera/gonnp"
	"github.com/rmera/gonnp/batch"
	"github.com/rmera/gonnp/neighbors"
	"github.com/rmera/gonnp/transform"
	"gonum.org/v1/gonum/mat"
)

// Module is one stage of a potential: it reads properties from a batch
// record and returns the record augmented with its outputs.
type Module interface {
	Forward(b nnp.Record) (nnp.Record, error)
}

// Potential is the composed model: modules run left-to-right, then the
// postprocessors (typically AddOffsets) bring outputs back to physical
// scale.
type Potential struct {
	modules []Module
	post    []transform.Transform
}

// NewPotential builds a potential from its modules, in execution order,
// and optional postprocessing transforms.
func NewPotential(modules []Module, post ...transform.Transform) *Potential {
	return &Potential{modules: modules, post: post}
}

// Forward runs the full pipeline on a batch record.
func (P *Potential) Forward(b nnp.Record) (nnp.Record, error) {
	var err error
	for _, m := range P.modules {
		b, err = m.Forward(b)
		if err != nil {
			return nil, errDecorate(err, "Potential.Forward")
		}
	}
	for _, t := range P.post {
		b, err = t.Apply(b)
		if err != nil {
			return nil, errDecorate(err, "Potential.Forward")
		}
	}
	return b, nil
}

// PairwiseDistances is the standard input module: it computes the pair
// distances (key Dij) from the displacement vectors attached by the
// neighbor-list transform. A batch with no pairs passes through untouched.
type PairwiseDistances struct{}

// Forward implements Module.
func (PairwiseDistances) Forward(b nnp.Record) (nnp.Record, error) {
	rij, ok := b[nnp.Rij]
	if !ok {
		return b, nil
	}
	p, _ := rij.Dims()
	d := make([]float64, p)
	for k := 0; k < p; k++ {
		x := rij.At(k, 0)
		y := rij.At(k, 1)
		z := rij.At(k, 2)
		d[k] = math.Sqrt(x*x + y*y + z*z)
	}
	out := b.Clone()
	out[nnp.Dij] = mat.NewDense(p, 1, d)
	return out, nil
}

// Representation is a module producing a per-atom feature embedding from the
// structural keys and the neighbor graph. Message-passing networks from an
// external engine satisfy it; this library only consumes the embeddings
// through output modules.
type Representation interface {
	Module
	//FeatureDim returns the number of components of each atom's embedding.
	FeatureDim() int
}

// Gradienter is the reverse-mode differentiation collaborator: it returns
// the gradient of the named scalar output with respect to the positions in
// the batch, one row per atom. An external autodiff engine satisfies this
// for learned models; analytic models (like PairPotential) implement it
// directly, and NumericalGradient provides a finite-difference reference.
type Gradienter interface {
	EnergyGradient(b nnp.Record) (*mat.Dense, error)
}

// Forces is the derivative output module: it stores the negative gradient
// of the energy under the Forces key.
type Forces struct {
	Of Gradienter
}

// Forward implements Module.
func (F *Forces) Forward(b nnp.Record) (nnp.Record, error) {
	grad, err := F.Of.EnergyGradient(b)
	if err != nil {
		return nil, errDecorate(err, "Forces.Forward")
	}
	rows, cols := grad.Dims()
	forces := mat.NewDense(rows, cols, nil)
	forces.Scale(-1, grad)
	out := b.Clone()
	out[nnp.Forces] = forces
	return out, nil
}

// NumericalGradient differentiates any energy Module by central finite
// differences, rebuilding the neighbor graph at every displaced geometry.
// It is orders of magnitude slower than an analytic or autodiff gradient
// and exists to validate them, not to train with.
type NumericalGradient struct {
	Model  Module  //must produce the Energy key from a batch record
	Cutoff float64 //for the neighbor-graph rebuilds
	Step   float64 //defaults to 1e-5 A
}

// EnergyGradient implements Gradienter.
func (G *NumericalGradient) EnergyGradient(b nnp.Record) (*mat.Dense, error) {
	h := G.Step
	if h == 0 {
		h = 1e-5
	}
	recs, err := batch.Split(b)
	if err != nil {
		return nil, errDecorate(err, "NumericalGradient.EnergyGradient")
	}
	var grads []*mat.Dense
	total := 0
	for _, rec := range recs {
		s, err := nnp.StructureFromRecord(rec)
		if err != nil {
			return nil, errDecorate(err, "NumericalGradient.EnergyGradient")
		}
		n := s.Len()
		total += n
		if n == 0 {
			grads = append(grads, nil)
			continue
		}
		g := mat.NewDense(n, 3, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < 3; j++ {
				orig := s.Coords.At(i, j)
				s.Coords.Set(i, j, orig+h)
				eplus, err := G.totalEnergy(s)
				if err != nil {
					return nil, errDecorate(err, "NumericalGradient.EnergyGradient")
				}
				s.Coords.Set(i, j, orig-h)
				eminus, err := G.totalEnergy(s)
				if err != nil {
					return nil, errDecorate(err, "NumericalGradient.EnergyGradient")
				}
				s.Coords.Set(i, j, orig)
				g.Set(i, j, (eplus-eminus)/(2*h))
			}
		}
		grads = append(grads, g)
	}
	out := mat.NewDense(total, 3, nil)
	row := 0
	for _, g := range grads {
		if g == nil {
			continue
		}
		r, _ := g.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < 3; j++ {
				out.Set(row, j, g.At(i, j))
			}
			row++
		}
	}
	return out, nil
}

//totalEnergy evaluates the model on a single structure with a freshly
//built neighbor graph.
func (G *NumericalGradient) totalEnergy(s *nnp.Structure) (float64, error) {
	list, err := neighbors.Build(s, G.Cutoff)
	if err != nil {
		return 0, err
	}
	rec := s.AsRecord()
	for k, v := range list.AsRecord() {
		rec[k] = v
	}
	single, err := batch.Assemble([]nnp.Record{rec})
	if err != nil {
		return 0, err
	}
	pd := PairwiseDistances{}
	single, err = pd.Forward(single)
	if err != nil {
		return 0, err
	}
	outp, err := G.Model.Forward(single)
	if err != nil {
		return 0, err
	}
	e, err := outp.Get(nnp.Energy)
	if err != nil {
		return 0, err
	}
	return e.At(0, 0), nil
}

//Errors

//errDecorate asserts that the error implements nnp.Error and decorates it
//with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(nnp.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for model errors. It fulfills nnp.Error.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("model error: %s", err.message)
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
