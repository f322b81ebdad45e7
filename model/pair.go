/*
 * pair.go, part of gonnp.
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

package model

import (
	"math"

	nnp "github.com/rmera/gonnp"
	"gonum.org/v1/gonum/mat"
)

// PairPotential is a Morse-type radial potential over the neighbor graph:
// E = sum over directed pairs of 0.5*(De*(1-exp(-a*(d-r0)))^2 - De). It is
// not a learned model; it exists to exercise the full pipeline (and to
// serve as a classical baseline), and since its energy depends on
// interatomic distances only, its forces must sum to zero and rotate with
// the structure, which the tests rely on. It implements both Module
// (energy) and Gradienter (analytic gradient), so a Forces module can use
// it directly, with no external autodiff.
type PairPotential struct {
	De float64 //well depth, kcal/mol
	A  float64 //width, 1/A
	R0 float64 //equilibrium distance, A
}

//phi and its derivative with respect to the distance.
func (P *PairPotential) phi(d float64) float64 {
	e := 1 - math.Exp(-P.A*(d-P.R0))
	return P.De*e*e - P.De
}

func (P *PairPotential) dphi(d float64) float64 {
	x := math.Exp(-P.A * (d - P.R0))
	return 2 * P.De * P.A * (1 - x) * x
}

// Forward implements Module: it scatters half the pair energies onto the
// owning structure of each pair's center atom, producing the per-structure
// Energy array. A batch with no pairs gets zero energies.
func (P *PairPotential) Forward(b nnp.Record) (nnp.Record, error) {
	counts, err := b.Get(nnp.N)
	if err != nil {
		return nil, errDecorate(err, "PairPotential.Forward")
	}
	m, _ := counts.Dims()
	energies := make([]float64, m)
	dij, okd := b[nnp.Dij]
	idxi, oki := b[nnp.Idx_i]
	idxm, okm := b[nnp.IdxM]
	if okd && oki && okm {
		p, _ := dij.Dims()
		for k := 0; k < p; k++ {
			center := int(idxi.At(k, 0))
			owner := int(idxm.At(center, 0))
			energies[owner] += 0.5 * P.phi(dij.At(k, 0))
		}
	}
	out := b.Clone()
	out[nnp.Energy] = mat.NewDense(m, 1, energies)
	return out, nil
}

// EnergyGradient implements Gradienter, with the analytic gradient of the
// pair energy with respect to every atomic position.
func (P *PairPotential) EnergyGradient(b nnp.Record) (*mat.Dense, error) {
	pos, err := b.Get(nnp.R)
	if err != nil {
		return nil, errDecorate(err, "PairPotential.EnergyGradient")
	}
	n, _ := pos.Dims()
	grad := mat.NewDense(n, 3, nil)
	rij, ok := b[nnp.Rij]
	if !ok {
		return grad, nil //no pairs in range, zero gradient
	}
	idxi, err := b.Get(nnp.Idx_i)
	if err != nil {
		return nil, errDecorate(err, "PairPotential.EnergyGradient")
	}
	idxj, err := b.Get(nnp.Idx_j)
	if err != nil {
		return nil, errDecorate(err, "PairPotential.EnergyGradient")
	}
	p, _ := rij.Dims()
	for k := 0; k < p; k++ {
		x := rij.At(k, 0)
		y := rij.At(k, 1)
		z := rij.At(k, 2)
		d := math.Sqrt(x*x + y*y + z*z)
		if d == 0 {
			continue //overlapping atoms contribute no direction
		}
		f := 0.5 * P.dphi(d) / d
		i := int(idxi.At(k, 0))
		j := int(idxj.At(k, 0))
		grad.Set(i, 0, grad.At(i, 0)-f*x)
		grad.Set(i, 1, grad.At(i, 1)-f*y)
		grad.Set(i, 2, grad.At(i, 2)-f*z)
		grad.Set(j, 0, grad.At(j, 0)+f*x)
		grad.Set(j, 1, grad.At(j, 1)+f*y)
		grad.Set(j, 2, grad.At(j, 2)+f*z)
	}
	return grad, nil
}

// Parameters implements Parameterized for checkpointing.
func (P *PairPotential) Parameters() map[string][]float64 {
	return map[string][]float64{"De": {P.De}, "a": {P.A}, "r0": {P.R0}}
}

// SetParameters implements Parameterized for checkpoint restoration.
func (P *PairPotential) SetParameters(params map[string][]float64) error {
	for _, name := range []string{"De", "a", "r0"} {
		v, ok := params[name]
		if !ok || len(v) != 1 {
			return Error{"checkpoint is missing the parameter " + name, []string{"SetParameters"}, true}
		}
		switch name {
		case "De":
			P.De = v[0]
		case "a":
			P.A = v[0]
		case "r0":
			P.R0 = v[0]
		}
	}
	return nil
}
