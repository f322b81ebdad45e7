/*
 * md.go, part of gonnp.
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

//Package md bridges a trained potential to an external molecular dynamics
//integrator. The calculator takes a geometry, rebuilds the neighbor graph
//(positions change every step, and a stale graph silently breaks the
//forces) and returns energy and forces in the caller's unit system. The
//integrator itself, thermostats and all, is an external collaborator.
package md

import (
	"fmt"

	nnp "github.com/rmera/gonnp"
	"github.com/rmera/gonnp/batch"
	"github.com/rmera/gonnp/model"
	"github.com/rmera/gonnp/neighbors"
	v3 "github.com/rmera/gonnp/v3"
	"gonum.org/v1/gonum/mat"
)

// Calculator evaluates a potential on single structures, for use as the
// force provider of an MD loop.
type Calculator struct {
	pot      *model.Potential
	cutoff   float64
	efactor  float64 //internal -> caller energy units
	ffactor  float64 //internal -> caller force units
	pfactor  float64 //caller -> internal position units
}

// NewCalculator builds a calculator around a composed potential. The
// potential's pipeline must produce the Energy and Forces keys. energyUnit
// and distanceUnit declare the caller's unit system; unknown units fail
// here, before any dynamics runs.
func NewCalculator(pot *model.Potential, cutoff float64, energyUnit, distanceUnit string) (*Calculator, error) {
	if cutoff <= 0 {
		return nil, Error{fmt.Sprintf("bad cutoff %v", cutoff), []string{"NewCalculator"}}
	}
	ef, err := nnp.ParseEnergyUnit(energyUnit)
	if err != nil {
		return nil, errDecorate(err, "NewCalculator")
	}
	df, err := nnp.ParseDistanceUnit(distanceUnit)
	if err != nil {
		return nil, errDecorate(err, "NewCalculator")
	}
	//stored factors go caller->internal; energy and forces travel the
	//other way, so they get inverted.
	return &Calculator{pot: pot, cutoff: cutoff, efactor: 1 / ef, ffactor: df / ef, pfactor: df}, nil
}

// Compute returns the energy and per-atom forces of s, in the calculator's
// declared units. The neighbor graph is recomputed on every call.
func (C *Calculator) Compute(s *nnp.Structure) (float64, *v3.Matrix, error) {
	work := s
	if C.pfactor != 1 {
		work = s.Copy()
		work.Coords.Scale(C.pfactor, s.Coords)
		if work.Cell != nil {
			work.Cell.Scale(C.pfactor, s.Cell)
		}
	}
	list, err := neighbors.Build(work, C.cutoff)
	if err != nil {
		return 0, nil, errDecorate(err, "Compute")
	}
	rec := work.AsRecord()
	for k, v := range list.AsRecord() {
		rec[k] = v
	}
	b, err := batch.Assemble([]nnp.Record{rec})
	if err != nil {
		return 0, nil, errDecorate(err, "Compute")
	}
	b, err = model.PairwiseDistances{}.Forward(b)
	if err != nil {
		return 0, nil, errDecorate(err, "Compute")
	}
	out, err := C.pot.Forward(b)
	if err != nil {
		return 0, nil, errDecorate(err, "Compute")
	}
	earr, err := out.Get(nnp.Energy)
	if err != nil {
		return 0, nil, errDecorate(err, "Compute")
	}
	farr, err := out.Get(nnp.Forces)
	if err != nil {
		return 0, nil, errDecorate(err, "Compute")
	}
	energy := earr.At(0, 0) * C.efactor
	forces := v3.Dense2Matrix(mat.DenseCopyOf(farr))
	forces.Scale(C.ffactor, forces)
	return energy, forces, nil
}

//Errors

//errDecorate asserts that the error implements nnp.Error and decorates it
//with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(nnp.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for calculator errors. It fulfills
//nnp.Error.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string {
	return fmt.Sprintf("md error: %s", err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}
