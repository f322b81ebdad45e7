/*
 * transform.go, part of gonnp.
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

//Package transform implements the preprocessing pipeline: pure
//property-record to property-record functions composed left-to-right and
//applied lazily, per sample, before batching. A transform never mutates its
//input record and never assumes that a later transform has run.
package transform

import (
	"fmt"

	nnp "github.com/rmera/gonnp"
	"github.com/rmera/gonnp/neighbors"
	"gonum.org/v1/gonum/mat"
)

// Transform is a pure function over a property record returning an
// augmented or modified record.
type Transform interface {
	Apply(rec nnp.Record) (nnp.Record, error)
}

// Pipeline composes transforms left-to-right.
type Pipeline []Transform

// Apply runs every transform in order on rec.
func (P Pipeline) Apply(rec nnp.Record) (nnp.Record, error) {
	var err error
	for _, t := range P {
		rec, err = t.Apply(rec)
		if err != nil {
			return nil, errDecorate(err, "Pipeline.Apply")
		}
	}
	return rec, nil
}

// Offsets holds the statistics shared by the RemoveOffsets preprocessing
// transform and its AddOffsets postprocessing inverse. With identical
// statistics, remove followed by add reproduces the original values within
// floating-point tolerance.
type Offsets struct {
	Property string
	Mean     float64 //subtracted once per structure...
	PerAtom  bool    //...or once per atom, if PerAtom is true
	AtomRefs []float64
}

//offset returns the total baseline for the record: the mean contribution
//plus, if a reference table is present, the sum of per-element references.
func (O *Offsets) offset(rec nnp.Record) (float64, error) {
	zarr, ok := rec[nnp.Z]
	n := 0
	if ok {
		n, _ = zarr.Dims()
	}
	off := O.Mean
	if O.PerAtom {
		off *= float64(n)
	}
	if O.AtomRefs != nil {
		for i := 0; i < n; i++ {
			z := int(zarr.At(i, 0))
			if z <= 0 || z >= len(O.AtomRefs) {
				return 0, Error{fmt.Sprintf("atomic number %d outside the reference table (len %d)", z, len(O.AtomRefs)), []string{"offset"}, true}
			}
			off += O.AtomRefs[z]
		}
	}
	return off, nil
}

// RemoveOffsets subtracts a training-set baseline (mean and/or atomic
// reference contributions) from a per-structure target property, leaving
// the residual the model actually learns.
type RemoveOffsets struct {
	Offsets
}

// Apply implements Transform.
func (T *RemoveOffsets) Apply(rec nnp.Record) (nnp.Record, error) {
	return shiftProperty(rec, &T.Offsets, -1, "RemoveOffsets.Apply")
}

// AddOffsets restores the baseline removed by RemoveOffsets. It is applied
// after model inference, with the same statistics, to bring predictions
// back to physical scale.
type AddOffsets struct {
	Offsets
}

// Apply implements Transform.
func (T *AddOffsets) Apply(rec nnp.Record) (nnp.Record, error) {
	return shiftProperty(rec, &T.Offsets, 1, "AddOffsets.Apply")
}

func shiftProperty(rec nnp.Record, O *Offsets, sign float64, caller string) (nnp.Record, error) {
	arr, err := rec.Get(O.Property)
	if err != nil {
		return nil, errDecorate(err, caller)
	}
	off, err := O.offset(rec)
	if err != nil {
		return nil, errDecorate(err, caller)
	}
	out := rec.Clone()
	shifted := mat.DenseCopyOf(arr)
	rows, cols := shifted.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			shifted.Set(i, j, arr.At(i, j)+sign*off)
		}
	}
	out[O.Property] = shifted
	return out, nil
}

// SinglePrecision truncates every value of the named properties (or of all
// properties, if Names is empty) to float32 precision, without changing
// shapes. Storage stays float64; the cast reproduces what the sample will
// look like after a round-trip through a single-precision training
// framework.
type SinglePrecision struct {
	Names []string
}

// Apply implements Transform.
func (T *SinglePrecision) Apply(rec nnp.Record) (nnp.Record, error) {
	out := rec.Clone()
	names := T.Names
	if len(names) == 0 {
		names = make([]string, 0, len(rec))
		for k := range rec {
			names = append(names, k)
		}
	}
	for _, name := range names {
		arr, err := out.Get(name)
		if err != nil {
			return nil, errDecorate(err, "SinglePrecision.Apply")
		}
		rows, cols := arr.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				arr.Set(i, j, float64(float32(arr.At(i, j))))
			}
		}
	}
	return out, nil
}

// DoublePrecision is the identity on values (storage is float64 already);
// it exists so pipelines can state the precision of a sample explicitly and
// swap it against SinglePrecision without restructuring.
type DoublePrecision struct {
	Names []string
}

// Apply implements Transform.
func (T *DoublePrecision) Apply(rec nnp.Record) (nnp.Record, error) {
	names := T.Names
	if len(names) == 0 {
		return rec.Clone(), nil
	}
	out := rec.Clone()
	for _, name := range names {
		if _, err := out.Get(name); err != nil {
			return nil, errDecorate(err, "DoublePrecision.Apply")
		}
	}
	return out, nil
}

// NeighborList attaches the neighbor graph of the sample (pair indices and
// displacement vectors) to the record, computed fresh from the positions
// with the given cutoff.
type NeighborList struct {
	Cutoff float64
}

// Apply implements Transform.
func (T *NeighborList) Apply(rec nnp.Record) (nnp.Record, error) {
	s, err := nnp.StructureFromRecord(rec)
	if err != nil {
		return nil, errDecorate(err, "NeighborList.Apply")
	}
	list, err := neighbors.Build(s, T.Cutoff)
	if err != nil {
		return nil, errDecorate(err, "NeighborList.Apply")
	}
	out := rec.Clone()
	for k, v := range list.AsRecord() {
		if _, taken := out[k]; taken {
			return nil, Error{fmt.Sprintf("record already carries %q", k), []string{"NeighborList.Apply"}, true}
		}
		out[k] = v
	}
	return out, nil
}

//Errors

//errDecorate asserts that the error implements nnp.Error and decorates it
//with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(nnp.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for transform errors. It fulfills nnp.Error.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("transform error: %s", err.message)
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
