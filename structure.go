/*
 * structure.go, part of gonnp.
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

package nnp

import (
	"fmt"

	v3 "github.com/rmera/gonnp/v3"
	"gonum.org/v1/gonum/mat"
)

/**Note: Several functions here panic instead of returning errors. This is
 * because they are "fundamental" functions. If something goes wrong here,
 * the program is way-most likely wrong and should crash.**/

// Structure is a single molecular/atomic geometry: atomic numbers, cartesian
// positions and, optionally, a periodic cell. Once added to a store it is
// immutable; code that evolves positions (dynamics) works on copies.
type Structure struct {
	Z      []int      //atomic numbers
	Coords *v3.Matrix //one row per atom, in A
	Cell   *v3.Matrix //3 row vectors spanning the cell, or nil for free systems
	PBC    [3]bool    //periodicity per cell vector
}

// NewStructure builds a Structure from atomic numbers and coordinates,
// checking that their lengths agree. cell may be nil for free systems.
func NewStructure(z []int, coords *v3.Matrix, cell *v3.Matrix, pbc [3]bool) (*Structure, error) {
	s := &Structure{Z: z, Coords: coords, Cell: cell, PBC: pbc}
	if err := s.Check(); err != nil {
		return nil, errDecorate(err, "NewStructure")
	}
	return s, nil
}

// Len returns the number of atoms in the structure.
func (S *Structure) Len() int {
	return len(S.Z)
}

// Check returns an error if the structure is corrupted, i.e. the coordinates
// don't match the number of atoms, a periodic axis is requested without a
// cell, or the cell is not 3x3.
func (S *Structure) Check() error {
	n := len(S.Z)
	if S.Coords.NVecs() != n {
		return NewShapeMismatch(R, "Check", n, S.Coords.NVecs())
	}
	periodic := S.PBC[0] || S.PBC[1] || S.PBC[2]
	if S.Cell == nil {
		if periodic {
			return &PropertyError{message: "periodic axis declared without a cell", property: Cell, deco: []string{"Check"}}
		}
		return nil
	}
	if S.Cell.NVecs() != 3 {
		return NewShapeMismatch(Cell, "Check", 3, S.Cell.NVecs())
	}
	return nil
}

// Copy returns a deep copy of the structure.
func (S *Structure) Copy() *Structure {
	ns := &Structure{PBC: S.PBC}
	ns.Z = make([]int, len(S.Z))
	copy(ns.Z, S.Z)
	ns.Coords = S.Coords.Clone()
	if S.Cell != nil {
		ns.Cell = S.Cell.Clone()
	}
	return ns
}

// Masses returns a slice with the mass of each atom. It returns an error if
// any atomic number is outside the mass table.
func (S *Structure) Masses() ([]float64, error) {
	masses := make([]float64, len(S.Z))
	for i, z := range S.Z {
		m := Mass(z)
		if m == 0 {
			return nil, &PropertyError{message: fmt.Sprintf("no mass for atomic number %d (atom %d)", z, i), property: Z, deco: []string{"Masses"}}
		}
		masses[i] = m
	}
	return masses, nil
}

// Record is a property record: a mapping from property name to a numeric
// array whose shape is either per-structure (one row) or per-atom (one row
// per atom). The keys are the constants declared in properties.go plus
// whatever target properties the dataset defines.
type Record map[string]*mat.Dense

// Get returns the named array or a PropertyNotFound error.
func (r Record) Get(name string) (*mat.Dense, error) {
	a, ok := r[name]
	if !ok {
		return nil, NewPropertyNotFound(name, "Record.Get")
	}
	return a, nil
}

// Clone returns a record with newly allocated copies of every array.
func (r Record) Clone() Record {
	nr := make(Record, len(r))
	for k, v := range r {
		nr[k] = mat.DenseCopyOf(v)
	}
	return nr
}

// NAtoms returns the number of atoms the record describes, taken from the
// positions array. Panics if positions are absent, as a record without
// positions is not a valid sample.
func (r Record) NAtoms() int {
	pos, ok := r[R]
	if !ok {
		panic("gonnp: record without positions")
	}
	n, _ := pos.Dims()
	return n
}

// AsRecord converts the structure into a property record holding the
// structural keys (Z, R and, for periodic systems, Cell and PBC).
func (S *Structure) AsRecord() Record {
	n := len(S.Z)
	rec := make(Record, 4)
	zdata := make([]float64, n)
	for i, z := range S.Z {
		zdata[i] = float64(z)
	}
	if n > 0 {
		rec[Z] = mat.NewDense(n, 1, zdata)
		rec[R] = mat.DenseCopyOf(S.Coords)
	}
	if S.Cell != nil {
		cell := make([]float64, 9)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				cell[3*i+j] = S.Cell.At(i, j)
			}
		}
		pbc := make([]float64, 3)
		for i, p := range S.PBC {
			if p {
				pbc[i] = 1
			}
		}
		rec[Cell] = mat.NewDense(1, 9, cell)
		rec[PBC] = mat.NewDense(1, 3, pbc)
	}
	return rec
}

// StructureFromRecord rebuilds a Structure from the structural keys of a
// record. It is the inverse of AsRecord.
func StructureFromRecord(rec Record) (*Structure, error) {
	s := new(Structure)
	zarr, ok := rec[Z]
	if !ok {
		//a zero-atom structure round-trips to an empty record
		s.Coords = v3.Zeros(0)
		return s, nil
	}
	n, _ := zarr.Dims()
	s.Z = make([]int, n)
	for i := 0; i < n; i++ {
		s.Z[i] = int(zarr.At(i, 0))
	}
	pos, err := rec.Get(R)
	if err != nil {
		return nil, errDecorate(err, "StructureFromRecord")
	}
	pr, pc := pos.Dims()
	if pr != n || pc != 3 {
		return nil, NewShapeMismatch(R, "StructureFromRecord", n, pr)
	}
	s.Coords = v3.Dense2Matrix(mat.DenseCopyOf(pos))
	if cell, ok := rec[Cell]; ok {
		cdata := make([]float64, 9)
		for i := 0; i < 9; i++ {
			cdata[i] = cell.At(0, i)
		}
		s.Cell, _ = v3.NewMatrix(cdata)
		if pbc, ok := rec[PBC]; ok {
			for i := 0; i < 3; i++ {
				s.PBC[i] = pbc.At(0, i) != 0
			}
		}
	}
	return s, nil
}
