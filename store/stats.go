/*
 * stats.go, part of gonnp.
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

package store

import (
	"fmt"

	nnp "github.com/rmera/gonnp"
	"gonum.org/v1/gonum/stat"
)

// Stats holds training-set statistics of one scalar property, the input of
// the offset-removal transform.
type Stats struct {
	Property    string
	Mean        float64 //mean over structures
	MeanPerAtom float64 //mean of property/natoms over structures
	N           int
}

// PropertyStats computes the mean and per-atom mean of a per-structure
// scalar property over the subset of store indices given (or the whole
// store, if indices is nil). Statistics must come from the training split
// only, so passing the training indices is the normal use.
func (S *Store) PropertyStats(property string, indices []int) (*Stats, error) {
	if !S.names[property] {
		return nil, nnp.NewPropertyNotFound(property, "PropertyStats")
	}
	if indices == nil {
		indices = make([]int, S.Len())
		for i := range indices {
			indices[i] = i
		}
	}
	vals := make([]float64, 0, len(indices))
	peratom := make([]float64, 0, len(indices))
	for _, i := range indices {
		s, rec, err := S.Get(i)
		if err != nil {
			return nil, errDecorate(err, "PropertyStats")
		}
		arr, err := rec.Get(property)
		if err != nil {
			return nil, errDecorate(err, "PropertyStats")
		}
		rows, cols := arr.Dims()
		if rows != 1 || cols != 1 {
			return nil, Error{fmt.Sprintf("property %s is not a per-structure scalar (%dx%d)", property, rows, cols), S.path, []string{"PropertyStats"}, true}
		}
		v := arr.At(0, 0)
		vals = append(vals, v)
		if n := s.Len(); n > 0 {
			peratom = append(peratom, v/float64(n))
		}
	}
	st := &Stats{Property: property, N: len(vals)}
	if len(vals) > 0 {
		st.Mean = stat.Mean(vals, nil)
	}
	if len(peratom) > 0 {
		st.MeanPerAtom = stat.Mean(peratom, nil)
	}
	return st, nil
}

//Errors

//errDecorate asserts that the error implements nnp.Error and decorates it
//with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(nnp.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for store errors. It fulfills nnp.Error.
type Error struct {
	message  string
	path     string //the database file with problems, or empty if none
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("store %s error: %s", err.path, err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Path returns the database file associated with the error.
func (err Error) Path() string { return err.path }

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }
