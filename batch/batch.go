/*
 * batch.go, part of gonnp.
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

//Package batch merges variable-atom-count samples into a single flat batch.
//Per-atom arrays are concatenated along the atom axis and per-structure
//arrays stacked along a new leading axis; instead of padding, every atom
//gets an owning-structure index. The order is strictly the input order:
//shuffling is a sampling concern and happens before this step.
package batch

import (
	"fmt"

	nnp "github.com/rmera/gonnp"
	"gonum.org/v1/gonum/mat"
)

// Assemble merges the given records (post-transform, one per structure)
// into one batch record. It synthesizes the owning-structure index array
// (key IdxM: non-decreasing, starting at 0, one entry per atom) and the
// per-structure atom counts (key N). Pair-index arrays from attached
// neighbor graphs are concatenated with their atom indices shifted by the
// cumulative atom offsets, so they keep pointing at the right atoms in the
// flat arrays. Every property must be present in every record, except the
// pair keys: a structure with no pairs in range carries no graph at all, so
// those merge over whichever records have them. Any other missing property
// is a caller error reported as PropertyNotFound.
func Assemble(recs []nnp.Record) (nnp.Record, error) {
	if len(recs) == 0 {
		return nil, Error{"empty batch", []string{"Assemble"}, true}
	}
	natoms := make([]int, len(recs))
	offsets := make([]int, len(recs))
	total := 0
	for k, rec := range recs {
		if _, ok := rec[nnp.R]; !ok {
			return nil, nnp.NewPropertyNotFound(nnp.R, "Assemble")
		}
		natoms[k] = rec.NAtoms()
		offsets[k] = total
		total += natoms[k]
	}
	out := make(nnp.Record, len(recs[0])+2)
	for name := range recs[0] {
		if pairKey(name) {
			continue
		}
		merged, err := mergeProperty(name, recs, natoms, offsets)
		if err != nil {
			return nil, errDecorate(err, "Assemble")
		}
		if merged != nil {
			out[name] = merged
		}
	}
	//every record must carry the same keys as the first one. Pair keys are
	//exempt: a structure with no pairs in range legitimately carries none,
	//so the graph is merged over the union of records instead.
	pairNames := make(map[string]bool, 4)
	for k, rec := range recs {
		for name := range rec {
			if pairKey(name) {
				pairNames[name] = true
				continue
			}
			if _, ok := recs[0][name]; !ok {
				return nil, nnp.NewPropertyNotFound(name, fmt.Sprintf("Assemble: record 0 (vs record %d)", k))
			}
		}
	}
	for name := range pairNames {
		merged, err := mergePairs(name, recs, offsets)
		if err != nil {
			return nil, errDecorate(err, "Assemble")
		}
		if merged != nil {
			out[name] = merged
		}
	}
	idxm := make([]float64, total)
	for k, off := range offsets {
		for i := 0; i < natoms[k]; i++ {
			idxm[off+i] = float64(k)
		}
	}
	counts := make([]float64, len(recs))
	for k, n := range natoms {
		counts[k] = float64(n)
	}
	if total > 0 {
		out[nnp.IdxM] = mat.NewDense(total, 1, idxm)
	}
	out[nnp.N] = mat.NewDense(len(recs), 1, counts)
	return out, nil
}

//pairKey tells whether the property belongs to the neighbor graph, whose
//leading dimension is the pair count rather than 1 or natoms.
func pairKey(name string) bool {
	return name == nnp.Idx_i || name == nnp.Idx_j || name == nnp.Rij || name == nnp.Dij
}

func mergeProperty(name string, recs []nnp.Record, natoms, offsets []int) (*mat.Dense, error) {
	//classify: per-atom arrays have natoms rows, per-structure arrays one.
	//For batches made only of single-atom structures the two concatenations
	//coincide, so the ambiguity is harmless; the structural keys are always
	//per-atom.
	peratomOK := true
	perstructOK := true
	for k, rec := range recs {
		arr, ok := rec[name]
		if !ok {
			return nil, nnp.NewPropertyNotFound(name, "mergeProperty")
		}
		rows, _ := arr.Dims()
		if rows != natoms[k] {
			peratomOK = false
		}
		if rows != 1 {
			perstructOK = false
		}
	}
	peratom := name == nnp.Z || name == nnp.R || (peratomOK && !perstructOK)
	cols := -1
	data := []float64{}
	for k, rec := range recs {
		arr, err := rec.Get(name)
		if err != nil {
			return nil, err
		}
		rows, c := arr.Dims()
		if cols == -1 {
			cols = c
		} else if c != cols {
			return nil, nnp.NewShapeMismatch(name, "mergeProperty", cols, c)
		}
		if peratom && rows != natoms[k] {
			return nil, nnp.NewShapeMismatch(name, "mergeProperty", natoms[k], rows)
		}
		if !peratom && rows != 1 {
			return nil, nnp.NewShapeMismatch(name, "mergeProperty", 1, rows)
		}
		for i := 0; i < rows; i++ {
			for j := 0; j < c; j++ {
				data = append(data, arr.At(i, j))
			}
		}
	}
	if len(data) == 0 {
		return nil, nil
	}
	return mat.NewDense(len(data)/cols, cols, data), nil
}

func mergePairs(name string, recs []nnp.Record, offsets []int) (*mat.Dense, error) {
	shift := name == nnp.Idx_i || name == nnp.Idx_j
	cols := -1
	data := []float64{}
	for k, rec := range recs {
		arr, ok := rec[name]
		if !ok {
			continue //a structure with no pairs in range contributes nothing
		}
		rows, c := arr.Dims()
		if cols == -1 {
			cols = c
		} else if c != cols {
			return nil, nnp.NewShapeMismatch(name, "mergePairs", cols, c)
		}
		for i := 0; i < rows; i++ {
			for j := 0; j < c; j++ {
				v := arr.At(i, j)
				if shift {
					v += float64(offsets[k])
				}
				data = append(data, v)
			}
		}
	}
	if len(data) == 0 {
		return nil, nil
	}
	return mat.NewDense(len(data)/cols, cols, data), nil
}

// Split is the inverse of Assemble for per-structure and per-atom arrays:
// it recovers the individual records of a batch using the stored atom
// counts. Neighbor-graph keys are dropped, as the graph must be recomputed
// from positions anyway.
func Split(batch nnp.Record) ([]nnp.Record, error) {
	counts, err := batch.Get(nnp.N)
	if err != nil {
		return nil, errDecorate(err, "Split")
	}
	m, _ := counts.Dims()
	natoms := make([]int, m)
	offsets := make([]int, m)
	total := 0
	for k := 0; k < m; k++ {
		natoms[k] = int(counts.At(k, 0))
		offsets[k] = total
		total += natoms[k]
	}
	out := make([]nnp.Record, m)
	for k := range out {
		out[k] = make(nnp.Record)
	}
	for name, arr := range batch {
		if name == nnp.N || name == nnp.IdxM || pairKey(name) {
			continue
		}
		rows, cols := arr.Dims()
		switch rows {
		case total:
			for k := 0; k < m; k++ {
				if natoms[k] == 0 {
					continue
				}
				sub := arr.Slice(offsets[k], offsets[k]+natoms[k], 0, cols)
				out[k][name] = mat.DenseCopyOf(sub)
			}
		case m:
			for k := 0; k < m; k++ {
				out[k][name] = mat.DenseCopyOf(arr.Slice(k, k+1, 0, cols))
			}
		default:
			return nil, nnp.NewShapeMismatch(name, "Split", total, rows)
		}
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

//Error is the general structure for batching errors. It fulfills nnp.Error.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("batch error: %s", err.message)
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
