/*
 * batch_test.go, part of gonnp.
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

package batch

import (
	"testing"

	nnp "github.com/rmera/gonnp"
	"github.com/rmera/gonnp/neighbors"
	v3 "github.com/rmera/gonnp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

//sample builds a record with n atoms, a per-structure energy and per-atom
//forces, all with recognizable values.
func sample(n int, energy float64) nnp.Record {
	z := make([]float64, n)
	r := make([]float64, 3*n)
	f := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		z[i] = 1
		r[3*i] = float64(i)
		f[3*i] = energy + float64(i)
	}
	rec := nnp.Record{
		nnp.Energy: mat.NewDense(1, 1, []float64{energy}),
	}
	if n > 0 {
		rec[nnp.Z] = mat.NewDense(n, 1, z)
		rec[nnp.R] = mat.NewDense(n, 3, r)
		rec[nnp.Forces] = mat.NewDense(n, 3, f)
	}
	return rec
}

func TestAssembleIndices(t *testing.T) {
	b, err := Assemble([]nnp.Record{sample(3, -1), sample(5, -2), sample(2, -3)})
	require.NoError(t, err)

	idxm, err := b.Get(nnp.IdxM)
	require.NoError(t, err)
	rows, _ := idxm.Dims()
	require.Equal(t, 10, rows)
	want := []float64{0, 0, 0, 1, 1, 1, 1, 1, 2, 2}
	for i, w := range want {
		assert.Equal(t, w, idxm.At(i, 0), "owner of atom %d", i)
	}

	counts, err := b.Get(nnp.N)
	require.NoError(t, err)
	assert.Equal(t, 3.0, counts.At(0, 0))
	assert.Equal(t, 5.0, counts.At(1, 0))
	assert.Equal(t, 2.0, counts.At(2, 0))

	//per-structure scalars stack along a new leading axis
	e, err := b.Get(nnp.Energy)
	require.NoError(t, err)
	er, ec := e.Dims()
	assert.Equal(t, 3, er)
	assert.Equal(t, 1, ec)
	assert.Equal(t, -2.0, e.At(1, 0))

	//per-atom arrays concatenate along the atom axis, in input order
	f, err := b.Get(nnp.Forces)
	require.NoError(t, err)
	fr, _ := f.Dims()
	assert.Equal(t, 10, fr)
	assert.Equal(t, -2.0, f.At(3, 0), "first atom of the second structure")
}

func TestAssemblePairShifting(t *testing.T) {
	a := sample(2, -1)
	a[nnp.Idx_i] = mat.NewDense(2, 1, []float64{0, 1})
	a[nnp.Idx_j] = mat.NewDense(2, 1, []float64{1, 0})
	a[nnp.Rij] = mat.NewDense(2, 3, []float64{1, 0, 0, -1, 0, 0})
	b := sample(3, -2)
	b[nnp.Idx_i] = mat.NewDense(2, 1, []float64{0, 2})
	b[nnp.Idx_j] = mat.NewDense(2, 1, []float64{2, 0})
	b[nnp.Rij] = mat.NewDense(2, 3, []float64{2, 0, 0, -2, 0, 0})

	merged, err := Assemble([]nnp.Record{a, b})
	require.NoError(t, err)
	idxi, err := merged.Get(nnp.Idx_i)
	require.NoError(t, err)
	idxj, err := merged.Get(nnp.Idx_j)
	require.NoError(t, err)
	rows, _ := idxi.Dims()
	require.Equal(t, 4, rows)
	//the second structure's indices land shifted by the 2 atoms before it
	assert.Equal(t, 2.0, idxi.At(2, 0))
	assert.Equal(t, 4.0, idxj.At(2, 0))
	assert.Equal(t, 4.0, idxi.At(3, 0))
	assert.Equal(t, 2.0, idxj.At(3, 0))
	//displacements are not index-like and must pass through untouched
	rij, err := merged.Get(nnp.Rij)
	require.NoError(t, err)
	assert.Equal(t, 2.0, rij.At(2, 0))
}

//graphRecord builds a record with an attached neighbor graph the way the
//loader does: from a structure, through neighbors.Build.
func graphRecord(t *testing.T, coords []float64) nnp.Record {
	cm, err := v3.NewMatrix(coords)
	require.NoError(t, err)
	z := make([]int, cm.NVecs())
	for i := range z {
		z[i] = 1
	}
	s, err := nnp.NewStructure(z, cm, nil, [3]bool{})
	require.NoError(t, err)
	list, err := neighbors.Build(s, 2.0)
	require.NoError(t, err)
	rec := s.AsRecord()
	for k, v := range list.AsRecord() {
		rec[k] = v
	}
	return rec
}

func TestAssembleEmptyGraphFirst(t *testing.T) {
	//an isolated atom carries no pair keys at all; it must be able to come
	//first in a batch with pair-bearing structures
	lone := graphRecord(t, []float64{0, 0, 0})
	dimer := graphRecord(t, []float64{10, 0, 0, 11, 0, 0})
	b, err := Assemble([]nnp.Record{lone, dimer})
	require.NoError(t, err, "a pair-free structure may come first")
	idxi, err := b.Get(nnp.Idx_i)
	require.NoError(t, err)
	idxj, err := b.Get(nnp.Idx_j)
	require.NoError(t, err)
	rows, _ := idxi.Dims()
	require.Equal(t, 2, rows)
	//the dimer's indices land shifted past the lone atom
	assert.ElementsMatch(t, []float64{1, 2}, []float64{idxi.At(0, 0), idxi.At(1, 0)})
	assert.ElementsMatch(t, []float64{1, 2}, []float64{idxj.At(0, 0), idxj.At(1, 0)})
	//both orders give the same pair count
	b2, err := Assemble([]nnp.Record{dimer, lone})
	require.NoError(t, err)
	idxi2, err := b2.Get(nnp.Idx_i)
	require.NoError(t, err)
	rows, _ = idxi2.Dims()
	assert.Equal(t, 2, rows)
	//a batch of only pair-free structures has no pair keys at all
	b3, err := Assemble([]nnp.Record{lone, lone})
	require.NoError(t, err)
	assert.NotContains(t, b3, nnp.Idx_i)
}

func TestAssembleMixedSizes(t *testing.T) {
	//a single-atom structure makes per-atom and per-structure shapes
	//coincide; forces must still concatenate per atom
	b, err := Assemble([]nnp.Record{sample(1, -1), sample(5, -2)})
	require.NoError(t, err)
	f, err := b.Get(nnp.Forces)
	require.NoError(t, err)
	rows, _ := f.Dims()
	assert.Equal(t, 6, rows)
	e, err := b.Get(nnp.Energy)
	require.NoError(t, err)
	rows, _ = e.Dims()
	assert.Equal(t, 2, rows)
}

func TestAssembleErrors(t *testing.T) {
	_, err := Assemble(nil)
	assert.Error(t, err, "an empty batch is a caller error")

	a := sample(2, -1)
	b := sample(3, -2)
	delete(b, nnp.Forces)
	_, err = Assemble([]nnp.Record{a, b})
	require.Error(t, err)
	var perr *nnp.PropertyError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, nnp.Forces, perr.Property())

	//key present in a later record but not the first is also an error
	c := sample(2, -1)
	d := sample(3, -2)
	d["dipole"] = mat.NewDense(1, 3, []float64{1, 0, 0})
	_, err = Assemble([]nnp.Record{c, d})
	assert.Error(t, err)
}

func TestSplitInvertsAssemble(t *testing.T) {
	recs := []nnp.Record{sample(3, -1), sample(5, -2), sample(2, -3)}
	//attach a pair graph to check that Split drops it
	recs[0][nnp.Idx_i] = mat.NewDense(2, 1, []float64{0, 1})
	recs[0][nnp.Idx_j] = mat.NewDense(2, 1, []float64{1, 0})
	recs[0][nnp.Rij] = mat.NewDense(2, 3, nil)

	b, err := Assemble(recs)
	require.NoError(t, err)
	back, err := Split(b)
	require.NoError(t, err)
	require.Len(t, back, 3)
	for k, rec := range back {
		assert.NotContains(t, rec, nnp.Idx_i)
		assert.NotContains(t, rec, nnp.IdxM)
		assert.NotContains(t, rec, nnp.N)
		e, err := rec.Get(nnp.Energy)
		require.NoError(t, err)
		assert.Equal(t, -float64(k+1), e.At(0, 0))
		want, err := recs[k].Get(nnp.Forces)
		require.NoError(t, err)
		got, err := rec.Get(nnp.Forces)
		require.NoError(t, err)
		wr, wc := want.Dims()
		gr, gc := got.Dims()
		require.Equal(t, wr, gr)
		require.Equal(t, wc, gc)
		for i := 0; i < wr; i++ {
			for j := 0; j < wc; j++ {
				assert.Equal(t, want.At(i, j), got.At(i, j))
			}
		}
	}
}
