/*
 * store_test.go, part of gonnp.
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
	"path/filepath"
	"testing"

	nnp "github.com/rmera/gonnp"
	v3 "github.com/rmera/gonnp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func water(t *testing.T) *nnp.Structure {
	coords, err := v3.NewMatrix([]float64{
		0, 0, 0,
		0.96, 0, 0,
		-0.24, 0.93, 0,
	})
	require.NoError(t, err)
	s, err := nnp.NewStructure([]int{8, 1, 1}, coords, nil, [3]bool{})
	require.NoError(t, err)
	return s
}

func TestCreateRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	s, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, err = Create(path)
	assert.Error(t, err, "existing path without overwrite must fail")
	s, err = Create(path, WithOverwrite())
	assert.NoError(t, err)
	s.Close()
}

func TestCreateRejectsUnknownUnits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	_, err := Create(path, WithDistanceUnit("furlong"))
	assert.Error(t, err)
	_, err = Create(path, WithPropertyUnit(nnp.Energy, "calories-ish"))
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	st, err := Create(path, WithPropertyUnit(nnp.Energy, "kcal/mol"))
	require.NoError(t, err)
	w := water(t)
	props := nnp.Record{
		nnp.Energy: mat.NewDense(1, 1, []float64{-57.8}),
		nnp.Forces: mat.NewDense(3, 3, []float64{
			0.1, 0, 0,
			-0.05, 0.02, 0,
			-0.05, -0.02, 0,
		}),
	}
	require.NoError(t, st.AddSystems([]*nnp.Structure{w}, []nnp.Record{props}))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	defer st.Close()
	assert.Equal(t, 1, st.Len())
	assert.ElementsMatch(t, []string{nnp.Energy, nnp.Forces}, st.PropertyNames())

	got, rec, err := st.Get(0)
	require.NoError(t, err)
	assert.Equal(t, w.Z, got.Z)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, w.Coords.At(i, j), got.Coords.At(i, j), 1e-12)
		}
	}
	e, err := rec.Get(nnp.Energy)
	require.NoError(t, err)
	assert.InDelta(t, -57.8, e.At(0, 0), 1e-12)
	f, err := rec.Get(nnp.Forces)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, f.At(0, 0), 1e-12)
}

func TestUnitConversionAtIngestion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	st, err := Create(path, WithDistanceUnit("Bohr"), WithPropertyUnit(nnp.Energy, "Hartree"))
	require.NoError(t, err)
	defer st.Close()
	coords, err := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0})
	require.NoError(t, err)
	s, err := nnp.NewStructure([]int{1, 1}, coords, nil, [3]bool{})
	require.NoError(t, err)
	props := nnp.Record{nnp.Energy: mat.NewDense(1, 1, []float64{-1.0})}
	require.NoError(t, st.AddSystems([]*nnp.Structure{s}, []nnp.Record{props}))
	got, rec, err := st.Get(0)
	require.NoError(t, err)
	assert.InDelta(t, nnp.Bohr2A, got.Coords.At(1, 0), 1e-9, "positions should arrive in A")
	e, _ := rec.Get(nnp.Energy)
	assert.InDelta(t, -nnp.H2Kcal, e.At(0, 0), 1e-6, "energies should arrive in kcal/mol")
}

func TestPeriodicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	st, err := Create(path)
	require.NoError(t, err)
	defer st.Close()
	cell, err := v3.NewMatrix([]float64{10, 0, 0, 0, 10, 0, 0, 0, 10})
	require.NoError(t, err)
	coords, err := v3.NewMatrix([]float64{1, 1, 1})
	require.NoError(t, err)
	s, err := nnp.NewStructure([]int{6}, coords, cell, [3]bool{true, true, false})
	require.NoError(t, err)
	require.NoError(t, st.AddSystems([]*nnp.Structure{s}, []nnp.Record{{}}))
	got, _, err := st.Get(0)
	require.NoError(t, err)
	require.NotNil(t, got.Cell)
	assert.Equal(t, [3]bool{true, true, false}, got.PBC)
	assert.InDelta(t, 10.0, got.Cell.At(2, 2), 1e-12)
}

func TestShapeValidationFailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	st, err := Create(path)
	require.NoError(t, err)
	defer st.Close()
	w := water(t)
	bad := nnp.Record{nnp.Forces: mat.NewDense(2, 3, nil)} //3 atoms, 2 force rows
	err = st.AddSystems([]*nnp.Structure{w}, []nnp.Record{bad})
	require.Error(t, err)
	var perr *nnp.PropertyError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, nnp.Forces, perr.Property())
	assert.Equal(t, 0, st.Len(), "nothing may be stored from a rejected record")
}

func TestReservedKeysRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	st, err := Create(path)
	require.NoError(t, err)
	defer st.Close()
	w := water(t)
	bad := nnp.Record{nnp.R: mat.NewDense(3, 3, nil)}
	assert.Error(t, st.AddSystems([]*nnp.Structure{w}, []nnp.Record{bad}))
}

func TestGetOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	st, err := Create(path)
	require.NoError(t, err)
	defer st.Close()
	_, _, err = st.Get(0)
	require.Error(t, err)
	var ierr *nnp.IndexError
	assert.ErrorAs(t, err, &ierr)
}

func TestAtomRefAndStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	ref := make([]float64, 10)
	ref[1] = -0.5 //H
	ref[8] = -75.0
	st, err := Create(path, WithAtomRef(nnp.Energy, ref))
	require.NoError(t, err)
	defer st.Close()
	w := water(t)
	for _, e := range []float64{-10, -20} {
		props := nnp.Record{nnp.Energy: mat.NewDense(1, 1, []float64{e})}
		require.NoError(t, st.AddSystems([]*nnp.Structure{w}, []nnp.Record{props}))
	}
	got := st.AtomRef(nnp.Energy)
	require.NotNil(t, got)
	assert.InDelta(t, -75.0, got[8], 1e-12)
	assert.Nil(t, st.AtomRef(nnp.Forces))

	stats, err := st.PropertyStats(nnp.Energy, nil)
	require.NoError(t, err)
	assert.InDelta(t, -15.0, stats.Mean, 1e-12)
	assert.InDelta(t, -5.0, stats.MeanPerAtom, 1e-12)
	assert.Equal(t, 2, stats.N)

	_, err = st.PropertyStats("dipole", nil)
	assert.Error(t, err)
}

func TestConcurrentReaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	st, err := Create(path)
	require.NoError(t, err)
	w := water(t)
	for i := 0; i < 8; i++ {
		require.NoError(t, st.AddSystems([]*nnp.Structure{w}, []nnp.Record{{}}))
	}
	require.NoError(t, st.Close())

	r1, err := Open(path)
	require.NoError(t, err)
	defer r1.Close()
	r2, err := Open(path)
	require.NoError(t, err)
	defer r2.Close()
	done := make(chan error, 2)
	for _, r := range []*Store{r1, r2} {
		go func(r *Store) {
			for i := 0; i < r.Len(); i++ {
				if _, _, err := r.Get(i); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}(r)
	}
	for i := 0; i < 2; i++ {
		assert.NoError(t, <-done)
	}
}
