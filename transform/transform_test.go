/*
 * transform_test.go, part of gonnp.
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

package transform

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	nnp "github.com/rmera/gonnp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func waterRecord(energy float64) nnp.Record {
	return nnp.Record{
		nnp.Z: mat.NewDense(3, 1, []float64{8, 1, 1}),
		nnp.R: mat.NewDense(3, 3, []float64{
			0, 0, 0,
			0.96, 0, 0,
			-0.24, 0.93, 0,
		}),
		nnp.Energy: mat.NewDense(1, 1, []float64{energy}),
	}
}

func TestRemoveAddRoundTrip(t *testing.T) {
	refs := make([]float64, 10)
	refs[1] = -0.5
	refs[8] = -75.0
	off := Offsets{Property: nnp.Energy, Mean: -1.3, PerAtom: true, AtomRefs: refs}
	rec := waterRecord(-80.0)
	removed, err := (&RemoveOffsets{off}).Apply(rec)
	require.NoError(t, err)
	//original untouched
	orig, _ := rec.Get(nnp.Energy)
	assert.InDelta(t, -80.0, orig.At(0, 0), 1e-12)
	//baseline: 3*(-1.3) + (-75.0) + 2*(-0.5) = -79.9
	e, _ := removed.Get(nnp.Energy)
	assert.InDelta(t, -80.0-(-79.9), e.At(0, 0), 1e-9)

	restored, err := (&AddOffsets{off}).Apply(removed)
	require.NoError(t, err)
	e, _ = restored.Get(nnp.Energy)
	assert.InDelta(t, -80.0, e.At(0, 0), 1e-9)
}

func TestRemoveOffsetsMissingProperty(t *testing.T) {
	rec := waterRecord(-80.0)
	delete(rec, nnp.Energy)
	_, err := (&RemoveOffsets{Offsets{Property: nnp.Energy}}).Apply(rec)
	require.Error(t, err)
	var perr *nnp.PropertyError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.Missing())
}

func TestRemoveOffsetsBadReferenceTable(t *testing.T) {
	refs := []float64{0, -0.5} //no entry for oxygen
	rec := waterRecord(-80.0)
	_, err := (&RemoveOffsets{Offsets{Property: nnp.Energy, AtomRefs: refs}}).Apply(rec)
	assert.Error(t, err)
}

func TestSinglePrecision(t *testing.T) {
	rec := waterRecord(1.0 + 1e-12)
	out, err := (&SinglePrecision{Names: []string{nnp.Energy}}).Apply(rec)
	require.NoError(t, err)
	e, _ := out.Get(nnp.Energy)
	assert.Equal(t, float64(float32(1.0+1e-12)), e.At(0, 0))
	//positions were not named, so they keep full precision
	r, _ := out.Get(nnp.R)
	assert.Equal(t, -0.24, r.At(2, 0))
	//the input record is never mutated
	orig, _ := rec.Get(nnp.Energy)
	assert.Equal(t, 1.0+1e-12, orig.At(0, 0))
}

func TestNeighborListTransform(t *testing.T) {
	rec := waterRecord(-80.0)
	out, err := (&NeighborList{Cutoff: 2.0}).Apply(rec)
	require.NoError(t, err)
	idxi, err := out.Get(nnp.Idx_i)
	require.NoError(t, err)
	rows, _ := idxi.Dims()
	assert.Equal(t, 6, rows, "water under a 2 A cutoff has all 6 directed pairs")
	_, err = out.Get(nnp.Rij)
	assert.NoError(t, err)
	//running it twice must collide on the pair keys
	_, err = (&NeighborList{Cutoff: 2.0}).Apply(out)
	assert.Error(t, err)
}

func TestPipelineOrder(t *testing.T) {
	off := Offsets{Property: nnp.Energy, Mean: -10}
	p := Pipeline{
		&RemoveOffsets{off},
		&NeighborList{Cutoff: 2.0},
	}
	out, err := p.Apply(waterRecord(-80.0))
	require.NoError(t, err)
	e, _ := out.Get(nnp.Energy)
	assert.InDelta(t, -70.0, e.At(0, 0), 1e-12)
	_, err = out.Get(nnp.Idx_j)
	assert.NoError(t, err)
}

// Remove followed by add with the same statistics is the identity, for any
// mean and any energy.
func TestOffsetRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("remove then add is identity", prop.ForAll(
		func(energy, mean float64, peratom bool) bool {
			off := Offsets{Property: nnp.Energy, Mean: mean, PerAtom: peratom}
			rec := waterRecord(energy)
			removed, err := (&RemoveOffsets{off}).Apply(rec)
			if err != nil {
				return false
			}
			restored, err := (&AddOffsets{off}).Apply(removed)
			if err != nil {
				return false
			}
			e, err := restored.Get(nnp.Energy)
			if err != nil {
				return false
			}
			tol := 1e-9 * math.Max(1, math.Abs(energy)+math.Abs(mean))
			return math.Abs(e.At(0, 0)-energy) < tol
		},
		gen.Float64Range(-1e4, 1e4),
		gen.Float64Range(-1e3, 1e3),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
