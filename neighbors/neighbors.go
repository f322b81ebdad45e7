/*
 * neighbors.go, part of gonnp.
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

//Package neighbors builds the neighbor graph of a structure: every directed
//center->neighbor pair of atoms within a cutoff radius, with the
//corresponding displacement vectors. Periodic images are enumerated
//explicitly over the integer shifts that can reach into the cutoff sphere,
//so the builder stays correct when the cutoff exceeds half the cell
//(a minimum-image convention would silently drop pairs there).
package neighbors

import (
	"fmt"
	"math"

	nnp "github.com/rmera/gonnp"
	v3 "github.com/rmera/gonnp/v3"
	"gonum.org/v1/gonum/mat"
)

// List is the neighbor graph of one structure. For every k, the directed
// pair goes from atom Centers[k] to atom Neighbors[k], with displacement
// vector Disp (row k) = r_j + shift - r_i and distance Dist[k] <= cutoff.
// The graph is derived data: it must be rebuilt whenever positions change.
type List struct {
	Centers   []int
	Neighbors []int
	Disp      *v3.Matrix
	Dist      []float64
}

// Len returns the number of directed pairs in the list.
func (L *List) Len() int {
	return len(L.Centers)
}

// Build computes the neighbor list of s with the given cutoff, in A. Every
// pair with interatomic distance within the cutoff, accounting for periodic
// images on the periodic axes, is reported exactly once per direction.
// Self-pairs across distinct periodic images are included; the same-atom,
// same-image pair is not. A zero cutoff or an empty structure yields an
// empty list, not an error.
func Build(s *nnp.Structure, cutoff float64) (*List, error) {
	if cutoff < 0 {
		return nil, Error{fmt.Sprintf("negative cutoff %v", cutoff), []string{"Build"}, true}
	}
	if err := s.Check(); err != nil {
		return nil, errDecorate(err, "Build")
	}
	n := s.Len()
	ret := &List{Centers: []int{}, Neighbors: []int{}, Dist: []float64{}}
	disp := make([]float64, 0, 3*n)
	if n == 0 || cutoff == 0 {
		ret.Disp = v3.Zeros(0)
		return ret, nil
	}
	shifts := imageShifts(s, cutoff)
	var d [3]float64
	for i := 0; i < n; i++ {
		xi := s.Coords.At(i, 0)
		yi := s.Coords.At(i, 1)
		zi := s.Coords.At(i, 2)
		for j := 0; j < n; j++ {
			for _, sh := range shifts {
				if i == j && sh[0] == 0 && sh[1] == 0 && sh[2] == 0 {
					continue
				}
				d[0] = s.Coords.At(j, 0) + sh[0] - xi
				d[1] = s.Coords.At(j, 1) + sh[1] - yi
				d[2] = s.Coords.At(j, 2) + sh[2] - zi
				dist := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
				if dist > cutoff {
					continue
				}
				ret.Centers = append(ret.Centers, i)
				ret.Neighbors = append(ret.Neighbors, j)
				ret.Dist = append(ret.Dist, dist)
				disp = append(disp, d[0], d[1], d[2])
			}
		}
	}
	if len(disp) == 0 {
		ret.Disp = v3.Zeros(0)
		return ret, nil
	}
	var err error
	ret.Disp, err = v3.NewMatrix(disp)
	if err != nil {
		return nil, errDecorate(err, "Build")
	}
	return ret, nil
}

//imageShifts enumerates the cartesian shift vectors of every periodic image
//whose cell can reach into a cutoff sphere. For each periodic axis the
//integer range is +-ceil(cutoff/h), with h the perpendicular width of the
//cell along that axis; non-periodic axes only get the zero shift.
func imageShifts(s *nnp.Structure, cutoff float64) [][3]float64 {
	var nmax [3]int
	if s.Cell != nil {
		vol := math.Abs(v3.Det(s.Cell))
		for k := 0; k < 3; k++ {
			if !s.PBC[k] || vol == 0 {
				continue
			}
			//perpendicular width = volume / area of the face spanned
			//by the other two cell vectors
			a := s.Cell.VecView((k + 1) % 3)
			b := s.Cell.VecView((k + 2) % 3)
			cross := v3.Zeros(1)
			cross.Cross(a, b)
			h := vol / cross.Norm(0)
			nmax[k] = int(math.Ceil(cutoff / h))
		}
	}
	shifts := make([][3]float64, 0, (2*nmax[0]+1)*(2*nmax[1]+1)*(2*nmax[2]+1))
	for na := -nmax[0]; na <= nmax[0]; na++ {
		for nb := -nmax[1]; nb <= nmax[1]; nb++ {
			for nc := -nmax[2]; nc <= nmax[2]; nc++ {
				var sh [3]float64
				if s.Cell != nil {
					for c := 0; c < 3; c++ {
						sh[c] = float64(na)*s.Cell.At(0, c) +
							float64(nb)*s.Cell.At(1, c) +
							float64(nc)*s.Cell.At(2, c)
					}
				}
				shifts = append(shifts, sh)
			}
		}
	}
	return shifts
}

// AsRecord returns the graph as the property arrays the rest of the library
// consumes: Idx_i, Idx_j (pair indices) and Rij (displacements). An empty
// graph contributes no keys, which downstream code treats as "no pairs".
func (L *List) AsRecord() nnp.Record {
	rec := make(nnp.Record, 3)
	p := L.Len()
	if p == 0 {
		return rec
	}
	ci := make([]float64, p)
	cj := make([]float64, p)
	for k := 0; k < p; k++ {
		ci[k] = float64(L.Centers[k])
		cj[k] = float64(L.Neighbors[k])
	}
	rec[nnp.Idx_i] = mat.NewDense(p, 1, ci)
	rec[nnp.Idx_j] = mat.NewDense(p, 1, cj)
	rec[nnp.Rij] = mat.DenseCopyOf(L.Disp)
	return rec
}

//Errors

//errDecorate asserts that the error implements nnp.Error and decorates it
//with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(nnp.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for neighbor list errors. It fulfills
//nnp.Error.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("neighbors error: %s", err.message)
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
