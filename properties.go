/*
 * properties.go, part of gonnp.
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

//The canonical property keys. Every package in the library (storage,
//transforms, batching, models) refers to properties by these names, so a
//string literal duplicated somewhere else is a bug, not a convention.
//A collision between a key produced by a transform and one already present
//in a record is a caller error and is never resolved silently.
const (
	//Structural properties.
	Z    = "_atomic_numbers" //per-atom, Nx1
	R    = "_positions"      //per-atom, Nx3, internal unit A
	Cell = "_cell"           //per-structure, 3x3 row-major as 1x9
	PBC  = "_pbc"            //per-structure, 1x3, 0 or 1 per axis

	//Neighbor graph, attached by the neighbors transform. Not persisted:
	//it must be recomputed whenever positions change.
	Idx_i = "_idx_i" //pair centers, Px1
	Idx_j = "_idx_j" //pair neighbors, Px1
	Rij   = "_rij"   //pair displacement vectors, Px3
	Dij   = "_dij"   //pair distances, Px1

	//Batch bookkeeping, synthesized by the batch assembler.
	IdxM = "_idx_m" //owning-structure index per atom, Nx1
	N    = "_n_atoms"

	//Common target/output properties.
	Energy = "energy" //per-structure scalar, internal unit kcal/mol
	Forces = "forces" //per-atom, Nx3, internal unit kcal/mol/A
)

//Structural returns whether the property name is one of the reserved
//structural/bookkeeping keys, as opposed to a physical target property.
func Structural(name string) bool {
	switch name {
	case Z, R, Cell, PBC, Idx_i, Idx_j, Rij, Dij, IdxM, N:
		return true
	}
	return false
}
