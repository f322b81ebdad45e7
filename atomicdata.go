/*
 * atomicdata.go, part of gonnp.
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

//Tables indexed by atomic number. Index 0 is reserved/unused, which is also
//the convention for atomic reference tables (see package store).
//Note that just common "bio-elements" plus a few metals are present.

//masses, in amu.
var atomicMass = []float64{
	0,      //reserved
	1.0,    //H
	4.002,  //He
	6.94,   //Li
	9.012,  //Be
	10.81,  //B
	12.01,  //C
	14.01,  //N
	16.00,  //O
	18.998, //F
	20.17,  //Ne
	22.99,  //Na
	24.30,  //Mg
	26.98,  //Al
	28.08,  //Si
	30.97,  //P
	32.06,  //S
	35.45,  //Cl
	39.94,  //Ar
	39.1,   //K
	40.08,  //Ca
}

var symbol2Z = map[string]int{
	"H": 1, "He": 2, "Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8,
	"F": 9, "Ne": 10, "Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15,
	"S": 16, "Cl": 17, "Ar": 18, "K": 19, "Ca": 20, "Cr": 24, "Mn": 25,
	"Fe": 26, "Co": 27, "Cu": 29, "Zn": 30, "Se": 34, "Br": 35, "I": 53,
}

var z2Symbol = func() map[int]string {
	m := make(map[int]string, len(symbol2Z))
	for k, v := range symbol2Z {
		m[v] = k
	}
	return m
}()

// AtomicNumber returns the atomic number for a chemical symbol, or 0 if the
// symbol is not in the table.
func AtomicNumber(symbol string) int {
	return symbol2Z[symbol]
}

// Symbol returns the chemical symbol for an atomic number, or the empty
// string if the number is not in the table.
func Symbol(z int) string {
	return z2Symbol[z]
}

// Mass returns the atomic mass, in amu, for the given atomic number. It
// returns 0 for atomic numbers outside the table, it is up to the caller
// to check.
func Mass(z int) float64 {
	if z <= 0 || z >= len(atomicMass) {
		return 0
	}
	return atomicMass[z]
}
