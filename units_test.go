/*
 * units_test.go, part of gonnp.
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
	"math"
	"testing"
)

func TestDistanceUnits(Te *testing.T) {
	f, err := ParseDistanceUnit("A")
	if err != nil || f != 1 {
		Te.Errorf("A should convert with factor 1: %v %v", f, err)
	}
	f, err = ParseDistanceUnit("bohr")
	if err != nil || math.Abs(f-Bohr2A) > 1e-12 {
		Te.Errorf("wrong Bohr factor: %v %v", f, err)
	}
	f, err = ParseDistanceUnit(" NM ")
	if err != nil || f != NM2A {
		Te.Errorf("unit parsing should be case- and space-insensitive: %v %v", f, err)
	}
	if _, err = ParseDistanceUnit("parsec"); err == nil {
		Te.Error("expected an error for an unknown distance unit")
	}
}

func TestEnergyUnits(Te *testing.T) {
	f, err := ParseEnergyUnit("Hartree")
	if err != nil || f != H2Kcal {
		Te.Errorf("wrong Hartree factor: %v %v", f, err)
	}
	f, err = ParseEnergyUnit("eV")
	if err != nil || f != EV2Kcal {
		Te.Errorf("wrong eV factor: %v %v", f, err)
	}
	f, err = ParseEnergyUnit("kJ/mol")
	if err != nil || math.Abs(f-KJ2Kcal) > 1e-12 {
		Te.Errorf("wrong kJ/mol factor: %v %v", f, err)
	}
}

func TestPropertyUnits(Te *testing.T) {
	//an empty unit means "already in internal units"
	f, err := ParsePropertyUnit(Energy, "")
	if err != nil || f != 1 {
		Te.Errorf("empty unit should convert with factor 1: %v %v", f, err)
	}
	//a compound unit is energy over distance
	f, err = ParsePropertyUnit(Forces, "eV/Bohr")
	if err != nil || math.Abs(f-EV2Kcal/Bohr2A) > 1e-9 {
		Te.Errorf("wrong eV/Bohr factor: %v %v", f, err)
	}
	//kcal/mol has a slash but is not a force unit
	f, err = ParsePropertyUnit(Energy, "kcal/mol")
	if err != nil || f != 1 {
		Te.Errorf("kcal/mol should parse as a plain energy: %v %v", f, err)
	}
	if _, err = ParsePropertyUnit(Forces, "eV/parsec"); err == nil {
		Te.Error("expected an error for an unknown denominator")
	}
	if _, err = ParsePropertyUnit(Energy, "BTU"); err == nil {
		Te.Error("expected an error for an unknown energy unit")
	}
}
