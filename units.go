/*
 * units.go, part of gonnp.
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

import "strings"

//This provides useful conversion factors and the unit boundary of the
//library. Everything inside goNNP is in A and kcal/mol; declared units are
//converted at the store/model boundary.

//Conversions
const (
	Deg2Rad = 0.0174533
	Rad2Deg = 1 / 0.0174533
	H2Kcal  = 627.509 //Hartree 2 Kcal/mol
	Kcal2H  = 1 / 627.509
	KJ2Kcal = 1 / 4.184
	Kcal2KJ = 4.184
	EV2Kcal = 23.060548
	Kcal2EV = 1 / 23.060548
	A2Bohr  = 1.889725989
	Bohr2A  = 1 / 1.889725989
	A2NM    = 0.1
	NM2A    = 10.0
)

//The internal unit system. Quantities read from a store or produced by a
//model are in these units unless converted by the caller.
const (
	InternalDistanceUnit = "A"
	InternalEnergyUnit   = "kcal/mol"
)

var distanceUnits = map[string]float64{
	"a":        1.0,
	"ang":      1.0,
	"angstrom": 1.0,
	"bohr":     Bohr2A,
	"nm":       NM2A,
}

var energyUnits = map[string]float64{
	"kcal/mol": 1.0,
	"kj/mol":   KJ2Kcal,
	"hartree":  H2Kcal,
	"ha":       H2Kcal,
	"ev":       EV2Kcal,
}

// ParseDistanceUnit returns the factor that converts the given distance unit
// to the internal unit (A). Unit names are case-insensitive. An unrecognized
// unit returns an UnitError.
func ParseDistanceUnit(unit string) (float64, error) {
	f, ok := distanceUnits[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, &UnitError{unit: unit, kind: "distance", deco: []string{"ParseDistanceUnit"}}
	}
	return f, nil
}

// ParseEnergyUnit returns the factor that converts the given energy unit to
// the internal unit (kcal/mol). Unit names are case-insensitive. An
// unrecognized unit returns an UnitError.
func ParseEnergyUnit(unit string) (float64, error) {
	f, ok := energyUnits[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, &UnitError{unit: unit, kind: "energy", deco: []string{"ParseEnergyUnit"}}
	}
	return f, nil
}

// ParsePropertyUnit returns the factor converting the given unit for the
// named property to internal units. Forces take compound units in the form
// "energy/distance" (say, "eV/Bohr"); plain energies take energy units;
// positions take distance units. Properties with no declared unit use the
// empty string, which converts with factor 1.
func ParsePropertyUnit(property, unit string) (float64, error) {
	if unit == "" {
		return 1.0, nil
	}
	if property == R {
		return ParseDistanceUnit(unit)
	}
	if i := strings.Index(unit, "/"); i > 0 {
		//could still be kcal/mol or kJ/mol rather than a force
		if f, err := ParseEnergyUnit(unit); err == nil {
			return f, nil
		}
		last := strings.LastIndex(unit, "/")
		e, err := ParseEnergyUnit(unit[:last])
		if err != nil {
			return 0, errDecorate(err, "ParsePropertyUnit")
		}
		d, err := ParseDistanceUnit(unit[last+1:])
		if err != nil {
			return 0, errDecorate(err, "ParsePropertyUnit")
		}
		return e / d, nil
	}
	f, err := ParseEnergyUnit(unit)
	if err != nil {
		return 0, errDecorate(err, "ParsePropertyUnit")
	}
	return f, nil
}

//errDecorate asserts that the error implements Error and decorates it with
//the caller's name before returning it. Panics on a non-gonnp error, as
//getting one here means the program is wrong.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}
