/*
 * errors.go, part of gonnp.
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

import "fmt"

// Error is the interface for errors that all packages in this library implement.
// The Decorate method allows to add and retrieve info from the error, without
// changing its type or wrapping it around something else. The decoration slice
// should contain a list of the functions in the calling stack, plus, for each
// function, any relevant information, or nothing. If passed an empty string,
// Decorate just returns the current decoration without adding to it.
type Error interface {
	Error() string
	Decorate(string) []string
}

// PropertyError is a failure tied to one named property: the property is
// missing from a record, or its shape disagrees with what was declared.
type PropertyError struct {
	message  string
	property string
	deco     []string
	missing  bool
}

func (err *PropertyError) Error() string {
	return fmt.Sprintf("gonnp: property %q: %s", err.property, err.message)
}

// Decorate adds new information to the error.
func (err *PropertyError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Property returns the name of the offending property.
func (err *PropertyError) Property() string { return err.property }

// Missing returns true if the error is a property absent from a record,
// false for shape/consistency problems.
func (err *PropertyError) Missing() bool { return err.missing }

// NewPropertyNotFound returns the error for a property requested but absent.
func NewPropertyNotFound(property, caller string) *PropertyError {
	return &PropertyError{message: "property not found", property: property, deco: []string{caller}, missing: true}
}

// NewShapeMismatch returns the error for a property whose array dimensions
// disagree with the structure or with the declared shape.
func NewShapeMismatch(property, caller string, want, got int) *PropertyError {
	m := fmt.Sprintf("shape mismatch: want leading dimension %d, got %d", want, got)
	return &PropertyError{message: m, property: property, deco: []string{caller}}
}

// IndexError reports a random-access index outside the valid range.
type IndexError struct {
	index int
	size  int
	deco  []string
}

func (err *IndexError) Error() string {
	return fmt.Sprintf("gonnp: index %d out of range (size %d)", err.index, err.size)
}

// Decorate adds new information to the error.
func (err *IndexError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// NewIndexError returns the error for the out-of-range index i on a
// collection of the given size.
func NewIndexError(i, size int, caller string) *IndexError {
	return &IndexError{index: i, size: size, deco: []string{caller}}
}

// UnitError reports an unrecognized or incompatible physical unit string.
// It is always raised at configuration time, before any computation.
type UnitError struct {
	unit string
	kind string
	deco []string
}

func (err *UnitError) Error() string {
	return fmt.Sprintf("gonnp: unknown %s unit %q", err.kind, err.unit)
}

// Decorate adds new information to the error.
func (err *UnitError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}
