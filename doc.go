/*
 * doc.go, part of gonnp.
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

/*Package nnp is the main package of the goNNP library. It provides the shared
data model for building, training and deploying neural network potentials for
molecular systems: atomic structures, named property records, unit handling
and the canonical property keys used by every other package in the library.


	**goNNP Capabilities**

    Stores molecular structures and their reference properties (energies,
	forces, etc.) in an on-disk, randomly-indexable database (package store).

    Computes neighbor lists within a cutoff radius, for free, fully-periodic
	and mixed-periodicity systems (package neighbors).

    Composes preprocessing pipelines (offset removal, precision casts,
	neighbor-list attachment) that run lazily per sample (package transform).

    Assembles variable-size structures into flat batches without padding
	(package batch).

    Composes input modules, a learned representation and output modules into
	a potential, with forces obtained as the negative gradient of the energy
	(package model).

    Binds a potential to named outputs with losses, weights and metrics for
	an external training loop (package train), with parallel prefetching and
	reproducible dataset splits (package loader).

    Drives molecular dynamics through a calculator interface that recomputes
	the neighbor graph as positions change (package md).


Property arrays are gonum mat.Dense matrices keyed by the name constants
declared in this package. Per-atom arrays have one row per atom; per-structure
arrays have a single row. Positions use the v3 subpackage, a Nx3 matrix type
based on gonum/mat where each row is one point in space.*/
package nnp
