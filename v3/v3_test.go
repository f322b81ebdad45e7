/*
 * v3_test.go, part of gonnp.
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

package v3

import (
	"math"
	"testing"
)

func TestNewMatrix(Te *testing.T) {
	a, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		Te.Error(err)
	}
	if a.NVecs() != 2 {
		Te.Errorf("wrong number of vectors: %d", a.NVecs())
	}
	if a.At(1, 2) != 6 {
		Te.Errorf("wrong element: %v", a.At(1, 2))
	}
	_, err = NewMatrix([]float64{1, 2, 3, 4})
	if err == nil {
		Te.Error("expected an error for a slice not divisible by 3")
	}
}

func TestViewsAndSet(Te *testing.T) {
	a := Zeros(3)
	v, _ := NewMatrix([]float64{1, 1, 1})
	a.SetVec(1, v)
	if a.At(1, 0) != 1 || a.At(0, 0) != 0 {
		Te.Error("SetVec put the vector in the wrong place")
	}
	view := a.VecView(1)
	view.Set(0, 2, 9)
	if a.At(1, 2) != 9 {
		Te.Error("views should share memory with the viewed matrix")
	}
}

func TestNormDotCross(Te *testing.T) {
	a, _ := NewMatrix([]float64{3, 4, 0})
	if math.Abs(a.Norm(0)-5) > appzero {
		Te.Errorf("wrong norm: %v", a.Norm(0))
	}
	x, _ := NewMatrix([]float64{1, 0, 0})
	y, _ := NewMatrix([]float64{0, 1, 0})
	if x.Dot(0, y, 0) != 0 {
		Te.Error("orthogonal vectors should have zero dot product")
	}
	z := Zeros(1)
	z.Cross(x, y)
	if z.At(0, 2) != 1 || z.At(0, 0) != 0 {
		Te.Errorf("wrong cross product: %v %v %v", z.At(0, 0), z.At(0, 1), z.At(0, 2))
	}
}

func TestStack(Te *testing.T) {
	a, _ := NewMatrix([]float64{1, 1, 1})
	b, _ := NewMatrix([]float64{2, 2, 2, 3, 3, 3})
	f := Zeros(3)
	f.Stack(a, b)
	if f.At(0, 0) != 1 || f.At(1, 0) != 2 || f.At(2, 0) != 3 {
		Te.Error("Stack produced the wrong matrix")
	}
}

func TestEmpty(Te *testing.T) {
	e := Zeros(0)
	if e.NVecs() != 0 {
		Te.Error("an empty matrix should have zero vectors")
	}
	c := e.Clone()
	if c.NVecs() != 0 {
		Te.Error("cloning an empty matrix should give an empty matrix")
	}
}

func TestDet(Te *testing.T) {
	id, _ := NewMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	if math.Abs(Det(id)-1) > appzero {
		Te.Errorf("wrong determinant for the identity: %v", Det(id))
	}
}
