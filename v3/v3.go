/*
 * v3.go, part of gonnp.
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

//Package v3 implements a matrix type for sets of vectors in 3D space,
//based on gonum/mat. Within the package it is understood that a "vector" is
//a row vector, i.e. the cartesian coordinates of a point in 3D space. The
//names of several functions in the library reflect this.

package v3

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const appzero float64 = 0.000000000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

//Matrix is a set of vectors in 3D space. It must be able to implement any
//gonum mat interface through the embedded Dense.
type Matrix struct {
	*mat.Dense
}

//Matrix2Dense returns the underlying gonum Dense of A.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

//Dense2Matrix wraps a gonum Dense into a Matrix. It panics if the Dense
//does not have exactly 3 columns.
func Dense2Matrix(A *mat.Dense) *Matrix {
	_, c := A.Dims()
	if c != 3 {
		panic(ErrShape)
	}
	return &Matrix{A}
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 {
		return nil, Error{fmt.Sprintf("input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(rows, cols, data)}, nil
}

//Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	if vecs == 0 {
		//gonum panics on zero-row Dense, but an empty set of vectors is
		//legal in this library (empty structures must work).
		return &Matrix{}
	}
	return &Matrix{mat.NewDense(vecs, cols, make([]float64, cols*vecs))}
}

//NVecs returns the number of vectors in the receiver.
func (F *Matrix) NVecs() int {
	if F.Dense == nil {
		return 0
	}
	r, _ := F.Dims()
	return r
}

//VecView returns a view of the ith vector of the matrix in the receiver.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

//View returns a view of F starting from i,j and spanning r rows and
//c columns. Changes in the view are reflected in F and vice-versa.
func (F *Matrix) View(i, j, r, c int) *Matrix {
	ret := F.Dense.Slice(i, i+r, j, j+c).(*mat.Dense)
	return &Matrix{ret}
}

//SetMatrix puts the matrix A in the receiver starting from the ith vector
//and jth column of the receiver.
func (F *Matrix) SetMatrix(i, j int, A *Matrix) {
	b := F.RawMatrix()
	ar, ac := A.Dims()
	fc := 3
	if ar+i > F.NVecs() || ac+j > fc {
		panic(ErrShape)
	}
	r := make([]float64, ac)
	for k := 0; k < ar; k++ {
		mat.Row(r, k, A)
		startpoint := fc*(k+i) + j
		copy(b.Data[startpoint:startpoint+ac], r)
	}
}

//SetVec replaces the ith vector of the receiver with the vector A.
func (F *Matrix) SetVec(i int, A *Matrix) {
	F.SetMatrix(i, 0, A)
}

//Copy copies the content of A into the receiver. Both matrices must have
//the same number of vectors.
func (F *Matrix) Copy(A *Matrix) {
	if A.NVecs() == 0 && F.NVecs() == 0 {
		return
	}
	if F.NVecs() != A.NVecs() {
		panic(ErrShape)
	}
	F.Dense.Copy(A.Dense)
}

//Clone returns a newly allocated copy of A.
func (F *Matrix) Clone() *Matrix {
	ret := Zeros(F.NVecs())
	ret.Copy(F)
	return ret
}

//Stack puts A stacked over B in F.
func (F *Matrix) Stack(A, B *Matrix) {
	ar := A.NVecs()
	br := B.NVecs()
	if F.NVecs() != ar+br {
		panic(ErrShape)
	}
	if ar > 0 {
		F.SetMatrix(0, 0, A)
	}
	if br > 0 {
		F.SetMatrix(ar, 0, B)
	}
}

//Add puts in the receiver the sum A+B. The three matrices need the same
//number of vectors.
func (F *Matrix) Add(A, B *Matrix) {
	F.Dense.Add(A.Dense, B.Dense)
}

//Sub puts in the receiver the difference A-B. The three matrices need the
//same number of vectors.
func (F *Matrix) Sub(A, B *Matrix) {
	F.Dense.Sub(A.Dense, B.Dense)
}

//Scale puts in the receiver the matrix A scaled by v.
func (F *Matrix) Scale(v float64, A *Matrix) {
	F.Dense.Scale(v, A.Dense)
}

//AddVec adds the 1-vector matrix vec to every vector of the receiver.
func (F *Matrix) AddVec(A, vec *Matrix) {
	if vec.NVecs() != 1 {
		panic(ErrShape)
	}
	x := vec.At(0, 0)
	y := vec.At(0, 1)
	z := vec.At(0, 2)
	for i := 0; i < A.NVecs(); i++ {
		F.Set(i, 0, A.At(i, 0)+x)
		F.Set(i, 1, A.At(i, 1)+y)
		F.Set(i, 2, A.At(i, 2)+z)
	}
}

//Norm returns the Euclidean norm of the ith vector of the receiver.
func (F *Matrix) Norm(i int) float64 {
	x := F.At(i, 0)
	y := F.At(i, 1)
	z := F.At(i, 2)
	return math.Sqrt(x*x + y*y + z*z)
}

//Dot returns the dot product between the ith vector of the receiver and the
//jth vector of A.
func (F *Matrix) Dot(i int, A *Matrix, j int) float64 {
	return F.At(i, 0)*A.At(j, 0) + F.At(i, 1)*A.At(j, 1) + F.At(i, 2)*A.At(j, 2)
}

//Cross puts in the first vector of the receiver the cross product of the
//first vectors of A and B.
func (F *Matrix) Cross(A, B *Matrix) {
	F.Set(0, 0, A.At(0, 1)*B.At(0, 2)-A.At(0, 2)*B.At(0, 1))
	F.Set(0, 1, A.At(0, 2)*B.At(0, 0)-A.At(0, 0)*B.At(0, 2))
	F.Set(0, 2, A.At(0, 0)*B.At(0, 1)-A.At(0, 1)*B.At(0, 0))
}

//Errors

//Error is the general error type for the v3 package. It implements the
//gonnp Error interface.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("v3 error: %s", err.message)
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

//Panic messages for fundamental functions. If something goes wrong in one of
//those, the program is way-most likely wrong and should crash.
const (
	ErrShape       = "v3: inconsistent matrix shapes"
	ErrDeterminant = "v3: determinant of a non 3x3 matrix requested"
)

//Det returns the determinant of a 3x3 matrix. Panics if the matrix is not 3x3.
func Det(A mat.Matrix) float64 {
	r, c := A.Dims()
	if r != 3 || c != 3 {
		panic(ErrDeterminant)
	}
	return A.At(0, 0)*(A.At(1, 1)*A.At(2, 2)-A.At(2, 1)*A.At(1, 2)) -
		A.At(1, 0)*(A.At(0, 1)*A.At(2, 2)-A.At(2, 1)*A.At(0, 2)) +
		A.At(2, 0)*(A.At(0, 1)*A.At(1, 2)-A.At(1, 1)*A.At(0, 2))
}
