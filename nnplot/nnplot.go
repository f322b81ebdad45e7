/*
 * nnplot.go, part of gonnp.
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

//Package nnplot draws the two diagnostic plots one keeps making while
//fitting potentials: parity (predicted vs reference) and learning curves.
//It uses the Plotinum-descended gonum/plot library.
package nnplot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Parity writes a predicted-vs-reference scatter plot to filename (the
// extension selects the format, e.g. .png or .svg). Both slices must have
// the same length.
func Parity(pred, ref []float64, title, filename string) error {
	if len(pred) != len(ref) {
		return Error{fmt.Sprintf("%d predictions but %d references", len(pred), len(ref)), []string{"Parity"}}
	}
	if len(ref) == 0 {
		return Error{"nothing to plot", []string{"Parity"}}
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "reference"
	p.Y.Label.Text = "predicted"
	p.Add(plotter.NewGrid())
	pts := make(plotter.XYs, len(pred))
	lo, hi := ref[0], ref[0]
	for i := range pred {
		pts[i].X = ref[i]
		pts[i].Y = pred[i]
		if ref[i] < lo {
			lo = ref[i]
		}
		if ref[i] > hi {
			hi = ref[i]
		}
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return Error{err.Error(), []string{"Parity"}}
	}
	p.Add(s)
	//the x=y diagonal, where a perfect model would put every point
	diag := plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}}
	l, err := plotter.NewLine(diag)
	if err != nil {
		return Error{err.Error(), []string{"Parity"}}
	}
	p.Add(l)
	if err := p.Save(12*vg.Centimeter, 12*vg.Centimeter, filename); err != nil {
		return Error{err.Error(), []string{"Parity"}}
	}
	return nil
}

// LearningCurve writes train and validation losses per epoch to filename.
// val may be nil if no validation loss was tracked.
func LearningCurve(train, val []float64, filename string) error {
	p := plot.New()
	p.Title.Text = "learning curve"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "loss"
	p.Add(plotter.NewGrid())
	curve := func(losses []float64, name string) error {
		pts := make(plotter.XYs, len(losses))
		for i, v := range losses {
			pts[i].X = float64(i)
			pts[i].Y = v
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		p.Add(l)
		p.Legend.Add(name, l)
		return nil
	}
	if err := curve(train, "train"); err != nil {
		return Error{err.Error(), []string{"LearningCurve"}}
	}
	if val != nil {
		if err := curve(val, "validation"); err != nil {
			return Error{err.Error(), []string{"LearningCurve"}}
		}
	}
	if err := p.Save(14*vg.Centimeter, 10*vg.Centimeter, filename); err != nil {
		return Error{err.Error(), []string{"LearningCurve"}}
	}
	return nil
}

//Error is the general structure for plotting errors. It fulfills nnp.Error.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string {
	return fmt.Sprintf("nnplot error: %s", err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}
