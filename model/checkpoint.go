/*
 * checkpoint.go, part of gonnp.
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

package model

import (
	"encoding/gob"
	"os"
	"time"
)

// Parameterized is a model whose state can be exported to and restored
// from a flat named-parameter map.
type Parameterized interface {
	Parameters() map[string][]float64
	SetParameters(map[string][]float64) error
}

// Checkpoint is the serialized state of a model, tagged with the device it
// was trained on so inference setups can reproduce placement.
type Checkpoint struct {
	Device     string
	Created    time.Time
	Parameters map[string][]float64
}

// SaveCheckpoint writes the model state to path.
func SaveCheckpoint(path, device string, m Parameterized) error {
	f, err := os.Create(path)
	if err != nil {
		return Error{err.Error(), []string{"SaveCheckpoint"}, true}
	}
	defer f.Close()
	c := Checkpoint{Device: device, Created: time.Now(), Parameters: m.Parameters()}
	if err := gob.NewEncoder(f).Encode(c); err != nil {
		return Error{err.Error(), []string{"SaveCheckpoint"}, true}
	}
	return nil
}

// LoadCheckpoint restores the model state from path and returns the
// checkpoint metadata.
func LoadCheckpoint(path string, m Parameterized) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Error{err.Error(), []string{"LoadCheckpoint"}, true}
	}
	defer f.Close()
	var c Checkpoint
	if err := gob.NewDecoder(f).Decode(&c); err != nil {
		return nil, Error{err.Error(), []string{"LoadCheckpoint"}, true}
	}
	if err := m.SetParameters(c.Parameters); err != nil {
		return nil, errDecorate(err, "LoadCheckpoint")
	}
	return &c, nil
}
