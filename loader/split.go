/*
 * split.go, part of gonnp.
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

package loader

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

// Split is a persisted partition of dataset indices. Saving it alongside a
// trained model guarantees reproducible train/validation/test partitions
// across runs.
type Split struct {
	Train      []int `json:"train_idx"`
	Validation []int `json:"val_idx"`
	Test       []int `json:"test_idx"`
}

// RandomSplit partitions the indices 0..n-1 with the given train and
// validation fractions (the remainder goes to test), shuffled with the
// given seed.
func RandomSplit(n int, trainFrac, valFrac float64, seed int64) (*Split, error) {
	if trainFrac < 0 || valFrac < 0 || trainFrac+valFrac > 1 {
		return nil, Error{fmt.Sprintf("bad split fractions %v/%v", trainFrac, valFrac), []string{"RandomSplit"}, true}
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	ntrain := int(float64(n) * trainFrac)
	nval := int(float64(n) * valFrac)
	s := &Split{
		Train:      append([]int{}, perm[:ntrain]...),
		Validation: append([]int{}, perm[ntrain:ntrain+nval]...),
		Test:       append([]int{}, perm[ntrain+nval:]...),
	}
	return s, nil
}

// Save writes the split to a JSON file.
func (s *Split) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return Error{err.Error(), []string{"Split.Save"}, true}
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(s); err != nil {
		return Error{err.Error(), []string{"Split.Save"}, true}
	}
	return nil
}

// LoadSplit reads a split previously written by Save.
func LoadSplit(path string) (*Split, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Error{err.Error(), []string{"LoadSplit"}, true}
	}
	defer f.Close()
	s := new(Split)
	if err := json.NewDecoder(f).Decode(s); err != nil {
		return nil, Error{err.Error(), []string{"LoadSplit"}, true}
	}
	return s, nil
}
