/*
 * codec.go, part of gonnp.
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

package store

import (
	"encoding/binary"
	"math"

	"github.com/klauspost/compress/zstd"
)

//The binary encoding of property arrays: little-endian float64 (int32 for
//atomic numbers), zstd-compressed. Compression pays off because reference
//datasets repeat long runs of near-identical bytes (coordinates of related
//conformers, zero-padded forces).

var zenc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
var zdec, _ = zstd.NewReader(nil)

func encodeFloats(data []float64) []byte {
	raw := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(raw[8*i:], math.Float64bits(v))
	}
	return zenc.EncodeAll(raw, make([]byte, 0, len(raw)/2))
}

func decodeFloats(blob []byte) ([]float64, error) {
	raw, err := zdec.DecodeAll(blob, nil)
	if err != nil {
		return nil, Error{"corrupted float blob: " + err.Error(), "", []string{"decodeFloats"}, true}
	}
	if len(raw)%8 != 0 {
		return nil, Error{"corrupted float blob: odd length", "", []string{"decodeFloats"}, true}
	}
	data := make([]float64, len(raw)/8)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	return data, nil
}

func encodeInts(data []int) []byte {
	raw := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[4*i:], uint32(int32(v)))
	}
	return zenc.EncodeAll(raw, make([]byte, 0, len(raw)/2))
}

func decodeInts(blob []byte) ([]int, error) {
	raw, err := zdec.DecodeAll(blob, nil)
	if err != nil {
		return nil, Error{"corrupted int blob: " + err.Error(), "", []string{"decodeInts"}, true}
	}
	if len(raw)%4 != 0 {
		return nil, Error{"corrupted int blob: odd length", "", []string{"decodeInts"}, true}
	}
	data := make([]int, len(raw)/4)
	for i := range data {
		data[i] = int(int32(binary.LittleEndian.Uint32(raw[4*i:])))
	}
	return data, nil
}
