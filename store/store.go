/*
 * store.go, part of gonnp.
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

//Package store implements the on-disk structure database: a randomly
//indexable, single-file store mapping an integer index to a molecular
//structure and its named reference properties. The backend is SQLite
//(pure-Go driver), with zstd-compressed binary blobs for the numeric
//arrays. Multiple processes may read concurrently; writes must be
//serialized by the caller.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	nnp "github.com/rmera/gonnp"
	v3 "github.com/rmera/gonnp/v3"
	"gonum.org/v1/gonum/mat"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS systems (
	id     INTEGER PRIMARY KEY,
	natoms INTEGER NOT NULL,
	z      BLOB NOT NULL,
	r      BLOB NOT NULL,
	cell   BLOB,
	pbc    INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS properties (
	system_id INTEGER NOT NULL,
	name      TEXT NOT NULL,
	rows      INTEGER NOT NULL,
	cols      INTEGER NOT NULL,
	data      BLOB NOT NULL,
	PRIMARY KEY (system_id, name)
);
`

// Store is an on-disk structure database. All quantities returned by Get are
// in internal units (A, kcal/mol); declared units are converted once, at
// ingestion.
type Store struct {
	db          *sqlx.DB
	path        string
	distUnit    string
	distFactor  float64
	propUnits   map[string]string
	propFactors map[string]float64
	atomRefs    map[string][]float64
	names       map[string]bool
}

// Option configures the creation of a store.
type Option func(*options)

type options struct {
	distUnit  string
	propUnits map[string]string
	atomRefs  map[string][]float64
	overwrite bool
}

// WithDistanceUnit declares the unit of the positions handed to AddSystems.
// The default is A.
func WithDistanceUnit(unit string) Option {
	return func(o *options) { o.distUnit = unit }
}

// WithPropertyUnit declares the unit of a property handed to AddSystems.
// Properties with no declared unit are stored as-is.
func WithPropertyUnit(name, unit string) Option {
	return func(o *options) { o.propUnits[name] = unit }
}

// WithAtomRef attaches an atomic reference table for an extensive property:
// ref[z] is the per-element additive contribution of element z, with index 0
// reserved. The table is stored as metadata, in the declared property unit.
func WithAtomRef(name string, ref []float64) Option {
	return func(o *options) { o.atomRefs[name] = append([]float64{}, ref...) }
}

// WithOverwrite makes Create replace an existing file instead of failing.
func WithOverwrite() Option {
	return func(o *options) { o.overwrite = true }
}

// Create initializes an empty store at path. It fails if the path already
// exists and WithOverwrite was not given, and it fails, before touching the
// disk, on any unit string it does not recognize.
func Create(path string, opts ...Option) (*Store, error) {
	o := &options{distUnit: nnp.InternalDistanceUnit, propUnits: map[string]string{}, atomRefs: map[string][]float64{}}
	for _, opt := range opts {
		opt(o)
	}
	S := &Store{path: path, distUnit: o.distUnit, propUnits: o.propUnits,
		atomRefs: o.atomRefs, names: map[string]bool{}}
	var err error
	if err = S.parseUnits(); err != nil {
		return nil, errDecorate(err, "Create")
	}
	if _, err = os.Stat(path); err == nil {
		if !o.overwrite {
			return nil, Error{"path exists and overwrite not requested", path, []string{"Create"}, true}
		}
		if err = os.Remove(path); err != nil {
			return nil, Error{err.Error(), path, []string{"Create"}, true}
		}
	}
	S.db, err = sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, Error{err.Error(), path, []string{"Create"}, true}
	}
	if _, err = S.db.Exec(schema); err != nil {
		return nil, Error{err.Error(), path, []string{"Create"}, true}
	}
	if err = S.writeMetadata(); err != nil {
		return nil, errDecorate(err, "Create")
	}
	return S, nil
}

// Open opens an existing store for reading and appending. Any number of
// Open handles may read concurrently.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, Error{"no store at path", path, []string{"Open"}, true}
	}
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, Error{err.Error(), path, []string{"Open"}, true}
	}
	S := &Store{db: db, path: path, names: map[string]bool{}}
	if err := S.readMetadata(); err != nil {
		return nil, errDecorate(err, "Open")
	}
	if err := S.parseUnits(); err != nil {
		return nil, errDecorate(err, "Open")
	}
	var names []string
	if err := S.db.Select(&names, "SELECT DISTINCT name FROM properties"); err != nil {
		return nil, Error{err.Error(), path, []string{"Open"}, true}
	}
	for _, n := range names {
		S.names[n] = true
	}
	return S, nil
}

func (S *Store) parseUnits() error {
	var err error
	S.distFactor, err = nnp.ParseDistanceUnit(S.distUnit)
	if err != nil {
		return errDecorate(err, "parseUnits")
	}
	S.propFactors = make(map[string]float64, len(S.propUnits))
	for name, unit := range S.propUnits {
		S.propFactors[name], err = nnp.ParsePropertyUnit(name, unit)
		if err != nil {
			return errDecorate(err, "parseUnits")
		}
	}
	return nil
}

type metadata struct {
	DistanceUnit  string               `json:"distance_unit"`
	PropertyUnits map[string]string    `json:"property_units"`
	AtomRefs      map[string][]float64 `json:"atomrefs,omitempty"`
}

func (S *Store) writeMetadata() error {
	m := metadata{DistanceUnit: S.distUnit, PropertyUnits: S.propUnits, AtomRefs: S.atomRefs}
	j, err := json.Marshal(m)
	if err != nil {
		return Error{err.Error(), S.path, []string{"writeMetadata"}, true}
	}
	_, err = S.db.Exec("INSERT OR REPLACE INTO metadata (key, value) VALUES ('units', ?)", string(j))
	if err != nil {
		return Error{err.Error(), S.path, []string{"writeMetadata"}, true}
	}
	return nil
}

func (S *Store) readMetadata() error {
	var j string
	if err := S.db.Get(&j, "SELECT value FROM metadata WHERE key = 'units'"); err != nil {
		return Error{"missing units metadata: " + err.Error(), S.path, []string{"readMetadata"}, true}
	}
	var m metadata
	if err := json.Unmarshal([]byte(j), &m); err != nil {
		return Error{"corrupted units metadata: " + err.Error(), S.path, []string{"readMetadata"}, true}
	}
	S.distUnit = m.DistanceUnit
	S.propUnits = m.PropertyUnits
	S.atomRefs = m.AtomRefs
	if S.propUnits == nil {
		S.propUnits = map[string]string{}
	}
	if S.atomRefs == nil {
		S.atomRefs = map[string][]float64{}
	}
	return nil
}

// Close closes the underlying database handle.
func (S *Store) Close() error {
	return S.db.Close()
}

// Len returns the number of structures in the store.
func (S *Store) Len() int {
	var n int
	if err := S.db.Get(&n, "SELECT COUNT(*) FROM systems"); err != nil {
		return 0
	}
	return n
}

// PropertyNames returns the names of the properties present in the store,
// i.e. the union over all added records.
func (S *Store) PropertyNames() []string {
	names := make([]string, 0, len(S.names))
	for n := range S.names {
		names = append(names, n)
	}
	return names
}

// DistanceUnit returns the distance unit the store was declared with.
func (S *Store) DistanceUnit() string { return S.distUnit }

// PropertyUnit returns the declared unit for the named property, or the
// empty string if none was declared.
func (S *Store) PropertyUnit(name string) string { return S.propUnits[name] }

// AtomRef returns the atomic reference table for the named property in
// internal units, indexed by atomic number (index 0 reserved), or nil if
// the store has none for that property.
func (S *Store) AtomRef(name string) []float64 {
	ref, ok := S.atomRefs[name]
	if !ok {
		return nil
	}
	f := S.propFactors[name]
	if f == 0 {
		f = 1
	}
	out := make([]float64, len(ref))
	for i, v := range ref {
		out[i] = v * f
	}
	return out
}

// AddSystems appends structures and their property records to the store,
// converting declared units to internal ones. Each record is written in its
// own transaction, so a validation failure on record k leaves records
// 0..k-1 durably stored. Shape mismatches between a structure's atom count
// and a per-atom property fail here, before anything from the offending
// record hits the disk. Concurrent writers are not supported; the caller
// serializes calls to AddSystems.
func (S *Store) AddSystems(structures []*nnp.Structure, properties []nnp.Record) error {
	if len(structures) != len(properties) {
		return Error{fmt.Sprintf("%d structures but %d property records", len(structures), len(properties)), S.path, []string{"AddSystems"}, true}
	}
	next := S.Len()
	for k, s := range structures {
		if err := validate(s, properties[k]); err != nil {
			return errDecorate(err, "AddSystems")
		}
		if err := S.addOne(next+k, s, properties[k]); err != nil {
			return errDecorate(err, "AddSystems")
		}
		for name := range properties[k] {
			S.names[name] = true
		}
	}
	return nil
}

//validate fails fast on shape/consistency mismatches: per-atom arrays must
//have exactly natoms rows, per-structure arrays exactly one.
func validate(s *nnp.Structure, rec nnp.Record) error {
	if err := s.Check(); err != nil {
		return err
	}
	n := s.Len()
	for name, arr := range rec {
		if nnp.Structural(name) {
			return Error{fmt.Sprintf("record may not carry the reserved key %q", name), "", []string{"validate"}, true}
		}
		rows, _ := arr.Dims()
		if rows != 1 && rows != n {
			return nnp.NewShapeMismatch(name, "validate", n, rows)
		}
	}
	return nil
}

func (S *Store) addOne(id int, s *nnp.Structure, rec nnp.Record) error {
	tx, err := S.db.Beginx()
	if err != nil {
		return Error{err.Error(), S.path, []string{"addOne"}, true}
	}
	defer tx.Rollback()
	n := s.Len()
	rdata := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		rdata = append(rdata, s.Coords.At(i, 0)*S.distFactor,
			s.Coords.At(i, 1)*S.distFactor, s.Coords.At(i, 2)*S.distFactor)
	}
	var cell []byte
	pbc := 0
	if s.Cell != nil {
		cdata := make([]float64, 0, 9)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				cdata = append(cdata, s.Cell.At(i, j)*S.distFactor)
			}
		}
		cell = encodeFloats(cdata)
		for i, p := range s.PBC {
			if p {
				pbc |= 1 << i
			}
		}
	}
	_, err = tx.Exec("INSERT INTO systems (id, natoms, z, r, cell, pbc) VALUES (?, ?, ?, ?, ?, ?)",
		id, n, encodeInts(s.Z), encodeFloats(rdata), cell, pbc)
	if err != nil {
		return Error{err.Error(), S.path, []string{"addOne"}, true}
	}
	for name, arr := range rec {
		rows, cols := arr.Dims()
		f := S.propFactors[name]
		if f == 0 {
			f = 1
		}
		data := make([]float64, 0, rows*cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				data = append(data, arr.At(i, j)*f)
			}
		}
		_, err = tx.Exec("INSERT INTO properties (system_id, name, rows, cols, data) VALUES (?, ?, ?, ?, ?)",
			id, name, rows, cols, encodeFloats(data))
		if err != nil {
			return Error{err.Error(), S.path, []string{"addOne"}, true}
		}
	}
	if err := tx.Commit(); err != nil {
		return Error{err.Error(), S.path, []string{"addOne"}, true}
	}
	return nil
}

type systemRow struct {
	ID     int    `db:"id"`
	NAtoms int    `db:"natoms"`
	Z      []byte `db:"z"`
	R      []byte `db:"r"`
	Cell   []byte `db:"cell"`
	PBC    int    `db:"pbc"`
}

type propertyRow struct {
	Name string `db:"name"`
	Rows int    `db:"rows"`
	Cols int    `db:"cols"`
	Data []byte `db:"data"`
}

// Get returns the structure at index i and its full property record,
// including the structural keys, in internal units. An out-of-range index
// returns an IndexError.
func (S *Store) Get(i int) (*nnp.Structure, nnp.Record, error) {
	var row systemRow
	err := S.db.Get(&row, "SELECT id, natoms, z, r, cell, pbc FROM systems WHERE id = ?", i)
	if err != nil {
		return nil, nil, nnp.NewIndexError(i, S.Len(), "store.Get")
	}
	s, err := decodeSystem(&row)
	if err != nil {
		return nil, nil, errDecorate(err, "Get")
	}
	rec := s.AsRecord()
	var props []propertyRow
	if err := S.db.Select(&props, "SELECT name, rows, cols, data FROM properties WHERE system_id = ?", i); err != nil {
		return nil, nil, Error{err.Error(), S.path, []string{"Get"}, true}
	}
	for _, p := range props {
		data, err := decodeFloats(p.Data)
		if err != nil {
			return nil, nil, errDecorate(err, "Get")
		}
		if len(data) != p.Rows*p.Cols {
			return nil, nil, Error{fmt.Sprintf("property %s: blob holds %d values, header says %dx%d", p.Name, len(data), p.Rows, p.Cols), S.path, []string{"Get"}, true}
		}
		rec[p.Name] = mat.NewDense(p.Rows, p.Cols, data)
	}
	return s, rec, nil
}

func decodeSystem(row *systemRow) (*nnp.Structure, error) {
	z, err := decodeInts(row.Z)
	if err != nil {
		return nil, err
	}
	rdata, err := decodeFloats(row.R)
	if err != nil {
		return nil, err
	}
	s := &nnp.Structure{Z: z}
	if len(rdata) != 3*row.NAtoms || len(z) != row.NAtoms {
		return nil, Error{fmt.Sprintf("system %d: corrupted coordinate blob", row.ID), "", []string{"decodeSystem"}, true}
	}
	if row.NAtoms == 0 {
		s.Coords = v3.Zeros(0)
	} else if s.Coords, err = v3.NewMatrix(rdata); err != nil {
		return nil, errDecorate(err, "decodeSystem")
	}
	if row.Cell != nil {
		cdata, err := decodeFloats(row.Cell)
		if err != nil {
			return nil, err
		}
		s.Cell, err = v3.NewMatrix(cdata)
		if err != nil {
			return nil, errDecorate(err, "decodeSystem")
		}
		for i := 0; i < 3; i++ {
			s.PBC[i] = row.PBC&(1<<i) != 0
		}
	}
	return s, nil
}
