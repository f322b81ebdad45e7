/*
 * config.go, part of gonnp.
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

//Package config loads and validates experiment configurations. Everything
//that can be wrong with a configuration (malformed YAML, missing fields,
//unknown unit strings) fails here, before any data is touched.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	nnp "github.com/rmera/gonnp"
	"gopkg.in/yaml.v3"
)

// Output configures one training target.
type Output struct {
	Name   string  `yaml:"name" validate:"required"`
	Loss   string  `yaml:"loss" validate:"oneof=mse mae"`
	Weight float64 `yaml:"weight" validate:"gt=0"`
	Unit   string  `yaml:"unit"`
}

// Config is an experiment configuration.
type Config struct {
	StorePath    string   `yaml:"store" validate:"required"`
	SplitPath    string   `yaml:"split"`
	DistanceUnit string   `yaml:"distance_unit"`
	Cutoff       float64  `yaml:"cutoff" validate:"gt=0"`
	BatchSize    int      `yaml:"batch_size" validate:"gt=0"`
	Workers      int      `yaml:"workers" validate:"gte=1"`
	Seed         int64    `yaml:"seed"`
	Outputs      []Output `yaml:"outputs" validate:"required,min=1,dive"`
}

// Load reads, parses and validates a configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, Error{err.Error(), path, []string{"Load"}}
	}
	c := &Config{DistanceUnit: nnp.InternalDistanceUnit, BatchSize: 32, Workers: 1}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, Error{"malformed YAML: " + err.Error(), path, []string{"Load"}}
	}
	if err := c.Validate(); err != nil {
		return nil, errDecorate(err, "Load")
	}
	return c, nil
}

// Validate checks field constraints and every unit string. It is called by
// Load, and exported so configurations built in code get the same checks.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return Error{err.Error(), "", []string{"Validate"}}
	}
	if _, err := nnp.ParseDistanceUnit(c.DistanceUnit); err != nil {
		return errDecorate(err, "Validate")
	}
	for _, o := range c.Outputs {
		if _, err := nnp.ParsePropertyUnit(o.Name, o.Unit); err != nil {
			return errDecorate(err, "Validate")
		}
	}
	return nil
}

//errDecorate asserts that the error implements nnp.Error and decorates it
//with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(nnp.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for configuration errors. It fulfills
//nnp.Error.
type Error struct {
	message string
	path    string
	deco    []string
}

func (err Error) Error() string {
	if err.path == "" {
		return fmt.Sprintf("config error: %s", err.message)
	}
	return fmt.Sprintf("config %s error: %s", err.path, err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}
