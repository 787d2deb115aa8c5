// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package persist reads and writes a single JSON document through an
// injected afero.Fs, so tests can swap in afero.NewMemMapFs() instead of
// touching a real disk.
package persist

import (
	"encoding/json"
	"os"

	"github.com/spf13/afero"

	errwrap "github.com/pkg/errors"
)

// Store reads and writes a JSON document at Path on Fs. The zero value is
// not usable; both fields are required.
type Store struct {
	Fs   afero.Fs
	Path string
}

// Load decodes the document at Path into out. A missing file is treated as
// "nothing persisted yet" and leaves out untouched rather than erroring.
func (s *Store) Load(out interface{}) error {
	data, err := afero.ReadFile(s.Fs, s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errwrap.Wrapf(err, "persist: reading %s", s.Path)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errwrap.Wrapf(err, "persist: decoding %s", s.Path)
	}
	return nil
}

// Save rewrites the document at Path with v's JSON encoding in full.
func (s *Store) Save(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errwrap.Wrapf(err, "persist: encoding %s", s.Path)
	}
	if err := afero.WriteFile(s.Fs, s.Path, data, 0644); err != nil {
		return errwrap.Wrapf(err, "persist: writing %s", s.Path)
	}
	return nil
}
