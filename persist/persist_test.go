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

package persist

import (
	"testing"

	"github.com/spf13/afero"
)

type widget struct {
	Name string `json:"name"`
}

func TestLoadMissingFileIsNoop(t *testing.T) {
	s := &Store{Fs: afero.NewMemMapFs(), Path: "/etc/ruled/widgets.json"}
	var widgets []widget
	if err := s.Load(&widgets); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if widgets != nil {
		t.Fatalf("expected nil, got %+v", widgets)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	s := &Store{Fs: afero.NewMemMapFs(), Path: "/etc/ruled/widgets.json"}
	want := []widget{{Name: "a"}, {Name: "b"}}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var got []widget
	if err := s.Load(&got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Fatalf("unexpected round trip: %+v", got)
	}
}

func TestSaveOverwritesWholeFile(t *testing.T) {
	s := &Store{Fs: afero.NewMemMapFs(), Path: "/etc/ruled/widgets.json"}
	s.Save([]widget{{Name: "a"}, {Name: "b"}})
	s.Save([]widget{{Name: "c"}})

	var got []widget
	s.Load(&got)
	if len(got) != 1 || got[0].Name != "c" {
		t.Fatalf("expected overwrite to replace contents, got %+v", got)
	}
}
