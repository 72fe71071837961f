// sim/archive.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vpsim/vpsim/scenario"
	"github.com/vpsim/vpsim/util"
)

const (
	archiveMagic   = "vpsim-results"
	archiveVersion = 1
)

type ArchiveHeader struct {
	Magic    string            `msgpack:"magic"`
	Version  int               `msgpack:"version"`
	RunID    string            `msgpack:"run_id"`
	Created  time.Time         `msgpack:"created"`
	Params   Params            `msgpack:"params"`
	Scenario scenario.Scenario `msgpack:"scenario"`
}

// Archive holds the results of a run along with what is needed to
// reproduce it. It is stored msgpack-encoded and zstd-compressed.
type Archive struct {
	Header  ArchiveHeader `msgpack:"header"`
	Results []TrialResult `msgpack:"results"`
}

func NewArchive(runID string, p Params, sc *scenario.Scenario) *Archive {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Archive{
		Header: ArchiveHeader{
			Magic:    archiveMagic,
			Version:  archiveVersion,
			RunID:    runID,
			Created:  time.Now().UTC(),
			Params:   p,
			Scenario: *sc,
		},
	}
}

func (a *Archive) Add(r TrialResult) {
	a.Results = append(a.Results, r)
}

func (a *Archive) Save(path string) error {
	return util.StoreObject(path, a)
}

func LoadArchive(path string) (*Archive, error) {
	var a Archive
	if err := util.RetrieveObject(path, &a); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if a.Header.Magic != archiveMagic {
		return nil, fmt.Errorf("%s: %w", path, ErrBadArchive)
	}
	if a.Header.Version != archiveVersion {
		return nil, fmt.Errorf("%s: version %d: %w", path, a.Header.Version, ErrBadArchive)
	}
	return &a, nil
}
