// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shader provides compiled SPIR-V shaders to the renderer from
// a directory, a packr box or a kar archive.
package shader

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/devblok/prism/utility/kar"
	"github.com/gobuffalo/packd"
	"github.com/pkg/errors"
)

// Source kinds accepted by configuration.
const (
	KindDir     = "dir"
	KindBox     = "box"
	KindArchive = "kar"
)

// Errors for shaders that exist but cannot be SPIR-V.
var (
	ErrEmpty     = errors.New("shader bytecode is empty")
	ErrTruncated = errors.New("shader bytecode is not a whole number of 32-bit words")
)

func checkBytecode(name string, code []byte) ([]byte, error) {
	if len(code) == 0 {
		return nil, errors.Wrap(ErrEmpty, name)
	}
	if len(code)%4 != 0 {
		return nil, errors.Wrap(ErrTruncated, name)
	}
	return code, nil
}

// DirSource reads shaders from files in a directory.
type DirSource struct {
	Dir string
}

// NewDirSource returns a source reading from dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// Bytecode reads the whole file called name.
func (s *DirSource) Bytecode(name string) ([]byte, error) {
	code, err := ioutil.ReadFile(filepath.Join(s.Dir, filepath.Clean("/"+name)))
	if err != nil {
		return nil, err
	}
	return checkBytecode(name, code)
}

// BoxSource reads shaders from a packr box, or anything else that can find
// files by name.
type BoxSource struct {
	box packd.Finder
}

// NewBoxSource returns a source reading from box.
func NewBoxSource(box packd.Finder) *BoxSource {
	return &BoxSource{box: box}
}

// Bytecode finds name in the box.
func (s *BoxSource) Bytecode(name string) ([]byte, error) {
	code, err := s.box.Find(name)
	if err != nil {
		return nil, err
	}
	return checkBytecode(name, code)
}

// ArchiveSource reads shaders from a kar archive.
type ArchiveSource struct {
	archive *kar.Archive
	file    *os.File
}

// NewArchiveSource returns a source reading from an opened archive.
func NewArchiveSource(archive *kar.Archive) *ArchiveSource {
	return &ArchiveSource{archive: archive}
}

// OpenArchive opens the kar archive at path. Close releases the file.
func OpenArchive(path string) (*ArchiveSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	archive, err := kar.Open(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "kar.Open(%s)", path)
	}
	return &ArchiveSource{archive: archive, file: f}, nil
}

// Bytecode decompresses the archive entry called name.
func (s *ArchiveSource) Bytecode(name string) ([]byte, error) {
	code, err := s.archive.ReadAll(name)
	if err == kar.ErrNotFound {
		return nil, os.ErrNotExist
	} else if err != nil {
		return nil, err
	}
	return checkBytecode(name, code)
}

// Close closes the archive file when the source opened it.
func (s *ArchiveSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
