// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"io"
	"io/ioutil"
	"os"
	"sort"

	"github.com/pierrec/lz4"
)

// Open opens the kar archived from r. It will also check
// if the file is actually a kar archive, will return ErrFileFormat
// when it is not.
func Open(r io.ReaderAt) (*Archive, error) {
	magic := make([]byte, MagicLength)
	if num, err := r.ReadAt(magic, 0); num < MagicLength || string(magic) != Magic {
		if err != nil && err != io.EOF {
			return nil, err
		}
		return nil, ErrFileFormat
	}

	headerSizeBytes := make([]byte, HeaderSizeNumberLength)
	if num, _ := r.ReadAt(headerSizeBytes, MagicLength); num < HeaderSizeNumberLength {
		return nil, ErrFileFormat
	}

	headerSize, err := binaryToint64(headerSizeBytes)
	if err != nil || headerSize <= 0 || headerSize > MaxHeaderSize {
		return nil, ErrFileFormat
	}
	if size, ok := sourceSize(r); ok && headerSize > size-dataOffset(0) {
		return nil, ErrFileFormat
	}

	headerBytes := make([]byte, headerSize)
	if num, _ := r.ReadAt(headerBytes, MagicLength+HeaderSizeNumberLength); int64(num) < headerSize {
		return nil, ErrFileFormat
	}

	var header Header
	if err := gobDecode(&header, headerBytes); err != nil {
		return nil, ErrFileFormat
	}

	ar := &Archive{
		reader:  r,
		header:  header,
		data:    dataOffset(headerSize),
		entries: make(map[string]IndexEntry, len(header.Index)),
	}
	for _, e := range header.Index {
		if e.Offset < 0 || e.CompressedSize < 0 || e.Size < 0 {
			return nil, ErrFileFormat
		}
		ar.entries[e.Name] = e
	}
	return ar, nil
}

// sourceSize reports the length of r when it can tell without reading.
func sourceSize(r io.ReaderAt) (int64, bool) {
	switch src := r.(type) {
	case interface{ Size() int64 }:
		return src.Size(), true
	case interface{ Stat() (os.FileInfo, error) }:
		info, err := src.Stat()
		if err != nil {
			return 0, false
		}
		return info.Size(), true
	}
	return 0, false
}

// Archive provides concurrent io for a kar file, and can provide
// an io.Reader for each file separately to perform actions on.
type Archive struct {
	reader  io.ReaderAt
	header  Header
	data    int64
	entries map[string]IndexEntry
}

// Header returns the archive header along with its index.
func (a *Archive) Header() Header {
	return a.header
}

// Names returns the names of every entry, sorted.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.entries))
	for name := range a.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadAll returns the entire contents of a file with a given name
func (a *Archive) ReadAll(name string) ([]byte, error) {
	f, err := a.Open(name)
	if err != nil {
		return nil, err
	}

	data, err := ioutil.ReadAll(io.LimitReader(f, f.Size()))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != f.Size() {
		return nil, ErrFileFormat
	}
	return data, nil
}

// Open returns a Reader for a file in the Archive
func (a *Archive) Open(name string) (*Reader, error) {
	e, ok := a.entries[name]
	if !ok {
		return nil, ErrNotFound
	}
	section := io.NewSectionReader(a.reader, a.data+e.Offset, e.CompressedSize)
	return &Reader{
		Reader: lz4.NewReader(section),
		entry:  e,
	}, nil
}

// Reader is a reader for a single file in an Archive.
// Reads return decompressed data.
type Reader struct {
	io.Reader

	entry IndexEntry
}

// Name returns the name of the entry being read.
func (r *Reader) Name() string {
	return r.entry.Name
}

// Size returns the uncompressed size of the entry.
func (r *Reader) Size() int64 {
	return r.entry.Size
}
