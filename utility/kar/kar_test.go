// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar_test

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devblok/prism/utility/kar"
)

var (
	testString1 = "idunvovkjnreovmegihjbrqlkmfrjnb"
	testString2 = "idunvovkjnreovmsdvwrvnervnreegihjbrqlkmfrjnb"
)

func buildArchive(t *testing.T, entries map[string]string) []byte {
	builder, err := kar.NewBuilder(kar.Header{
		Author:      "devblok",
		DateCreated: time.Now().Unix(),
		Version:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer builder.Close()

	for name, content := range entries {
		if err := builder.Add(name, strings.NewReader(content)); err != nil {
			t.Fatal(err)
		}
	}

	buf := bytes.NewBuffer([]byte{})
	written, err := builder.WriteTo(buf)
	if err != nil {
		t.Fatal(err)
	}
	if written != int64(buf.Len()) {
		t.Errorf("reported %d bytes written, buffer holds %d", written, buf.Len())
	}
	return buf.Bytes()
}

func TestCreateAndRead(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildArchive(t, map[string]string{
		"test":  testString1,
		"test2": testString2,
	})))
	if err != nil {
		t.Fatal(err)
	}

	f, err := ar.Open("test2")
	if err != nil {
		t.Fatal(err)
	}
	if f.Size() != int64(len(testString2)) {
		t.Errorf("size %d, expected %d", f.Size(), len(testString2))
	}

	result, err := ioutil.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(result) != testString2 {
		t.Error("test string does not match up")
	}
}

func TestCreateAndReadAll(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildArchive(t, map[string]string{
		"test":  testString1,
		"test2": testString2,
	})))
	if err != nil {
		t.Fatal(err)
	}

	for name, expected := range map[string]string{"test": testString1, "test2": testString2} {
		f, err := ar.ReadAll(name)
		if err != nil {
			t.Fatal(err)
		}
		if string(f) != expected {
			t.Errorf("%s: test string does not match up", name)
		}
	}

	header := ar.Header()
	if header.Author != "devblok" || header.Version != 1 || len(header.Index) != 2 {
		t.Errorf("unexpected header %+v", header)
	}
	if names := ar.Names(); len(names) != 2 || names[0] != "test" || names[1] != "test2" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestReadConcurrently(t *testing.T) {
	entries := make(map[string]string)
	for idx := 0; idx < 16; idx++ {
		entries[fmt.Sprintf("shaders/%d.spv", idx)] = strings.Repeat(fmt.Sprintf("%d", idx), 100+idx)
	}

	ar, err := kar.Open(bytes.NewReader(buildArchive(t, entries)))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for name, expected := range entries {
		wg.Add(1)
		go func(name, expected string) {
			defer wg.Done()
			data, err := ar.ReadAll(name)
			if err != nil {
				t.Error(err)
				return
			}
			if string(data) != expected {
				t.Errorf("%s does not match up", name)
			}
		}(name, expected)
	}
	wg.Wait()
}

func TestEmptyEntry(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildArchive(t, map[string]string{"empty": ""})))
	if err != nil {
		t.Fatal(err)
	}
	data, err := ar.ReadAll("empty")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("expected no data, got %d bytes", len(data))
	}
}

func TestOpenMissingEntry(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildArchive(t, map[string]string{"test": testString1})))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ar.Open("nope"); err != kar.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := ar.ReadAll("nope"); err != kar.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenNotAnArchive(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":     {},
		"tar":       []byte("ustar\x00000000000000000000"),
		"truncated": []byte("KAR\x00\x10\x00"),
		"no header": append([]byte("KAR\x00"), 0xff, 0, 0, 0, 0, 0, 0, 0),
		"garbage":   append([]byte("KAR\x00"), 4, 0, 0, 0, 0, 0, 0, 0, 1, 2, 3, 4),
	} {
		if _, err := kar.Open(bytes.NewReader(data)); err != kar.ErrFileFormat {
			t.Errorf("%s: expected ErrFileFormat, got %v", name, err)
		}
	}
}

// readerAtOnly hides every method but ReadAt, so Open cannot learn the
// source length.
type readerAtOnly struct {
	r *bytes.Reader
}

func (o readerAtOnly) ReadAt(p []byte, off int64) (int, error) {
	return o.r.ReadAt(p, off)
}

func headerSizeOnly(size uint64) []byte {
	bts := []byte(kar.Magic)
	for idx := 0; idx < kar.HeaderSizeNumberLength; idx++ {
		bts = append(bts, byte(size>>(8*idx)))
	}
	return bts
}

func TestOpenOversizeHeader(t *testing.T) {
	for name, size := range map[string]uint64{
		"huge":          1 << 62,
		"negative":      1 << 63,
		"above maximum": kar.MaxHeaderSize + 1,
		"beyond source": 64,
	} {
		if _, err := kar.Open(bytes.NewReader(headerSizeOnly(size))); err != kar.ErrFileFormat {
			t.Errorf("%s: expected ErrFileFormat, got %v", name, err)
		}
		if _, err := kar.Open(readerAtOnly{bytes.NewReader(headerSizeOnly(size))}); err != kar.ErrFileFormat {
			t.Errorf("%s without length: expected ErrFileFormat, got %v", name, err)
		}
	}
}

func TestOpenTruncatedFile(t *testing.T) {
	archive := buildArchive(t, map[string]string{"test": testString1})
	path := filepath.Join(t.TempDir(), "truncated.kar")
	if err := ioutil.WriteFile(path, archive[:len(archive)/2], 0644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	ar, err := kar.Open(f)
	if err != nil {
		if err != kar.ErrFileFormat {
			t.Errorf("expected ErrFileFormat, got %v", err)
		}
		return
	}
	if _, err := ar.ReadAll("test"); err == nil {
		t.Error("expected reading a truncated entry to fail")
	}
}
