// util/store.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Objects are stored msgpack-encoded and zstd-compressed; by convention
// such files have a .msgpack.zst suffix.

// EncodeObject writes obj to w.
func EncodeObject(w io.Writer, obj any) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}

	if err := msgpack.NewEncoder(zw).Encode(obj); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode object: %w", err)
	}
	return zw.Close()
}

// DecodeObject reads an object previously written by EncodeObject into
// obj, which must be a pointer.
func DecodeObject(r io.Reader, obj any) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	if err := msgpack.NewDecoder(zr).Decode(obj); err != nil {
		return fmt.Errorf("failed to decode object: %w", err)
	}
	return nil
}

// StoreObject writes obj to the named file, replacing any existing file.
func StoreObject(path string, obj any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeObject(f, obj); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// RetrieveObject reads the named file into obj.
func RetrieveObject(path string, obj any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := DecodeObject(f, obj); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
