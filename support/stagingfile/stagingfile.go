// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package stagingfile constructs files through atomic filesystem operations.
//
// While an F is active, its contents reside at a temporary path alongside the
// destination. Once finished, F can either be committed or destroyed. On
// commit it is atomically renamed into its destination; on destroy it is
// deleted.
package stagingfile

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// F manages a staged file.
type F struct {
	// file is the open staging file, or nil once committed or destroyed.
	file *os.File
	// dest is the final destination path.
	dest string
}

// New creates a staging file that will be committed to dest.
//
// The staging file is created in dest's directory so the final rename stays
// on one filesystem.
func New(dest string) (*F, error) {
	fd, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".staging")
	if err != nil {
		return nil, errors.Wrap(err, "creating staging file")
	}
	return &F{
		file: fd,
		dest: dest,
	}, nil
}

// File returns the open staging file.
//
// File panics if the staging file has already been committed or destroyed.
func (f *F) File() *os.File {
	if f.file == nil {
		panic("invalid staging file")
	}
	return f.file
}

// Dest returns the destination path.
func (f *F) Dest() string { return f.dest }

// Destroy closes and deletes the staging file. It is a no-op after Commit or
// a previous Destroy, so it is safe to defer unconditionally.
func (f *F) Destroy() error {
	if f.file == nil {
		return nil
	}

	name := f.file.Name()
	_ = f.file.Close()
	f.file = nil
	return os.Remove(name)
}

// Commit finalizes the staging file, atomically moving it to its destination.
func (f *F) Commit() error {
	if f.file == nil {
		return errors.New("invalid staging file")
	}

	name := f.file.Name()
	if err := f.file.Close(); err != nil {
		f.file = nil
		_ = os.Remove(name)
		return errors.Wrap(err, "closing staging file")
	}
	f.file = nil

	if err := os.Rename(name, f.dest); err != nil {
		_ = os.Remove(name)
		return errors.Wrap(err, "committing staging file")
	}
	return nil
}
