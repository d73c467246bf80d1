package main

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// sgfFile is the text of one SGF file and where it came from
type sgfFile struct {
	source string
	name   string
	text   string
}

func isSGF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".sgf")
}

func isArchive(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".tgz") || strings.HasSuffix(lower, ".tar.gz")
}

// sourceName strips directories and extensions from an input path
func sourceName(input string) string {
	base := filepath.Base(input)
	for _, ext := range []string{".tar.gz", ".tgz", ".sgf"} {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return base
}

// loader sends every SGF file found in inputs to out, all errors are fatal
func loader(ctx context.Context, inputs []string, source string, out chan<- sgfFile) error {
	send := func(f sgfFile) error {
		select {
		case out <- f:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, input := range inputs {
		src := source
		if src == "" {
			src = sourceName(input)
		}
		info, err := os.Stat(input)
		if err != nil {
			return err
		}
		switch {
		case info.IsDir():
			err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() || !isSGF(path) {
					return err
				}
				b, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				return send(sgfFile{src, path, string(b)})
			})
		case isArchive(input):
			err = readTgz(input, func(name string, b []byte) error {
				return send(sgfFile{src, name, string(b)})
			})
		default:
			var b []byte
			b, err = os.ReadFile(input)
			if err == nil {
				err = send(sgfFile{src, input, string(b)})
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// readTgz calls fn with every SGF file of a single .tar.gz archive
func readTgz(tgzFile string, fn func(name string, b []byte) error) error {

	// Open .tar.gz input file stream
	fin, err := os.Open(tgzFile)
	if err != nil {
		return fmt.Errorf("failed to open tgz archive: %w", err)
	}
	defer fin.Close()

	// Decompress input file stream
	gzipReader, err := gzip.NewReader(fin)
	if err != nil {
		return fmt.Errorf("failed to decompress tgz archive: %w", err)
	}
	defer gzipReader.Close()

	// Read from archive and send data for processing
	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil // End of archive
		}
		if err != nil {
			return fmt.Errorf("tar archive read error: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !isSGF(header.Name) {
			continue
		}
		b, err := io.ReadAll(tarReader)
		if err != nil {
			return fmt.Errorf("sgf read error: %w", err)
		}
		if err := fn(header.Name, b); err != nil {
			return err
		}
	}
}
