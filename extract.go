package main

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extract opens a downloaded artifact archive and retrieves the file
// with the given name. The published archives are flat, but tar entries
// may carry a leading "./". It returns the local path to the extracted
// file, written next to the archive.
func Extract(archive string, name string) (string, error) {
	in, err := os.Open(archive)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = in.Close()
	}()

	reader, err := newArchiveFileReader(in, name)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(filepath.Dir(archive), name)

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = out.Close()
	}()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}

	return dst, nil
}

func newArchiveFileReader(archive *os.File, filename string) (io.Reader, error) {
	name := archive.Name()
	switch {
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		gzReader, err := gzip.NewReader(archive)
		if err != nil {
			return nil, err
		}
		tarReader := tar.NewReader(gzReader)
		for {
			header, err := tarReader.Next()
			if err != nil {
				break
			}
			if strings.TrimPrefix(header.Name, "./") == filename {
				return tarReader, nil
			}
		}
		return nil, fmt.Errorf("file not found: %v", filename)
	case strings.HasSuffix(name, ".zip"):
		stat, err := archive.Stat()
		if err != nil {
			return nil, err
		}
		zipReader, err := zip.NewReader(archive, stat.Size())
		if err != nil {
			return nil, err
		}
		return zipReader.Open(filename)
	}

	return nil, fmt.Errorf("unsupported archive")
}
