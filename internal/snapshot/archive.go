package snapshot

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

// archiveDir writes every regular file under srcDir (recursively) to a
// gzip-compressed tar stream, with paths relative to srcDir, tarring
// the assembled snapshot directory (compacted environments plus the
// update-file tree) into a single portable archive. Tar has no
// third-party replacement available, so archive/tar is used as-is;
// gzip is klauspost/compress's drop-in, faster implementation rather
// than the standard library's.
func archiveDir(srcDir string, w io.Writer) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)

		if info.IsDir() {
			hdr.Name += "/"
			return tw.WriteHeader(hdr)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to archive directory", err)
	}

	if err := tw.Close(); err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to finalize archive", err)
	}
	return gz.Close()
}

// extractArchive reverses archiveDir, materializing the gzip-compressed
// tar stream r under destDir.
func extractArchive(r io.Reader, destDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return engerrors.New(engerrors.CodeInvalidStoreFile, "not a valid snapshot archive", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return engerrors.New(engerrors.CodeInvalidStoreFile, "corrupt snapshot archive", err)
		}

		target := filepath.Join(destDir, filepath.FromSlash(hdr.Name))
		if rel, relErr := filepath.Rel(destDir, target); relErr != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
			return engerrors.New(engerrors.CodeInvalidStoreFile, "snapshot archive contains a path escaping the destination directory", nil)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}
