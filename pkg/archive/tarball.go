// Package archive unpacks package tarballs into the package store.
//
// Registry archives are gzip-compressed tarballs whose entries all live under
// a single top-level directory ("package/" on npm). [Extract] strips that
// directory so that a package lands directly in its store directory, and
// extracting the same archive twice into the same place yields the same tree.
package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/pakt/pkg/errors"
)

// maxFileSize caps a single extracted file. Registry packages are far
// smaller; anything larger is treated as a corrupt or hostile archive.
const maxFileSize = 1 << 30

// Unpacker extracts an archive file into a directory.
type Unpacker interface {
	Unpack(ctx context.Context, src, dest string) error
}

// TarGz unpacks .tgz archives, removing Strip leading path components from
// every entry.
type TarGz struct {
	Strip int
}

// Unpack implements [Unpacker].
func (t TarGz) Unpack(ctx context.Context, src, dest string) error {
	return Extract(ctx, src, dest, t.Strip)
}

// Extract unpacks the gzip-compressed tarball at src into dest, dropping the
// first strip path components of each entry. Entries that end up empty after
// stripping are skipped. Regular files and directories are extracted; links
// and special files are ignored. Entries that would escape dest are rejected.
//
// Failures are reported with [errors.ErrCodeArchive].
func Extract(ctx context.Context, src, dest string, strip int) error {
	f, err := os.Open(src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeArchive, err, "open %s", filepath.Base(src))
	}
	defer f.Close()

	if err := extract(ctx, f, dest, strip); err != nil {
		return errors.Wrap(errors.ErrCodeArchive, err, "extract %s", filepath.Base(src))
	}
	return nil
}

func extract(ctx context.Context, r io.Reader, dest string, strip int) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gz.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	tr := tar.NewReader(gz)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		name := stripComponents(hdr.Name, strip)
		if name == "" {
			continue
		}
		target, err := safeJoin(dest, name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr); err != nil {
				return err
			}
		}
	}
}

func writeFile(target string, r io.Reader, hdr *tar.Header) error {
	if hdr.Size > maxFileSize {
		return fmt.Errorf("%s: file too large (%d bytes)", hdr.Name, hdr.Size)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	// Archives frequently carry odd modes; keep the exec bits and make sure
	// the owner can always read and write.
	mode := os.FileMode(hdr.Mode).Perm()&0o111 | 0o644
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.CopyN(f, r, hdr.Size); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// stripComponents removes the first n slash-separated components of name.
func stripComponents(name string, n int) string {
	name = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(name)), "/")
	if name == "" || name == "." {
		return ""
	}
	parts := strings.Split(name, "/")
	if len(parts) <= n {
		return ""
	}
	return strings.Join(parts[n:], "/")
}

// safeJoin joins name onto dest and refuses results outside dest.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes destination", name)
	}
	return target, nil
}
