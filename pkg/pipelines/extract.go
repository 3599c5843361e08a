package pipelines

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/spf13/afero"
)

// extractArchive unpacks a product zip into dest. Product archives wrap
// their content in a single top folder ("Sitecore 8.1 rev. 151003/"), which
// is stripped so Website, Data and Databases land directly under dest.
func extractArchive(fs afero.Fs, archive, dest string) (int, error) {
	f, err := fs.Open(archive)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrFileNotFound, "failed to open product archive").
			WithDetail("path", archive)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrFileAccess, "failed to stat product archive").
			WithDetail("path", archive)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrProductInvalid, "product archive is not a zip file").
			WithDetail("path", archive)
	}

	names := make([]string, 0, len(zr.File))
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}
	prefix := commonTopFolder(names)

	count := 0
	for _, zf := range zr.File {
		rel := strings.TrimPrefix(path.Clean(strings.ReplaceAll(zf.Name, `\`, "/")), "/")
		if prefix != "" && rel == strings.TrimSuffix(prefix, "/") {
			continue
		}
		rel = strings.TrimPrefix(rel, prefix)
		if rel == "" || rel == "." {
			continue
		}
		if rel == ".." || strings.HasPrefix(rel, "../") {
			return count, errors.Newf(errors.ErrProductInvalid, "archive entry %q escapes the target directory", zf.Name).
				WithDetail("path", archive)
		}
		target := filepath.Join(dest, filepath.FromSlash(rel))
		if zf.FileInfo().IsDir() {
			if err := fs.MkdirAll(target, 0755); err != nil {
				return count, errors.Wrap(err, errors.ErrDirCreate, "failed to create directory").
					WithDetail("path", target)
			}
			continue
		}
		if err := writeEntry(fs, zf, target); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func writeEntry(fs afero.Fs, zf *zip.File, target string) error {
	if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create directory").
			WithDetail("path", filepath.Dir(target))
	}
	rc, err := zf.Open()
	if err != nil {
		return errors.Wrap(err, errors.ErrProductInvalid, "failed to read archive entry").
			WithDetail("entry", zf.Name)
	}
	defer func() { _ = rc.Close() }()

	out, err := fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to create file").
			WithDetail("path", target)
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write file").
			WithDetail("path", target)
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write file").
			WithDetail("path", target)
	}
	return nil
}

// commonTopFolder returns "top/" when every entry lives under the same first
// path segment, otherwise "".
func commonTopFolder(names []string) string {
	top := ""
	for _, n := range names {
		n = strings.TrimPrefix(strings.ReplaceAll(n, `\`, "/"), "/")
		i := strings.Index(n, "/")
		if i < 0 {
			return ""
		}
		seg := n[:i]
		if top == "" {
			top = seg
		} else if seg != top {
			return ""
		}
	}
	if top == "" {
		return ""
	}
	return top + "/"
}
