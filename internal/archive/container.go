package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/surma/gocpio"
)

// IterateContainer yields Members for zip/tar/cpio archives. visit may
// return false to stop iteration early (e.g. --max-files saturation).
//
// A truncated or corrupt archive surfaces as an error from visit's last
// call or from the final return; the caller is expected to report it as a
// warning and keep whatever members were already visited.
func IterateContainer(r io.Reader, format Format, size int64, visit func(Member) (bool, error)) error {
	switch format {
	case FormatZip:
		return iterateZip(r, size, visit)
	case FormatTar:
		return iterateTar(r, visit)
	case FormatCPIO:
		return iterateCPIO(r, visit)
	default:
		return errors.Errorf("archive: unsupported container format %v", format)
	}
}

func iterateZip(r io.Reader, size int64, visit func(Member) (bool, error)) error {
	ra, ok := r.(io.ReaderAt)
	var data []byte
	if !ok {
		buf, err := io.ReadAll(r)
		if err != nil {
			return errors.Wrap(err, "zip: buffering non-seekable reader")
		}
		data = buf
		ra = bytes.NewReader(data)
		size = int64(len(data))
	}
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return errors.Wrap(err, "zip")
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		// Encrypted entries are not searched. The standard flag bit 0 marks them.
		if f.Flags&0x1 != 0 {
			continue
		}
		f := f
		m := Member{
			Name: f.Name,
			Size: int64(f.UncompressedSize64),
			Open: func() (io.ReadCloser, error) { return f.Open() },
		}
		cont, err := visit(m)
		if err != nil || !cont {
			return err
		}
	}
	return nil
}

func iterateTar(r io.Reader, visit func(Member) (bool, error)) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "tar")
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		buf, err := io.ReadAll(tr)
		if err != nil {
			return errors.Wrap(err, "tar: reading entry "+hdr.Name)
		}
		m := Member{
			Name: hdr.Name,
			Size: hdr.Size,
			Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(buf)), nil },
		}
		cont, err := visit(m)
		if err != nil || !cont {
			return err
		}
	}
}

func iterateCPIO(r io.Reader, visit func(Member) (bool, error)) error {
	cr := cpio.NewReader(r)
	for {
		hdr, err := cr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "cpio")
		}
		if hdr.Mode.IsDir() {
			continue
		}
		buf, err := io.ReadAll(cr)
		if err != nil {
			return errors.Wrap(err, "cpio: reading entry "+hdr.Name)
		}
		m := Member{
			Name: hdr.Name,
			Size: hdr.Size,
			Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(buf)), nil },
		}
		cont, err := visit(m)
		if err != nil || !cont {
			return err
		}
	}
}
