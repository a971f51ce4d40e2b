package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smarts8855/online-shop/internal/domain"
)

// ErrInvalidFileType rejects anything but PNG and JPEG images.
var ErrInvalidFileType = domain.E(domain.KindInvalidInput, "invalid image type")

var fileTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
}

type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func FromFileHeader(fh *multipart.FileHeader) Upload {
	return Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open:        func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// Check validates the declared mimetype and size without touching storage.
func Check(up Upload, maxBytes int64) error {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(up.ContentType, ";", 2)[0]))
	if _, ok := fileTypes[ct]; !ok {
		return ErrInvalidFileType
	}
	if maxBytes > 0 && up.Size > maxBytes {
		return domain.E(domain.KindInvalidInput, fmt.Sprintf("image %s exceeds %d bytes", up.Filename, maxBytes))
	}
	return nil
}

type Store interface {
	// Save writes the upload and returns its public URI.
	Save(ctx context.Context, up Upload) (string, error)
	// Remove deletes a file previously returned by Save. Unknown URIs are ignored.
	Remove(ctx context.Context, uri string) error
}

type Local struct {
	Dir        string
	PublicBase string
	MaxBytes   int64
	now        func() time.Time
}

func NewLocal(dir, publicBase string, maxBytes int64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{Dir: dir, PublicBase: strings.TrimRight(publicBase, "/"), MaxBytes: maxBytes, now: time.Now}, nil
}

func (s *Local) Save(ctx context.Context, up Upload) (string, error) {
	if err := Check(up, s.MaxBytes); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := s.fileName(up)
	src, err := up.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return s.PublicBase + "/" + name, nil
}

func (s *Local) Remove(_ context.Context, uri string) error {
	name, ok := strings.CutPrefix(uri, s.PublicBase+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// fileName keeps the client's base name, spaces dashed, plus a timestamp.
func (s *Local) fileName(up Upload) string {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(up.ContentType, ";", 2)[0]))
	base := filepath.Base(strings.ReplaceAll(up.Filename, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '-'
		case r < 0x20, r == '/', r == '%', r == '?', r == '#':
			return -1
		}
		return r
	}, base)
	if base == "" || base == "." {
		base = "image"
	}
	return fmt.Sprintf("%s-%d.%s", base, s.now().UnixNano(), fileTypes[ct])
}
