// Package storage persists uploaded files and hands back the public path
// that is stored on the owning record.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Sentinel errors for uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrEmptyFile           = errors.New("empty file")
)

// Upload directories per record kind.
const (
	DirAssignments = "tugas"
	DirLetters     = "surat"
	DirInternships = "magang"
	DirTheses      = "skripsi"
	DirMaterials   = "materi"
	DirVideos      = "video"
)

// allowedMIMETypes is checked against the sniffed type and its parents.
var allowedMIMETypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/zip",
	"text/plain",
	"image/jpeg",
	"image/png",
	"video/mp4",
	"video/webm",
	"video/quicktime",
}

// sniffLen is how many leading bytes are used for content detection.
const sniffLen = 3072

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// Saved describes a stored file.
type Saved struct {
	Path string
	MIME string
	Size int64
}

// FileStore persists uploads under a kind directory.
type FileStore interface {
	Save(ctx context.Context, dir, name string, up Upload) (Saved, error)
}

// Local stores files on the local filesystem and serves them under /uploads.
type Local struct {
	root     string
	maxBytes int64
}

// NewLocal creates a Local store rooted at root.
func NewLocal(root string, maxBytes int64) *Local {
	return &Local{root: root, maxBytes: maxBytes}
}

// Save sniffs the content type, enforces the size limit, and writes the file.
func (l *Local) Save(ctx context.Context, dir, name string, up Upload) (Saved, error) {
	if err := ctx.Err(); err != nil {
		return Saved{}, err
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return Saved{}, fmt.Errorf("invalid file name %q", name)
	}
	if up.Size > l.maxBytes {
		return Saved{}, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, up.Size, l.maxBytes)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Saved{}, fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return Saved{}, ErrEmptyFile
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if !allowed(mt) {
		return Saved{}, fmt.Errorf("%w: %s", ErrUnsupportedFileType, mt.String())
	}

	targetDir := filepath.Join(l.root, dir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("create upload dir: %w", err)
	}

	destPath := filepath.Join(targetDir, name)
	dst, err := os.Create(destPath)
	if err != nil {
		return Saved{}, fmt.Errorf("create file: %w", err)
	}

	body := io.MultiReader(bytes.NewReader(head), up.Content)
	written, err := io.Copy(dst, io.LimitReader(body, l.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > l.maxBytes {
		err = fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, l.maxBytes)
	}
	if err != nil {
		_ = os.Remove(destPath)
		if errors.Is(err, ErrFileTooLarge) {
			return Saved{}, err
		}
		return Saved{}, fmt.Errorf("write file: %w", err)
	}

	return Saved{
		Path: path.Join("/uploads", dir, name),
		MIME: mt.String(),
		Size: written,
	}, nil
}

func allowed(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		for _, a := range allowedMIMETypes {
			if m.Is(a) {
				return true
			}
		}
	}
	return false
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// SanitizeName keeps letters, digits, dot, dash, and underscore.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	return name
}

// FileName builds the stored name {owner}_{tag}_{YYYYMMDDHHMMSS}_{original}.
func FileName(owner, tag string, at time.Time, original string) string {
	return fmt.Sprintf("%s_%s_%s_%s",
		SanitizeName(owner), SanitizeName(tag), at.Format("20060102150405"), SanitizeName(original))
}
