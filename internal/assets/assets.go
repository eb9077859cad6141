package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrTooLarge    = errors.New("file too large")
	ErrNotAnImage  = errors.New("file is not an image")
	ErrEmptyFile   = errors.New("file is empty")
	ErrLogoMissing = errors.New("logo not found")
)

// Logo is a stored image
type Logo struct {
	Key         string
	ContentType string
	Bytes       []byte
}

// Store keeps logo bytes addressed by content hash
type Store interface {
	Put(ctx context.Context, logo Logo) error
	Get(ctx context.Context, key string) (*Logo, error)
}

// Uploader validates and stores uploaded logos
type Uploader struct {
	store    Store
	maxBytes int64
	baseURL  string
}

func NewUploader(store Store, maxBytes int64, publicBaseURL string) *Uploader {
	return &Uploader{
		store:    store,
		maxBytes: maxBytes,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
	}
}

// MaxBytes is the upload size cap
func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

// Save reads at most maxBytes from r, sniffs the content and stores it.
// It returns the public URL of the logo.
func (u *Uploader) Save(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > u.maxBytes {
		return "", ErrTooLarge
	}

	mt := mimetype.Detect(data)
	// svg can carry script and is served from our own origin
	if !strings.HasPrefix(mt.String(), "image/") || mt.Is("image/svg+xml") {
		return "", ErrNotAnImage
	}

	logo := Logo{
		Key:         KeyFor(data) + mt.Extension(),
		ContentType: mt.String(),
		Bytes:       data,
	}
	if err := u.store.Put(ctx, logo); err != nil {
		return "", fmt.Errorf("failed to store logo: %w", err)
	}

	return u.URL(logo.Key), nil
}

// URL builds the public address of a stored logo
func (u *Uploader) URL(key string) string {
	return u.baseURL + "/logo/" + key
}

// Open returns a stored logo
func (u *Uploader) Open(ctx context.Context, key string) (*Logo, error) {
	if !validKey(key) {
		return nil, ErrLogoMissing
	}
	return u.store.Get(ctx, key)
}

// KeyFor returns the hex sha256 of data
func KeyFor(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// validKey accepts "<64 hex chars>" with an optional ".ext" suffix
func validKey(key string) bool {
	hash, ext, _ := strings.Cut(key, ".")
	if len(hash) != sha256.Size*2 {
		return false
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return false
	}
	for _, r := range ext {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
