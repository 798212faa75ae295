// Package session holds the image a user is currently working on.
//
// A Session owns at most one bitmap. Loading a new file releases the previous
// one; operations mutate the loaded image in place until it is saved.
package session

import (
	"errors"
	"fmt"

	"github.com/anas-shakeel/go-bmp/internal/bmp"
	"github.com/anas-shakeel/go-bmp/internal/logging"
)

// ErrNoImage is returned by operations that need a loaded image.
var ErrNoImage = errors.New("session: no image loaded")

// Session owns the currently loaded image, if any.
type Session struct {
	image *bmp.Bitmap
}

func New() *Session {
	return &Session{}
}

// Load reads a bitmap file and makes it the current image. On failure the
// previously loaded image is released as well.
func (s *Session) Load(path string) error {
	s.image = nil

	b, err := bmp.ReadFile(path)
	if err != nil {
		return err
	}
	s.image = b

	info := b.Raster.Info()
	logging.Logger().Info("image loaded",
		"path", path, "width", info.Width, "height", info.Height, "bits", info.BitDepth())
	return nil
}

// Set makes an in-memory bitmap the current image.
func (s *Session) Set(b *bmp.Bitmap) {
	s.image = b
}

// Save writes the current image to path.
func (s *Session) Save(path string) error {
	if s.image == nil {
		return ErrNoImage
	}
	if err := s.image.Save(path); err != nil {
		return err
	}
	logging.Logger().Info("image saved", "path", path)
	return nil
}

// Apply runs a named operation on the current image.
func (s *Session) Apply(op Op) error {
	if s.image == nil {
		return ErrNoImage
	}
	entry, ok := registry[op.Name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOp, op.Name)
	}
	if entry.needsArg && op.Arg == "" {
		return fmt.Errorf("%w: %s needs an argument (%s)", ErrBadArgument, op.Name, entry.usage)
	}
	if !entry.needsArg && op.Arg != "" {
		return fmt.Errorf("%w: %s takes no argument", ErrBadArgument, op.Name)
	}

	if err := entry.apply(s.image, op.Arg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logging.Logger().Debug("operation applied", "op", op.String())
	return nil
}

// Info describes the current image.
func (s *Session) Info() (bmp.Meta, error) {
	if s.image == nil {
		return bmp.Meta{}, ErrNoImage
	}
	return s.image.Meta(), nil
}

// Image returns the current image.
func (s *Session) Image() (*bmp.Bitmap, error) {
	if s.image == nil {
		return nil, ErrNoImage
	}
	return s.image, nil
}

// Close releases the current image.
func (s *Session) Close() {
	s.image = nil
}
