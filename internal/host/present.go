package host

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/gogpu/gg"
)

// Presenter shows composed frames somewhere: a file, a socket, a terminal,
// a window.
type Presenter interface {
	Present(img image.Image) error
	Close() error
}

// PNGWriter writes each frame to Dir as <Prefix>-00000.png and up.
type PNGWriter struct {
	Dir    string
	Prefix string

	n int
}

func NewPNGWriter(dir, prefix string) (*PNGWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("png writer: %w", err)
	}
	if prefix == "" {
		prefix = "frame"
	}
	return &PNGWriter{Dir: dir, Prefix: prefix}, nil
}

func (w *PNGWriter) Present(img image.Image) error {
	path := filepath.Join(w.Dir, fmt.Sprintf("%s-%05d.png", w.Prefix, w.n))
	if err := gg.NewContextForImage(img).SavePNG(path); err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	w.n++
	return nil
}

// Written is the number of frames saved.
func (w *PNGWriter) Written() int { return w.n }

func (w *PNGWriter) Close() error { return nil }

// Last keeps the most recent frame in memory; used by tests and the
// preview server.
type Last struct {
	Img   image.Image
	Count int
}

func (l *Last) Present(img image.Image) error {
	l.Img = img
	l.Count++
	return nil
}

func (l *Last) Close() error { return nil }
