package viewer

import (
	"fmt"
	"os"
	"path/filepath"
)

// DownloadSink receives extraction results destined for the user's
// machine. name is a suggestion; the sink decides where bytes land.
type DownloadSink interface {
	Download(name string, data []byte) error
}

// PrintSink receives print requests. A significant selection arrives as
// an encoded image; otherwise the sink is told to print the current
// page as rendered.
type PrintSink interface {
	PrintImage(data []byte) error
	PrintPage(page int) error
}

// DirDownloadSink writes downloads into a directory.
type DirDownloadSink struct {
	dir string
}

func NewDirDownloadSink(dir string) *DirDownloadSink {
	return &DirDownloadSink{dir: dir}
}

func (d *DirDownloadSink) Download(name string, data []byte) error {
	path := filepath.Join(d.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write download: %w", err)
	}
	return nil
}
