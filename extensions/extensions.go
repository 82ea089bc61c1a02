// Package extensions hooks optional capabilities into the viewer's
// lifecycle phases: after a document opens, after a page renders, and
// after a region is extracted.
package extensions

import (
	"context"
	"fmt"
	"image"
	"sort"

	"github.com/RAZZKCODE/pdf-edit-print/geo"
)

type Phase int

const (
	PhaseOpen Phase = iota
	PhaseRender
	PhaseExtract
)

func (p Phase) String() string { return []string{"Open", "Render", "Extract"}[p] }

// Snapshot is the read-only view of the session handed to extensions.
// It is defined here so implementations need no dependency on the
// viewer package.
type Snapshot struct {
	// Name is the document's display name.
	Name string

	PageCount int
	Page      int
	Zoom      float64

	// Surface is the current page raster, nil before the first render.
	// Extensions must not mutate it.
	Surface *image.NRGBA
	// Geometry describes Surface when present.
	Geometry geo.RasterGeometry

	// Crop is the extracted region raster, set only in PhaseExtract.
	Crop *image.NRGBA
	// CropRect is the pixel region Crop was taken from.
	CropRect geo.PixelRect
}

type Extension interface {
	Name() string
	Phase() Phase
	Priority() int
	Execute(ctx context.Context, snap *Snapshot) error
}

type Hub interface {
	Register(ext Extension) error
	Run(ctx context.Context, phase Phase, snap *Snapshot) error
	Extensions(phase Phase) []Extension
}

type HubImpl struct {
	exts map[Phase][]Extension
}

func NewHub() *HubImpl { return &HubImpl{exts: make(map[Phase][]Extension)} }

func (h *HubImpl) Register(ext Extension) error {
	ph := ext.Phase()
	h.exts[ph] = append(h.exts[ph], ext)
	sort.SliceStable(h.exts[ph], func(i, j int) bool { return h.exts[ph][i].Priority() < h.exts[ph][j].Priority() })
	return nil
}

// Run executes one phase's extensions in priority order. The first
// failure stops the phase.
func (h *HubImpl) Run(ctx context.Context, phase Phase, snap *Snapshot) error {
	for _, e := range h.exts[phase] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Execute(ctx, snap); err != nil {
			return fmt.Errorf("extension %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (h *HubImpl) Extensions(phase Phase) []Extension {
	return append([]Extension(nil), h.exts[phase]...)
}
