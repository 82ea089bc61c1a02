package extensions

import (
	"context"

	"github.com/RAZZKCODE/pdf-edit-print/observability"
)

// InspectionReport captures document facts observed at open.
type InspectionReport struct {
	Name         string
	PageCount    int
	NativeWidth  int
	NativeHeight int
}

// Inspector logs document facts when a source opens and retains a
// report for later retrieval.
type Inspector struct {
	log    observability.Logger
	report InspectionReport
}

func NewInspector(log observability.Logger) *Inspector {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Inspector{log: log}
}

func (i *Inspector) Name() string  { return "inspector" }
func (i *Inspector) Phase() Phase  { return PhaseOpen }
func (i *Inspector) Priority() int { return 100 }

func (i *Inspector) Execute(ctx context.Context, snap *Snapshot) error {
	i.report = InspectionReport{
		Name:         snap.Name,
		PageCount:    snap.PageCount,
		NativeWidth:  snap.Geometry.NativeWidth,
		NativeHeight: snap.Geometry.NativeHeight,
	}
	i.log.Info("document opened",
		observability.String("name", snap.Name),
		observability.Int("pages", snap.PageCount),
		observability.Float64("zoom", snap.Zoom))
	return nil
}

func (i *Inspector) Report() InspectionReport { return i.report }
