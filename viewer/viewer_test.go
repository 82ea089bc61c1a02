package viewer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/RAZZKCODE/pdf-edit-print/fonts"
	"github.com/RAZZKCODE/pdf-edit-print/geo"
	"github.com/RAZZKCODE/pdf-edit-print/passphrase"
	"github.com/RAZZKCODE/pdf-edit-print/render"
	"github.com/RAZZKCODE/pdf-edit-print/viewport"
)

var (
	libOnce sync.Once
	lib     *fonts.Library
	libErr  error
)

func testLibrary(t *testing.T) *fonts.Library {
	t.Helper()
	libOnce.Do(func() { lib, libErr = fonts.NewLibrary() })
	if libErr != nil {
		t.Fatalf("fonts.NewLibrary() error = %v", libErr)
	}
	return lib
}

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	if cfg.Fonts == nil {
		cfg.Fonts = testLibrary(t)
	}
	s, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(w, h, c)); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func gifBytes(t *testing.T, w, h int, colors []color.NRGBA) []byte {
	t.Helper()
	g := &gif.GIF{}
	for _, c := range colors {
		frame := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{c})
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, 0)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("gif.EncodeAll() error = %v", err)
	}
	return buf.Bytes()
}

func openWait(t *testing.T, s *Session, data []byte, name string) {
	t.Helper()
	select {
	case err := <-s.Open(context.Background(), data, name):
		if err != nil {
			t.Fatalf("Open(%s) error = %v", name, err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Open(%s) did not finish", name)
	}
}

// waitEvent consumes the stream until an event of the wanted type
// arrives.
func waitEvent(t *testing.T, s *Session, want EventType) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				t.Fatalf("event stream closed waiting for %v", want)
			}
			if ev.Type() == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %v event", want)
		}
	}
}

func drainEvents(s *Session) []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestOpenImage(t *testing.T) {
	s := newTestSession(t, Config{})
	openWait(t, s, pngBytes(t, 100, 80, color.NRGBA{G: 0xff, A: 0xff}), "photo.png")

	if got := s.Page(); got != 1 {
		t.Errorf("Page() = %d, want 1", got)
	}
	if got := s.PageCount(); got != 1 {
		t.Errorf("PageCount() = %d, want 1", got)
	}
	if got := s.Zoom(); got != viewport.ZoomDefault {
		t.Errorf("Zoom() = %v, want default", got)
	}
	if got := s.Name(); got != "photo.png" {
		t.Errorf("Name() = %q", got)
	}

	surf, ok := s.Surface()
	if !ok {
		t.Fatal("Surface() missing after open")
	}
	if surf.Geometry.NativeWidth != 100 || surf.Geometry.NativeHeight != 80 {
		t.Errorf("native = %dx%d, want 100x80", surf.Geometry.NativeWidth, surf.Geometry.NativeHeight)
	}

	ev := waitEvent(t, s, EventDocumentOpened).(DocumentOpenedEvent)
	if ev.Name != "photo.png" || ev.PageCount != 1 {
		t.Errorf("opened event = %+v", ev)
	}
}

func TestOpenUnsupported(t *testing.T) {
	s := newTestSession(t, Config{})
	err := <-s.Open(context.Background(), []byte{0x00, 0x01, 0x02, 0x03}, "junk")
	if !errors.Is(err, render.ErrUnsupportedFormat) {
		t.Fatalf("Open() error = %v, want ErrUnsupportedFormat", err)
	}
	ev := waitEvent(t, s, EventOpenFailed).(OpenFailedEvent)
	if !errors.Is(ev.Err, render.ErrUnsupportedFormat) {
		t.Errorf("failed event error = %v", ev.Err)
	}
	if _, ok := s.Surface(); ok {
		t.Error("surface present after failed open")
	}
}

func TestNavigation(t *testing.T) {
	s := newTestSession(t, Config{})
	colors := []color.NRGBA{{R: 0xff, A: 0xff}, {B: 0xff, A: 0xff}}
	openWait(t, s, gifBytes(t, 60, 40, colors), "frames.gif")
	drainEvents(s)

	if !s.NextPage() {
		t.Fatal("NextPage() = false with a page left")
	}
	if got := s.Page(); got != 2 {
		t.Fatalf("Page() = %d, want 2", got)
	}
	ev := waitEvent(t, s, EventPageChanged).(PageChangedEvent)
	if ev.Page != 2 {
		t.Errorf("event page = %d, want 2", ev.Page)
	}
	surf, _ := s.Surface()
	if got := surf.Image.NRGBAAt(5, 5); got != colors[1] {
		t.Errorf("page 2 pixel = %v, want blue", got)
	}

	surfBefore, _ := s.Surface()
	if s.NextPage() {
		t.Fatal("NextPage() = true past the last page")
	}
	if got := s.Page(); got != 2 {
		t.Errorf("rejected nav moved page to %d", got)
	}
	surfAfter, _ := s.Surface()
	if surfBefore != surfAfter {
		t.Error("rejected nav re-rendered the surface")
	}
	for _, ev := range drainEvents(s) {
		if ev.Type() == EventPageChanged {
			t.Errorf("rejected nav emitted %v", ev)
		}
	}

	if !s.PrevPage() {
		t.Fatal("PrevPage() = false")
	}
	if got := s.Page(); got != 1 {
		t.Errorf("Page() = %d, want 1", got)
	}
	if s.GoToPage(0) || s.GoToPage(3) {
		t.Error("out-of-range GoToPage accepted")
	}
}

func TestZoom(t *testing.T) {
	s := newTestSession(t, Config{})
	openWait(t, s, pngBytes(t, 100, 80, color.NRGBA{G: 0xff, A: 0xff}), "photo.png")
	drainEvents(s)

	if got := s.SetZoom(10); got != viewport.ZoomMax {
		t.Fatalf("SetZoom(10) = %v, want clamp to %v", got, viewport.ZoomMax)
	}
	ev := waitEvent(t, s, EventZoomChanged).(ZoomChangedEvent)
	if ev.Zoom != viewport.ZoomMax {
		t.Errorf("event zoom = %v", ev.Zoom)
	}
	surf, _ := s.Surface()
	if got := surf.Geometry.DisplayWidth; got != 300 {
		t.Errorf("display width = %v, want 300", got)
	}
	if got := surf.Geometry.NativeWidth; got != 100 {
		t.Errorf("native width changed to %d", got)
	}

	drainEvents(s)
	s.SetZoom(viewport.ZoomMax)
	for _, ev := range drainEvents(s) {
		if ev.Type() == EventZoomChanged {
			t.Error("unchanged zoom emitted an event")
		}
	}

	if got := s.ResetZoom(); got != viewport.ZoomDefault {
		t.Errorf("ResetZoom() = %v", got)
	}
	if got := s.ZoomIn(); got != viewport.ZoomDefault+viewport.ZoomStep {
		t.Errorf("ZoomIn() = %v", got)
	}
	if got := s.ZoomOut(); got != viewport.ZoomDefault {
		t.Errorf("ZoomOut() = %v", got)
	}
}

func TestPointerPipeline(t *testing.T) {
	s := newTestSession(t, Config{})
	openWait(t, s, pngBytes(t, 100, 80, color.NRGBA{R: 0xff, A: 0xff}), "photo.png")
	s.SetSurfaceOrigin(10, 20)
	drainEvents(s)

	if !s.PointerDown(geo.Point{X: 30, Y: 40}) {
		t.Fatal("PointerDown on the surface rejected")
	}
	if !s.PointerMove(geo.Point{X: 90, Y: 70}) {
		t.Fatal("PointerMove rejected mid-drag")
	}
	if !s.PointerUp() {
		t.Fatal("PointerUp rejected mid-drag")
	}

	r, ok := s.SelectionRect()
	if !ok {
		t.Fatal("no selection after drag")
	}
	want := geo.Rect{X: 20, Y: 20, Width: 60, Height: 30}
	if r != want {
		t.Fatalf("selection = %+v, want %+v", r, want)
	}
	if !s.SelectionSignificant() {
		t.Error("60x30 selection not significant")
	}

	ev := waitEvent(t, s, EventSelectionChanged).(SelectionChangedEvent)
	if ev.State != viewport.DragDrawing {
		t.Errorf("first selection event state = %v, want drawing", ev.State)
	}

	if s.PointerDown(geo.Point{X: 5, Y: 5}) {
		t.Error("PointerDown off the surface accepted")
	}
	if s.PointerMove(geo.Point{X: 50, Y: 50}) {
		t.Error("PointerMove outside a drag accepted")
	}

	s.ClearSelection()
	if _, ok := s.SelectionRect(); ok {
		t.Error("selection survives ClearSelection")
	}
}

func TestNavigationClearsSelection(t *testing.T) {
	s := newTestSession(t, Config{})
	colors := []color.NRGBA{{R: 0xff, A: 0xff}, {B: 0xff, A: 0xff}}
	openWait(t, s, gifBytes(t, 100, 80, colors), "frames.gif")

	if !s.Select(10, 10, 50, 40) {
		t.Fatal("Select rejected")
	}
	if !s.NextPage() {
		t.Fatal("NextPage rejected")
	}
	if _, ok := s.SelectionRect(); ok {
		t.Error("selection survives a page change")
	}
}

func TestZoomClearsSelectionEvenWhenClamped(t *testing.T) {
	s := newTestSession(t, Config{})
	openWait(t, s, pngBytes(t, 100, 80, color.NRGBA{R: 0xff, A: 0xff}), "photo.png")

	if !s.Select(10, 10, 50, 40) {
		t.Fatal("Select rejected")
	}
	s.SetZoom(s.Zoom())
	if _, ok := s.SelectionRect(); ok {
		t.Error("selection survives a zoom request")
	}
}

func TestExtractWholePage(t *testing.T) {
	s := newTestSession(t, Config{})
	openWait(t, s, pngBytes(t, 100, 80, color.NRGBA{G: 0xff, A: 0xff}), "photo.png")
	drainEvents(s)

	data, err := s.Extract("png")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode extract: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
		t.Errorf("extract = %dx%d, want whole page 100x80", b.Dx(), b.Dy())
	}
	ev := waitEvent(t, s, EventExtracted).(ExtractedEvent)
	if ev.Cropped {
		t.Error("whole-page extract reported as crop")
	}
}

func TestExtractSelection(t *testing.T) {
	s := newTestSession(t, Config{})
	openWait(t, s, pngBytes(t, 100, 80, color.NRGBA{G: 0xff, A: 0xff}), "photo.png")

	if got := s.SetZoom(2.0); got != 2.0 {
		t.Fatalf("SetZoom(2) = %v", got)
	}
	if !s.Select(20, 20, 80, 60) {
		t.Fatal("Select rejected")
	}
	drainEvents(s)

	data, err := s.Extract("png")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode extract: %v", err)
	}
	// Display rect 80x60 at zoom 2 lands on 40x30 native pixels.
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("crop = %dx%d, want 40x30", b.Dx(), b.Dy())
	}
	ev := waitEvent(t, s, EventExtracted).(ExtractedEvent)
	if !ev.Cropped {
		t.Error("selection extract not reported as crop")
	}
}

func TestExtractInsignificantSelectionFallsBack(t *testing.T) {
	s := newTestSession(t, Config{})
	openWait(t, s, pngBytes(t, 100, 80, color.NRGBA{G: 0xff, A: 0xff}), "photo.png")

	if !s.Select(10, 10, 8, 8) {
		t.Fatal("Select rejected")
	}
	data, err := s.Extract("png")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode extract: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
		t.Errorf("sub-threshold selection produced %dx%d, want whole page", b.Dx(), b.Dy())
	}
}

func TestExtractJPEGOpaque(t *testing.T) {
	s := newTestSession(t, Config{})
	openWait(t, s, pngBytes(t, 50, 40, color.NRGBA{B: 0xff, A: 0xff}), "photo.png")

	data, err := s.Extract("jpeg")
	if err != nil {
		t.Fatalf("Extract(jpeg) error = %v", err)
	}
	if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
		t.Errorf("jpeg extract missing SOI marker")
	}
	if _, err := s.Extract("bmp"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestExtractWithoutDocument(t *testing.T) {
	s := newTestSession(t, Config{})
	if _, err := s.Extract("png"); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("Extract() error = %v, want ErrNoDocument", err)
	}
}

type captureDownload struct {
	name string
	data []byte
}

func (c *captureDownload) Download(name string, data []byte) error {
	c.name = name
	c.data = append([]byte(nil), data...)
	return nil
}

func TestDownload(t *testing.T) {
	sink := &captureDownload{}
	s := newTestSession(t, Config{Download: sink})
	openWait(t, s, pngBytes(t, 100, 80, color.NRGBA{G: 0xff, A: 0xff}), "photo.png")

	name, err := s.Download("png")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if name != "photo-p1.png" {
		t.Errorf("name = %q, want photo-p1.png", name)
	}
	if sink.name != name || len(sink.data) == 0 {
		t.Errorf("sink got %q with %d bytes", sink.name, len(sink.data))
	}

	if !s.Select(10, 10, 50, 40) {
		t.Fatal("Select rejected")
	}
	name, err = s.Download("jpeg")
	if err != nil {
		t.Fatalf("Download(jpeg) error = %v", err)
	}
	if name != "photo-p1-crop.jpg" {
		t.Errorf("name = %q, want photo-p1-crop.jpg", name)
	}
}

func TestDownloadWithoutSink(t *testing.T) {
	s := newTestSession(t, Config{})
	openWait(t, s, pngBytes(t, 20, 20, color.NRGBA{G: 0xff, A: 0xff}), "photo.png")
	if _, err := s.Download("png"); err == nil {
		t.Fatal("Download without a sink succeeded")
	}
}

type capturePrint struct {
	images [][]byte
	pages  []int
}

func (c *capturePrint) PrintImage(data []byte) error {
	c.images = append(c.images, append([]byte(nil), data...))
	return nil
}

func (c *capturePrint) PrintPage(page int) error {
	c.pages = append(c.pages, page)
	return nil
}

func TestPrint(t *testing.T) {
	sink := &capturePrint{}
	s := newTestSession(t, Config{Print: sink})
	openWait(t, s, pngBytes(t, 100, 80, color.NRGBA{G: 0xff, A: 0xff}), "photo.png")

	if err := s.Print(); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if len(sink.pages) != 1 || sink.pages[0] != 1 {
		t.Fatalf("page print calls = %v, want [1]", sink.pages)
	}
	if len(sink.images) != 0 {
		t.Fatal("whole-page print sent an image")
	}

	if !s.Select(10, 10, 40, 30) {
		t.Fatal("Select rejected")
	}
	if err := s.Print(); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if len(sink.images) != 1 {
		t.Fatalf("image print calls = %d, want 1", len(sink.images))
	}
	img, err := png.Decode(bytes.NewReader(sink.images[0]))
	if err != nil {
		t.Fatalf("decode printed image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("printed crop = %dx%d, want 40x30", b.Dx(), b.Dy())
	}
}

func TestVaultOpenRetry(t *testing.T) {
	plain := pngBytes(t, 30, 20, color.NRGBA{R: 0xff, A: 0xff})
	sealed, err := render.Seal(plain, "secret")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	s := newTestSession(t, Config{})
	done := s.Open(context.Background(), sealed, "vault.bin")

	ev := waitEvent(t, s, EventPassphraseNeeded).(PassphraseNeededEvent)
	if ev.Attempt != 1 || ev.LastFailed {
		t.Fatalf("first prompt = %+v", ev)
	}
	if err := s.SubmitPassphrase("wrong"); err != nil {
		t.Fatalf("SubmitPassphrase() error = %v", err)
	}

	ev = waitEvent(t, s, EventPassphraseNeeded).(PassphraseNeededEvent)
	if ev.Attempt != 2 || !ev.LastFailed {
		t.Fatalf("second prompt = %+v", ev)
	}
	if err := s.SubmitPassphrase("secret"); err != nil {
		t.Fatalf("SubmitPassphrase() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("open did not finish after the right passphrase")
	}
	if got := s.PageCount(); got != 1 {
		t.Errorf("PageCount() = %d, want 1", got)
	}
}

func TestVaultOpenCancelled(t *testing.T) {
	sealed, err := render.Seal([]byte("# notes"), "secret")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	s := newTestSession(t, Config{})
	done := s.Open(context.Background(), sealed, "vault.bin")

	waitEvent(t, s, EventPassphraseNeeded)
	if err := s.CancelPassphrase(); err != nil {
		t.Fatalf("CancelPassphrase() error = %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, render.ErrPassphraseCancelled) {
			t.Fatalf("Open() error = %v, want ErrPassphraseCancelled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("open did not finish after cancel")
	}
	// A resolution after the open died is a no-op.
	if err := s.SubmitPassphrase("late"); !errors.Is(err, passphrase.ErrNoPendingRequest) {
		t.Errorf("late submit error = %v, want ErrNoPendingRequest", err)
	}
}

func TestOpenReplacesDocument(t *testing.T) {
	s := newTestSession(t, Config{})
	openWait(t, s, gifBytes(t, 60, 40, []color.NRGBA{{R: 0xff, A: 0xff}, {B: 0xff, A: 0xff}}), "frames.gif")
	s.NextPage()
	s.Select(5, 5, 30, 20)

	openWait(t, s, pngBytes(t, 10, 10, color.NRGBA{G: 0xff, A: 0xff}), "tiny.png")
	if got := s.Page(); got != 1 {
		t.Errorf("Page() = %d, want reset to 1", got)
	}
	if got := s.PageCount(); got != 1 {
		t.Errorf("PageCount() = %d, want 1", got)
	}
	if got := s.Name(); got != "tiny.png" {
		t.Errorf("Name() = %q", got)
	}
	if _, ok := s.SelectionRect(); ok {
		t.Error("selection survives a document swap")
	}
}

func TestOpenSuperseded(t *testing.T) {
	sealed, err := render.Seal([]byte("# notes"), "secret")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	s := newTestSession(t, Config{})
	first := s.Open(context.Background(), sealed, "vault.bin")
	waitEvent(t, s, EventPassphraseNeeded)

	openWait(t, s, pngBytes(t, 10, 10, color.NRGBA{G: 0xff, A: 0xff}), "tiny.png")

	select {
	case err := <-first:
		if !errors.Is(err, ErrOpenSuperseded) {
			t.Fatalf("first open error = %v, want ErrOpenSuperseded", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("superseded open never resolved")
	}
	if got := s.Name(); got != "tiny.png" {
		t.Errorf("Name() = %q, want tiny.png", got)
	}
}

func TestCloseReleasesParkedOpen(t *testing.T) {
	sealed, err := render.Seal([]byte("# notes"), "secret")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	s := newTestSession(t, Config{})
	done := s.Open(context.Background(), sealed, "vault.bin")
	waitEvent(t, s, EventPassphraseNeeded)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, ErrSessionClosed) {
			t.Fatalf("parked open error = %v, want ErrSessionClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close left the open parked")
	}

	if err := <-s.Open(context.Background(), nil, "x"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Open after Close error = %v", err)
	}

	// The stream is closed and drains.
	for range s.Events() {
	}
}

func TestAlertEmitsEvent(t *testing.T) {
	s := newTestSession(t, Config{})
	s.Alert("hello")
	ev := waitEvent(t, s, EventAlert).(AlertEvent)
	if ev.Message != "hello" {
		t.Errorf("alert message = %q", ev.Message)
	}
}
