package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/RAZZKCODE/pdf-edit-print/observability"
	_ "github.com/RAZZKCODE/pdf-edit-print/ocr/tesseract"
	"github.com/RAZZKCODE/pdf-edit-print/scripting"
	"github.com/RAZZKCODE/pdf-edit-print/viewer"
)

type options struct {
	sourcePath string
	page       int
	zoom       float64
	selection  string
	format     string
	outDir     string
	doPrint    bool
	scriptPath string
	doOCR      bool
	verbose    bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pageview: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "pageview: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: pageview [flags] <source>\n")
		flag.PrintDefaults()
	}
	page := flag.Int("page", 1, "Page to view (1-based)")
	zoom := flag.Float64("zoom", 1.0, "Zoom factor, clamped to 0.5..3.0")
	selection := flag.String("select", "", "Selection rectangle in display pixels, as x,y,WxH")
	format := flag.String("format", "png", "Output encoding: png or jpeg")
	outDir := flag.String("o", ".", "Directory for saved output")
	doPrint := flag.Bool("print", false, "Send the selection or page to the print sink")
	scriptPath := flag.String("script", "", "JavaScript file to run against the session")
	doOCR := flag.Bool("ocr", false, "Recognize text in the selection or page")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing source path")
	}
	opts.sourcePath = flag.Arg(0)
	opts.page = *page
	opts.zoom = *zoom
	opts.selection = *selection
	opts.format = *format
	opts.outDir = *outDir
	opts.doPrint = *doPrint
	opts.scriptPath = *scriptPath
	opts.doOCR = *doOCR
	opts.verbose = *verbose
	return opts, nil
}

func run(opts options) error {
	data, err := os.ReadFile(opts.sourcePath)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	level := observability.LevelWarn
	if opts.verbose {
		level = observability.LevelDebug
	}
	log := observability.NewTextLogger(os.Stderr, level)

	sess, err := viewer.NewSession(viewer.Config{
		Log:      log,
		Download: viewer.NewDirDownloadSink(opts.outDir),
		Print:    &filePrintSink{dir: opts.outDir},
	})
	if err != nil {
		return fmt.Errorf("build session: %w", err)
	}
	defer sess.Close()

	ctx := context.Background()
	if err := openSource(ctx, sess, data, filepath.Base(opts.sourcePath)); err != nil {
		return err
	}

	if opts.page != 1 && !sess.GoToPage(opts.page) {
		return fmt.Errorf("page %d out of range, document has %d", opts.page, sess.PageCount())
	}
	sess.SetZoom(opts.zoom)

	if opts.selection != "" {
		x, y, w, h, err := parseSelection(opts.selection)
		if err != nil {
			return err
		}
		if !sess.Select(x, y, w, h) {
			return fmt.Errorf("selection %s rejected, surface is %s", opts.selection, surfaceSize(sess))
		}
	}

	if opts.scriptPath != "" {
		src, err := os.ReadFile(opts.scriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		eng := scripting.NewEngine()
		if err := eng.RegisterViewer(sess); err != nil {
			return fmt.Errorf("register viewer: %w", err)
		}
		if _, err := eng.Execute(ctx, string(src)); err != nil {
			return fmt.Errorf("run script: %w", err)
		}
	}

	name, err := sess.Download(opts.format)
	if err != nil {
		return fmt.Errorf("save output: %w", err)
	}
	fmt.Printf("saved %s\n", filepath.Join(opts.outDir, name))

	if opts.doPrint {
		if err := sess.Print(); err != nil {
			return fmt.Errorf("print: %w", err)
		}
	}

	if opts.doOCR {
		res, err := sess.RecognizeSelection(ctx)
		if err != nil {
			return fmt.Errorf("recognize: %w", err)
		}
		fmt.Println(res.PlainText)
	}
	return nil
}

// openSource starts the open and answers passphrase prompts from the
// terminal until the document opens or the open fails.
func openSource(ctx context.Context, sess *viewer.Session, data []byte, name string) error {
	done := sess.Open(ctx, data, name)
	for {
		select {
		case ev := <-sess.Events():
			req, ok := ev.(viewer.PassphraseNeededEvent)
			if !ok {
				continue
			}
			pass, err := promptPassphrase(req)
			if err != nil {
				sess.CancelPassphrase()
				<-done
				return err
			}
			if err := sess.SubmitPassphrase(pass); err != nil {
				return fmt.Errorf("submit passphrase: %w", err)
			}
		case err := <-done:
			if err != nil {
				return fmt.Errorf("open %s: %w", name, err)
			}
			return nil
		}
	}
}

var stdin = bufio.NewReader(os.Stdin)

func promptPassphrase(req viewer.PassphraseNeededEvent) (string, error) {
	if req.LastFailed {
		fmt.Fprint(os.Stderr, "Passphrase rejected, try again: ")
	} else {
		fmt.Fprint(os.Stderr, "Passphrase: ")
	}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read passphrase: %w", err)
		}
		return string(b), nil
	}
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// parseSelection parses "x,y,WxH", e.g. "40,60,300x200".
func parseSelection(s string) (x, y, w, h float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, 0, 0, 0, fmt.Errorf("selection %q: want x,y,WxH", s)
	}
	dims := strings.Split(parts[2], "x")
	if len(dims) != 2 {
		return 0, 0, 0, 0, fmt.Errorf("selection %q: want x,y,WxH", s)
	}
	fields := []struct {
		dst *float64
		src string
	}{
		{&x, parts[0]},
		{&y, parts[1]},
		{&w, dims[0]},
		{&h, dims[1]},
	}
	for _, f := range fields {
		v, perr := strconv.ParseFloat(strings.TrimSpace(f.src), 64)
		if perr != nil {
			return 0, 0, 0, 0, fmt.Errorf("selection %q: %v", s, perr)
		}
		*f.dst = v
	}
	return x, y, w, h, nil
}

func surfaceSize(sess *viewer.Session) string {
	surf, ok := sess.Surface()
	if !ok {
		return "missing"
	}
	g := surf.Geometry
	return fmt.Sprintf("%.0fx%.0f", g.DisplayWidth, g.DisplayHeight)
}

// filePrintSink realizes print requests as files next to the other
// output, since the CLI has no spooler.
type filePrintSink struct {
	dir string
}

func (p *filePrintSink) PrintImage(data []byte) error {
	path := filepath.Join(p.dir, "print-crop.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write print payload: %w", err)
	}
	fmt.Printf("print: wrote %s\n", path)
	return nil
}

func (p *filePrintSink) PrintPage(page int) error {
	fmt.Printf("print: page %d as rendered\n", page)
	return nil
}
