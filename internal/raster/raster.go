package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// ErrUnsupportedType rejects a file before any page processing begins.
type ErrUnsupportedType struct {
	Ext string
}

func (e *ErrUnsupportedType) Error() string {
	return fmt.Sprintf("file must be PDF, PNG, or JPG (got %q)", e.Ext)
}

// ErrInvalidFile marks a supported extension whose contents cannot be
// decoded. Distinguished from collaborator failures so the API layer
// can report it as caller error.
type ErrInvalidFile struct {
	Kind string
	Err  error
}

func (e *ErrInvalidFile) Error() string {
	return fmt.Sprintf("invalid %s file: %v", e.Kind, e.Err)
}

func (e *ErrInvalidFile) Unwrap() error { return e.Err }

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Renderer converts an uploaded document into one PNG image per page.
// PDFs are validated with the pdf library, then rendered page by page
// with pdftoppm. Single images pass through after a decode check.
type Renderer struct {
	DPI          int
	PdftoppmPath string
}

// PageImages returns one PNG (or original JPEG) payload per page, in
// page order. An unsupported extension or undecodable file fails before
// any rendering starts.
func (r *Renderer) PageImages(data []byte, filename string) ([][]byte, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return r.renderPDF(data)
	case ".png", ".jpg", ".jpeg":
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return nil, &ErrInvalidFile{Kind: "image", Err: err}
		}
		return [][]byte{data}, nil
	default:
		return nil, &ErrUnsupportedType{Ext: ext}
	}
}

func (r *Renderer) renderPDF(data []byte) ([][]byte, error) {
	// Validate the PDF structure before shelling out to the renderer.
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ErrInvalidFile{Kind: "PDF", Err: err}
	}
	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, &ErrInvalidFile{Kind: "PDF", Err: fmt.Errorf("no pages")}
	}

	// pdftoppm wants a file on disk and writes one PNG per page.
	tmpDir, err := os.MkdirTemp("", "orgchart-raster-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	bin := r.PdftoppmPath
	if bin == "" {
		bin = "pdftoppm"
	}
	dpi := r.DPI
	if dpi <= 0 {
		dpi = 300
	}
	outPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command(bin, "-png", "-r", strconv.Itoa(dpi), pdfPath, outPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	entries, err := filepath.Glob(outPrefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages")
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(entries)

	pages := make([][]byte, 0, len(entries))
	for _, path := range entries {
		img, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rendered page: %w", err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}

// PDFText extracts the text layer of a PDF, pages separated in order.
// Used by the classification endpoint, which works on the document's
// own text rather than per-page OCR.
func PDFText(data []byte) (string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ErrInvalidFile{Kind: "PDF", Err: err}
	}

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}
