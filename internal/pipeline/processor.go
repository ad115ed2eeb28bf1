package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/scb10x/orgchart-ocr/internal/classify"
	"github.com/scb10x/orgchart-ocr/internal/ocr"
	"github.com/scb10x/orgchart-ocr/internal/orgchart"
	"github.com/scb10x/orgchart-ocr/internal/raster"
)

// PageResult holds one page's OCR text and the structures derived
// from it.
type PageResult struct {
	Page      int                  `json:"page"`
	RawText   string               `json:"raw_text"`
	Blocks    []orgchart.TextBlock `json:"blocks"`
	Pairs     []orgchart.Pair      `json:"pairs"`
	Hierarchy orgchart.Hierarchy   `json:"hierarchy"`
}

// DocumentResult aggregates every page of a processed document.
// Combined blocks and pairs preserve page-then-line order; the
// combined hierarchy is a shallow top-level union of per-page trees.
type DocumentResult struct {
	TotalPages        int                  `json:"total_pages"`
	CombinedPairs     []orgchart.Pair      `json:"combined_pairs"`
	CombinedBlocks    []orgchart.TextBlock `json:"combined_blocks"`
	CombinedHierarchy orgchart.Hierarchy   `json:"combined_hierarchy"`
	Pages             []PageResult         `json:"pages"`
}

// OCRClient is the external OCR engine collaborator.
type OCRClient interface {
	Document(ctx context.Context, imagePath string) (string, error)
}

// PageRenderer converts an uploaded document into per-page images.
type PageRenderer interface {
	PageImages(data []byte, filename string) ([][]byte, error)
}

// Processor runs the document pipeline: rasterize, OCR each page,
// derive blocks, pairs, and hierarchy, then merge. Pages are processed
// strictly in order; any page failure aborts the whole document.
type Processor struct {
	renderer   PageRenderer
	ocrClient  OCRClient
	classifier *orgchart.Classifier
	textClass  classify.TextClassifier
	excerpt    int
	log        *slog.Logger
}

func NewProcessor(renderer PageRenderer, ocrClient OCRClient, classifier *orgchart.Classifier, textClass classify.TextClassifier, excerptChars int, log *slog.Logger) *Processor {
	return &Processor{
		renderer:   renderer,
		ocrClient:  ocrClient,
		classifier: classifier,
		textClass:  textClass,
		excerpt:    excerptChars,
		log:        log,
	}
}

// ProcessDocument converts the upload to page images, OCRs each page
// sequentially, and aggregates the per-page structures.
func (p *Processor) ProcessDocument(ctx context.Context, data []byte, filename string) (*DocumentResult, error) {
	images, err := p.renderer.PageImages(data, filename)
	if err != nil {
		return nil, err
	}

	result := &DocumentResult{
		TotalPages:        len(images),
		CombinedPairs:     []orgchart.Pair{},
		CombinedBlocks:    []orgchart.TextBlock{},
		CombinedHierarchy: orgchart.Hierarchy{},
	}

	for i, img := range images {
		page, err := p.processPage(ctx, img, i+1)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		result.Pages = append(result.Pages, *page)
		result.CombinedBlocks = append(result.CombinedBlocks, page.Blocks...)
		result.CombinedPairs = append(result.CombinedPairs, page.Pairs...)
		orgchart.MergeHierarchies(result.CombinedHierarchy, page.Hierarchy)
	}

	return result, nil
}

// processPage hands one page image to the OCR engine through a
// transient file, then derives the page's structures. All derivation
// state is local to the call, so nothing leaks between pages.
func (p *Processor) processPage(ctx context.Context, img []byte, pageNum int) (*PageResult, error) {
	tmp, err := os.CreateTemp("", "orgchart-page-*.png")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(img); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	payload, err := p.ocrClient.Document(ctx, tmpPath)
	os.Remove(tmpPath) // the page's artifact never outlives its own step
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}

	rawText := ocr.ExtractNaturalText(payload)
	blocks := p.classifier.ExtractBlocks(rawText)

	p.log.Info("page processed", "page", pageNum, "blocks", len(blocks))

	return &PageResult{
		Page:      pageNum,
		RawText:   rawText,
		Blocks:    blocks,
		Pairs:     orgchart.BuildPairs(blocks),
		Hierarchy: orgchart.BuildHierarchy(blocks),
	}, nil
}

// DocumentText produces the representative full-document text for
// classification. The PDF's own text layer is preferred; a scanned PDF
// with no usable text layer falls back to OCR of each rendered page,
// with the markdown output flattened to plain text.
func (p *Processor) DocumentText(ctx context.Context, data []byte, filename string) (string, error) {
	text, err := raster.PDFText(data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	images, err := p.renderer.PageImages(data, filename)
	if err != nil {
		return "", err
	}
	var pages []string
	for i, img := range images {
		page, err := p.processPage(ctx, img, i+1)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, ocr.FlattenMarkdown(page.RawText))
	}
	return strings.Join(pages, "\n"), nil
}

// ClassifyDocument sends the document text to the external classifier,
// parses the category label, and runs the category's extractor.
func (p *Processor) ClassifyDocument(ctx context.Context, text, path, filename string) (*classify.DocumentRecord, error) {
	prompt := classify.Prompt(text, p.excerpt)
	raw, err := p.textClass.Classify(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	label := classify.ParseLabel(raw)
	info := classify.Dispatch(label, text)

	p.log.Info("document classified", "doc_type", label)

	record := classify.NewDocumentRecord(path, filename, label, info, text)
	return &record, nil
}
