package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"testing"

	"github.com/scb10x/orgchart-ocr/internal/orgchart"
)

type fakeRenderer struct {
	pages [][]byte
	err   error
}

func (f *fakeRenderer) PageImages(data []byte, filename string) ([][]byte, error) {
	return f.pages, f.err
}

// fakeOCR returns one canned payload per call and records the temp
// file paths it was handed.
type fakeOCR struct {
	payloads []string
	calls    int
	paths    []string
	err      error
	errOn    int // 1-based call number to fail on, 0 = never
}

func (f *fakeOCR) Document(ctx context.Context, imagePath string) (string, error) {
	f.calls++
	f.paths = append(f.paths, imagePath)
	if f.err != nil && f.calls == f.errOn {
		return "", f.err
	}
	return f.payloads[f.calls-1], nil
}

type fakeTextClassifier struct {
	output string
	err    error
	prompt string
}

func (f *fakeTextClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.output, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProcessor(r *fakeRenderer, o *fakeOCR, tc *fakeTextClassifier) *Processor {
	return NewProcessor(r, o, orgchart.DefaultClassifier(), tc, 800, testLogger())
}

func TestProcessDocument_SinglePage(t *testing.T) {
	ocrFake := &fakeOCR{payloads: []string{"CEO\nJane Doe"}}
	p := newTestProcessor(&fakeRenderer{pages: [][]byte{{1}}}, ocrFake, nil)

	result, err := p.ProcessDocument(context.Background(), []byte("upload"), "chart.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalPages != 1 {
		t.Errorf("total_pages = %d", result.TotalPages)
	}
	if len(result.Pages) != 1 || result.Pages[0].Page != 1 {
		t.Fatalf("pages = %+v", result.Pages)
	}
	if result.Pages[0].RawText != "CEO\nJane Doe" {
		t.Errorf("raw_text = %q", result.Pages[0].RawText)
	}
	wantPairs := []orgchart.Pair{{Position: "CEO", Name: "Jane Doe"}}
	if !reflect.DeepEqual(result.CombinedPairs, wantPairs) {
		t.Errorf("combined_pairs = %+v", result.CombinedPairs)
	}
	wantHier := orgchart.Hierarchy{"CEO": orgchart.Hierarchy{}}
	if !reflect.DeepEqual(result.CombinedHierarchy, wantHier) {
		t.Errorf("combined_hierarchy = %v", result.CombinedHierarchy)
	}
}

func TestProcessDocument_StructuredOCRPayload(t *testing.T) {
	ocrFake := &fakeOCR{payloads: []string{`{"natural_text": "Manager\nJohn Smith"}`}}
	p := newTestProcessor(&fakeRenderer{pages: [][]byte{{1}}}, ocrFake, nil)

	result, err := p.ProcessDocument(context.Background(), []byte("upload"), "chart.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Pages[0].RawText != "Manager\nJohn Smith" {
		t.Errorf("raw_text = %q, want natural_text field", result.Pages[0].RawText)
	}
}

func TestProcessDocument_MultiPageOrderAndIsolation(t *testing.T) {
	// Page 1 ends with a dangling position; page 2 opens with a name.
	// The name must NOT pair with page 1's position.
	ocrFake := &fakeOCR{payloads: []string{
		"CEO\nJane Doe\nCTO",
		"Somchai Jaidee\nManager\nAnna Lee",
	}}
	p := newTestProcessor(&fakeRenderer{pages: [][]byte{{1}, {2}}}, ocrFake, nil)

	result, err := p.ProcessDocument(context.Background(), []byte("upload"), "doc.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalPages != 2 {
		t.Fatalf("total_pages = %d", result.TotalPages)
	}
	for i, page := range result.Pages {
		if page.Page != i+1 {
			t.Errorf("page[%d].Page = %d", i, page.Page)
		}
	}

	wantPairs := []orgchart.Pair{
		{Position: "CEO", Name: "Jane Doe"},
		{Position: "Manager", Name: "Anna Lee"},
	}
	if !reflect.DeepEqual(result.CombinedPairs, wantPairs) {
		t.Errorf("combined_pairs = %+v, want %+v", result.CombinedPairs, wantPairs)
	}

	// Blocks concatenate in page-then-line order.
	var wantTexts []string
	for _, page := range result.Pages {
		for _, b := range page.Blocks {
			wantTexts = append(wantTexts, b.Text)
		}
	}
	var gotTexts []string
	for _, b := range result.CombinedBlocks {
		gotTexts = append(gotTexts, b.Text)
	}
	if !reflect.DeepEqual(gotTexts, wantTexts) {
		t.Errorf("combined_blocks order = %v, want %v", gotTexts, wantTexts)
	}
}

func TestProcessDocument_HierarchyMergeOverwritesTopLevelKeys(t *testing.T) {
	ocrFake := &fakeOCR{payloads: []string{
		"CEO\nCTO", // page 1: {"CEO": {"CTO": {}}}
		"CEO",      // page 2: {"CEO": {}} replaces page 1's subtree
	}}
	p := newTestProcessor(&fakeRenderer{pages: [][]byte{{1}, {2}}}, ocrFake, nil)

	result, err := p.ProcessDocument(context.Background(), []byte("upload"), "doc.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := orgchart.Hierarchy{"CEO": orgchart.Hierarchy{}}
	if !reflect.DeepEqual(result.CombinedHierarchy, want) {
		t.Errorf("combined_hierarchy = %v, want %v", result.CombinedHierarchy, want)
	}
}

func TestProcessDocument_PageFailureAbortsDocument(t *testing.T) {
	ocrFake := &fakeOCR{
		payloads: []string{"CEO", ""},
		err:      errors.New("model unavailable"),
		errOn:    2,
	}
	p := newTestProcessor(&fakeRenderer{pages: [][]byte{{1}, {2}}}, ocrFake, nil)

	_, err := p.ProcessDocument(context.Background(), []byte("upload"), "doc.pdf")
	if err == nil {
		t.Fatal("expected error when a page's OCR fails")
	}
	if got := err.Error(); got != "page 2: ocr: model unavailable" {
		t.Errorf("error = %q", got)
	}
}

func TestProcessDocument_TempFilesRemoved(t *testing.T) {
	ocrFake := &fakeOCR{
		payloads: []string{"CEO", ""},
		err:      errors.New("boom"),
		errOn:    2,
	}
	p := newTestProcessor(&fakeRenderer{pages: [][]byte{{1}, {2}}}, ocrFake, nil)

	p.ProcessDocument(context.Background(), []byte("upload"), "doc.pdf")

	// Both the successful and the failed page's temp artifacts are gone.
	if len(ocrFake.paths) != 2 {
		t.Fatalf("expected 2 OCR calls, got %d", len(ocrFake.paths))
	}
	for _, path := range ocrFake.paths {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("temp file %s still exists", path)
		}
	}
}

func TestProcessDocument_RendererErrorPropagates(t *testing.T) {
	p := newTestProcessor(&fakeRenderer{err: fmt.Errorf("bad file")}, &fakeOCR{}, nil)
	if _, err := p.ProcessDocument(context.Background(), nil, "doc.pdf"); err == nil {
		t.Fatal("expected renderer error")
	}
}

func TestClassifyDocument_RoutesLabelToExtractor(t *testing.T) {
	tc := &fakeTextClassifier{output: "2. ทะเบียนผู้ถือหุ้นของบริษัทฉบับล่าสุด"}
	p := newTestProcessor(&fakeRenderer{}, &fakeOCR{}, tc)

	record, err := p.ClassifyDocument(context.Background(), "ผู้ถือหุ้น 45%", "/tmp/doc.pdf", "shares.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.DocType != "2. ทะเบียนผู้ถือหุ้นของบริษัทฉบับล่าสุด" {
		t.Errorf("doc_type = %q", record.DocType)
	}
	if !reflect.DeepEqual(record.ExtractedInfo.Matches, []string{"45%"}) {
		t.Errorf("extracted_info = %+v", record.ExtractedInfo)
	}
	if record.FilenameOnly != "shares.pdf" {
		t.Errorf("filename_only = %q", record.FilenameOnly)
	}
	if len(record.ID) <= 2 || record.ID[:2] != "DL" {
		t.Errorf("id = %q, want DL prefix", record.ID)
	}
	if tc.prompt == "" {
		t.Error("classifier received no prompt")
	}
}

func TestClassifyDocument_ClassifierErrorPropagates(t *testing.T) {
	tc := &fakeTextClassifier{err: errors.New("llm down")}
	p := newTestProcessor(&fakeRenderer{}, &fakeOCR{}, tc)
	if _, err := p.ClassifyDocument(context.Background(), "text", "/tmp/x.pdf", "x.pdf"); err == nil {
		t.Fatal("expected classifier error to propagate")
	}
}
