package classify

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DocumentRecord is the classification result for one document, shaped
// for downstream indexing.
type DocumentRecord struct {
	ID            string     `json:"id"`
	FilenameOnly  string     `json:"filename_only"`
	FilePath      string     `json:"file_path"`
	FolderPath    string     `json:"folder_path"`
	Date          string     `json:"date"`
	FilenameCheck string     `json:"filename_check"`
	DocType       string     `json:"doc_type"`
	ExtractedInfo Extraction `json:"extracted_info"`
}

// NewDocumentRecord assembles the record for a classified document.
// IDs carry a "DL" prefix ahead of a fresh UUID.
func NewDocumentRecord(path, filename, docType string, info Extraction, text string) DocumentRecord {
	return DocumentRecord{
		ID:            "DL" + uuid.New().String(),
		FilenameOnly:  filename,
		FilePath:      path,
		FolderPath:    filepath.Dir(path),
		Date:          time.Now().Format(time.RFC3339),
		FilenameCheck: CheckFilenameKeywords(text, filename),
		DocType:       docType,
		ExtractedInfo: info,
	}
}
