// Package documents extracts text from property documents, classifies them
// and pulls out labelled entities such as tenant names and amounts.
package documents

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dgnsrekt/propdash/internal/apperr"
)

// DocumentType is the classification of a processed document.
type DocumentType string

const (
	TypeLease      DocumentType = "lease"
	TypeInvoice    DocumentType = "invoice"
	TypeIDDocument DocumentType = "id_document"
	TypeUnknown    DocumentType = "unknown"
)

const (
	previewChars = 1000

	// ErrNoText is the result error for documents without extractable text.
	ErrNoText = "No text could be extracted from document"

	defaultBatchLimit = 4
)

// Result is the outcome of processing one document.
type Result struct {
	ID            string            `json:"id"`
	FileName      string            `json:"file_name"`
	DocumentType  DocumentType      `json:"document_type,omitempty"`
	ExtractedText string            `json:"extracted_text,omitempty"`
	Entities      map[string]string `json:"entities,omitempty"`
	ProcessedAt   time.Time         `json:"processed_at"`
	TextLength    int               `json:"text_length"`
	SizeBytes     int64             `json:"size_bytes"`
	Error         string            `json:"error,omitempty"`
}

// OK reports whether the document was processed without error.
func (r Result) OK() bool { return r.Error == "" }

var textExtensions = map[string]bool{".txt": true}

// Formats the upload form accepts but this build cannot read: no PDF or OCR
// engine is linked in.
var unreadableExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".tiff": true, ".bmp": true,
}

// Processor turns files into Results.
type Processor struct {
	batchLimit int
	now        func() time.Time
}

func NewProcessor(batchLimit int) *Processor {
	if batchLimit <= 0 {
		batchLimit = defaultBatchLimit
	}
	return &Processor{batchLimit: batchLimit, now: time.Now}
}

// Supported reports whether files named like name can be processed.
func Supported(name string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(name))]
}

// ExtractText reads the text content of path.
func (p *Processor) ExtractText(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case textExtensions[ext]:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		if !utf8.Valid(data) {
			return "", apperr.New(apperr.CodeUnsupportedFormat, "text file is not valid UTF-8", nil)
		}
		return string(data), nil
	case unreadableExtensions[ext]:
		return "", apperr.New(apperr.CodeUnsupportedFormat, fmt.Sprintf("no text extractor for %s files", ext), nil)
	default:
		return "", apperr.New(apperr.CodeUnsupportedFormat, fmt.Sprintf("unsupported file type %q", ext), nil)
	}
}

// Process extracts, classifies and mines one file. The returned Result is
// always populated; err is non-nil when the file could not be read.
func (p *Processor) Process(path string) (Result, error) {
	res := Result{
		ID:          uuid.NewString(),
		FileName:    filepath.Base(path),
		ProcessedAt: p.now().UTC(),
	}
	if info, err := os.Stat(path); err == nil {
		res.SizeBytes = info.Size()
	}

	slog.Debug("processing document", "file", res.FileName)
	text, err := p.ExtractText(path)
	if err != nil {
		res.Error = apperr.Reason(err)
		return res, err
	}
	p.fill(&res, text)
	return res, nil
}

// ProcessText processes already extracted text under the given file name.
func (p *Processor) ProcessText(name, text string) Result {
	res := Result{
		ID:          uuid.NewString(),
		FileName:    filepath.Base(name),
		ProcessedAt: p.now().UTC(),
		SizeBytes:   int64(len(text)),
	}
	p.fill(&res, text)
	return res
}

func (p *Processor) fill(res *Result, text string) {
	if strings.TrimSpace(text) == "" {
		res.Error = ErrNoText
		return
	}
	res.DocumentType = Classify(text)
	res.Entities = ExtractEntities(text, res.DocumentType)
	res.ExtractedText = preview(text)
	res.TextLength = utf8.RuneCountInString(text)
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewChars {
		return text
	}
	return string([]rune(text)[:previewChars]) + "..."
}

// ProcessBatch processes paths with bounded concurrency. Results keep the
// order of paths; per-file failures become error results.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.batchLimit)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{ID: uuid.NewString(), FileName: filepath.Base(path), ProcessedAt: p.now().UTC(), Error: err.Error()}
				return nil
			}
			res, err := p.Process(path)
			if err != nil {
				slog.Warn("document processing failed", "file", res.FileName, "error", err)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

var classKeywords = []struct {
	typ DocumentType
	re  *regexp.Regexp
}{
	{TypeLease, regexp.MustCompile(`(?i)\b(?:lease|tenant|lessee|landlord|rent|security deposit|term)\b`)},
	{TypeInvoice, regexp.MustCompile(`(?i)\b(?:invoice|amount due|due date|total|bill|billing|vendor|payment)\b`)},
	{TypeIDDocument, regexp.MustCompile(`(?i)\b(?:passport|driver|license|licence|identification|date of birth|id number|nationality)\b`)},
}

const minClassScore = 2

// Classify scores the text against each type's keywords. Fewer than two
// keyword hits, or no text at all, is unknown. Ties go to the earlier type.
func Classify(text string) DocumentType {
	best, bestScore := TypeUnknown, 0
	for _, c := range classKeywords {
		score := len(c.re.FindAllStringIndex(text, -1))
		if score > bestScore {
			best, bestScore = c.typ, score
		}
	}
	if bestScore < minClassScore {
		return TypeUnknown
	}
	return best
}

type pattern struct {
	field string
	re    *regexp.Regexp
}

const (
	sep    = `[ \t]*:[ \t]*`
	date   = `(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`
	amount = `(\$[\d,]+(?:\.\d{2})?)`
)

// Labels must be followed by a colon on the same line; values stop at the
// end of that line.
var leasePatterns = []pattern{
	{"tenant_name", regexp.MustCompile(`(?i)\b(?:tenant|lessee)` + sep + `([A-Za-z .]+)`)},
	{"property_address", regexp.MustCompile(`(?i)\b(?:property address|address|property)` + sep + `([\w ,]+)`)},
	{"lease_term", regexp.MustCompile(`(?i)\b(?:lease term|term|duration)` + sep + `(\d+[ \t]*(?:months|years|month|year))`)},
	{"rent_amount", regexp.MustCompile(`(?i)\b(?:monthly rent|rent|monthly payment)` + sep + amount)},
	{"security_deposit", regexp.MustCompile(`(?i)\b(?:security deposit|deposit)` + sep + amount)},
	{"start_date", regexp.MustCompile(`(?i)\b(?:start date|commencement)` + sep + date)},
	{"end_date", regexp.MustCompile(`(?i)\b(?:end date|termination)` + sep + date)},
}

var invoicePatterns = []pattern{
	{"invoice_number", regexp.MustCompile(`(?i)\b(?:invoice[ \t]*#|invoice no\.|no\.)[ \t]*:?[ \t]*([A-Z0-9-]+)`)},
	{"invoice_date", regexp.MustCompile(`(?im)^[ \t]*(?:invoice date|date)` + sep + date)},
	{"due_date", regexp.MustCompile(`(?i)\bdue date` + sep + date)},
	{"total_amount", regexp.MustCompile(`(?i)\b(?:total amount due|amount due|total)` + sep + amount)},
	{"vendor_name", regexp.MustCompile(`(?i)\b(?:from|vendor)` + sep + `([A-Za-z &.]+)`)},
	{"property_unit", regexp.MustCompile(`(?i)\b(?:property|unit)` + sep + `([A-Z0-9 -]+)`)},
}

var idPatterns = []pattern{
	{"full_name", regexp.MustCompile(`\b([A-Z][a-z]+[ \t]+[A-Z][a-z]+)\b`)},
	{"date_of_birth", regexp.MustCompile(`(?i)\b(?:date of birth|birth date|dob)` + sep + date)},
	{"id_number", regexp.MustCompile(`(?i)\b(?:id number|license number|licence number|passport number|id no\.?)` + sep + `([A-Z0-9]{8,12})\b`)},
	{"expiry_date", regexp.MustCompile(`(?i)\b(?:expiry date|expiration date|expires|exp)` + sep + date)},
	{"address", regexp.MustCompile(`(\d+[ \t]+[A-Za-z \t]+,?[ \t]+[A-Za-z \t]+,?[ \t]+[A-Z]{2})\b`)},
}

// ExtractEntities applies the patterns of typ. Unknown documents get the
// union of every pattern set, later sets winning on shared fields.
func ExtractEntities(text string, typ DocumentType) map[string]string {
	var sets [][]pattern
	switch typ {
	case TypeLease:
		sets = [][]pattern{leasePatterns}
	case TypeInvoice:
		sets = [][]pattern{invoicePatterns}
	case TypeIDDocument:
		sets = [][]pattern{idPatterns}
	default:
		sets = [][]pattern{leasePatterns, invoicePatterns, idPatterns}
	}
	entities := make(map[string]string)
	for _, set := range sets {
		for _, p := range set {
			if m := p.re.FindStringSubmatch(text); m != nil {
				if v := strings.TrimSpace(m[1]); v != "" {
					entities[p.field] = v
				}
			}
		}
	}
	return entities
}
