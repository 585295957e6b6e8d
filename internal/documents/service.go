package documents

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgnsrekt/propdash/internal/apperr"
)

// MaxUploadBytes bounds a single uploaded document.
const MaxUploadBytes = 5 << 20

// Summary aggregates the stored results.
type Summary struct {
	Processed     int `json:"processed"`
	Successful    int `json:"successful"`
	Errors        int `json:"errors"`
	TotalEntities int `json:"total_entities"`
}

// Summarize counts results; entities are only counted for successful ones.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		s.Processed++
		if !r.OK() {
			s.Errors++
			continue
		}
		s.Successful++
		s.TotalEntities += len(r.Entities)
	}
	return s
}

// Service ties the processor to on-disk documents and the result store.
type Service struct {
	proc      *Processor
	store     *Store
	docsDir   string
	uploadDir string
	exportDir string
	now       func() time.Time
}

func NewService(proc *Processor, store *Store, docsDir string) (*Service, error) {
	uploadDir := filepath.Join(docsDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("documents: mkdir %s: %w", uploadDir, err)
	}
	return &Service{
		proc:      proc,
		store:     store,
		docsDir:   docsDir,
		uploadDir: uploadDir,
		exportDir: filepath.Join(store.Dir(), "exports"),
		now:       time.Now,
	}, nil
}

func cleanName(name string) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", apperr.New(apperr.CodeValidation, "file_name is required", nil)
	}
	return base, nil
}

// Upload stores content under the uploads directory, processes it and saves
// the result.
func (s *Service) Upload(ctx context.Context, name string, content []byte) (Result, error) {
	base, err := cleanName(name)
	if err != nil {
		return Result{}, err
	}
	if len(content) > MaxUploadBytes {
		return Result{}, apperr.New(apperr.CodeValidation, fmt.Sprintf("document exceeds %d bytes", MaxUploadBytes), nil)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !Supported(base) {
		_, err := s.proc.ExtractText(base)
		return Result{}, err
	}

	path := filepath.Join(s.uploadDir, base)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return Result{}, apperr.New(apperr.CodeInternal, "save upload", err)
	}
	res, err := s.proc.Process(path)
	if err != nil {
		return Result{}, err
	}
	if err := s.store.Save(res); err != nil {
		return Result{}, apperr.New(apperr.CodeInternal, "save result", err)
	}
	slog.Info("document processed", "file", res.FileName, "type", res.DocumentType, "entities", len(res.Entities), "error", res.Error)
	return res, nil
}

// ProcessSamples writes the sample documents and processes them as a batch.
func (s *Service) ProcessSamples(ctx context.Context) ([]Result, error) {
	paths, err := CreateSamples(s.docsDir)
	if err != nil {
		return nil, apperr.New(apperr.CodeInternal, "create sample documents", err)
	}
	return s.processAll(ctx, paths)
}

// ProcessDirectory processes every supported file directly under the
// documents directory.
func (s *Service) ProcessDirectory(ctx context.Context) ([]Result, error) {
	entries, err := os.ReadDir(s.docsDir)
	if err != nil {
		return nil, apperr.New(apperr.CodeInternal, "read documents directory", err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && Supported(e.Name()) {
			paths = append(paths, filepath.Join(s.docsDir, e.Name()))
		}
	}
	return s.processAll(ctx, paths)
}

func (s *Service) processAll(ctx context.Context, paths []string) ([]Result, error) {
	results := s.proc.ProcessBatch(ctx, paths)
	for _, res := range results {
		if err := s.store.Save(res); err != nil {
			return results, apperr.New(apperr.CodeInternal, "save result", err)
		}
	}
	sum := Summarize(results)
	slog.Info("document batch processed", "processed", sum.Processed, "successful", sum.Successful, "entities", sum.TotalEntities)
	return results, nil
}

func (s *Service) List() ([]Result, error) { return s.store.List() }

func (s *Service) Get(id string) (Result, error) { return s.store.Get(id) }

func (s *Service) Delete(id string) error { return s.store.Delete(id) }

// Summary summarizes everything in the store.
func (s *Service) Summary() (Summary, error) {
	results, err := s.store.List()
	if err != nil {
		return Summary{}, err
	}
	return Summarize(results), nil
}

// Export writes all results to a timestamped file under the exports directory.
func (s *Service) Export() (string, int, error) {
	return s.store.Export(s.exportDir, s.now())
}
