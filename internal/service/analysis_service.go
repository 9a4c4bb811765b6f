package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"leakscan/internal/adapter"
	"leakscan/internal/config"
	"leakscan/internal/domain"
	"leakscan/internal/extraction"
	"leakscan/internal/leaks"
	"leakscan/internal/logger"
	"leakscan/internal/port"
	"leakscan/internal/tracing"
)

// AnalyzeInput is the DTO for analyzing client-extracted content.
type AnalyzeInput struct {
	FileContent      string
	FileNames        []string
	Categories       map[string][]string
	OCRResults       []domain.FileOCRResult
	ScanType         domain.ScanType
	ExistingAnalysis *domain.LeakAnalysis
}

// AnalyzeResult is the outcome of one analyze-leaks run.
type AnalyzeResult struct {
	Analysis       *domain.LeakAnalysis
	Models         []string
	GeminiFindings domain.PatternFindings
}

// ScanInput is the DTO for running the full pipeline over uploaded files.
type ScanInput struct {
	Files            []adapter.FileInput
	ScanType         domain.ScanType
	ExistingAnalysis *domain.LeakAnalysis
}

// StoredScanInput is the DTO for running the pipeline over stored objects.
type StoredScanInput struct {
	ObjectKeys       []string
	ScanType         domain.ScanType
	ExistingAnalysis *domain.LeakAnalysis
}

// ScanResult is a completed analysis session.
type ScanResult struct {
	Session *domain.AnalysisSession
	Models  []string
}

// AnalysisService defines the leak analysis contract.
type AnalysisService interface {
	AnalyzeLeaks(ctx context.Context, input *AnalyzeInput) (*AnalyzeResult, error)
	Scan(ctx context.Context, input *ScanInput) (*ScanResult, error)
	ScanStored(ctx context.Context, input *StoredScanInput) (*ScanResult, error)
}

type analysisService struct {
	adapter     *adapter.Adapter
	normalizer  *extraction.Normalizer
	detector    *leaks.Detector
	reasoner    *leaks.Reasoner
	storage     port.ObjectStorage
	bucket      string
	concurrency int
}

// NewAnalysisService creates a new AnalysisService implementation. storage
// may be nil, in which case ScanStored reports ErrStorageUnavailable.
func NewAnalysisService(
	fileAdapter *adapter.Adapter,
	normalizer *extraction.Normalizer,
	detector *leaks.Detector,
	reasoner *leaks.Reasoner,
	storage port.ObjectStorage,
	bucket string,
	pipelineCfg config.PipelineConfig,
) AnalysisService {
	concurrency := pipelineCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &analysisService{
		adapter:     fileAdapter,
		normalizer:  normalizer,
		detector:    detector,
		reasoner:    reasoner,
		storage:     storage,
		bucket:      bucket,
		concurrency: concurrency,
	}
}

func (s *analysisService) AnalyzeLeaks(ctx context.Context, input *AnalyzeInput) (*AnalyzeResult, error) {
	scanType, err := resolveScanType(input.ScanType)
	if err != nil {
		return nil, err
	}

	content := buildAnalyzeContent(input.FileContent, input.Categories, input.OCRResults)
	if content == "" {
		return nil, fmt.Errorf("%w: fileContent or ocrResults is required", domain.ErrMissingInput)
	}

	fileNames := input.FileNames
	if len(fileNames) == 0 {
		for _, r := range input.OCRResults {
			fileNames = append(fileNames, r.FileName)
		}
	}

	session := domain.NewAnalysisSession(scanType, input.ExistingAnalysis)
	if err := s.analyze(ctx, session, content, fileNames); err != nil {
		return nil, err
	}

	return &AnalyzeResult{
		Analysis:       session.Analysis,
		Models:         s.models(false),
		GeminiFindings: *session.Findings,
	}, nil
}

func (s *analysisService) Scan(ctx context.Context, input *ScanInput) (*ScanResult, error) {
	scanType, err := resolveScanType(input.ScanType)
	if err != nil {
		return nil, err
	}
	if len(input.Files) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", domain.ErrMissingInput)
	}

	session := domain.NewAnalysisSession(scanType, input.ExistingAnalysis)
	log := logger.FromContext(ctx).With(zap.String("session_id", session.ID.String()))
	log.Info("service.AnalysisService.Scan: starting scan",
		zap.String("scan_type", string(scanType)),
		zap.Int("files", len(input.Files)),
		zap.Bool("has_prior", session.Prior != nil))

	results := s.extractAll(ctx, input.Files)
	for i := range results {
		session.Documents = append(session.Documents, results[i].file.Report())
		if results[i].extraction != nil {
			session.Extractions = append(session.Extractions, domain.NamedExtraction{
				FileName:   results[i].file.FileName,
				Extraction: *results[i].extraction,
			})
		}
	}
	if len(session.Extractions) == 0 {
		return nil, fmt.Errorf("%w: %d files uploaded, none could be read", domain.ErrNoReadableDocuments, len(input.Files))
	}

	content := buildScanContent(results)
	if err := s.analyze(ctx, session, content, session.ReadableFileNames()); err != nil {
		log.Warn("service.AnalysisService.Scan: analysis failed", zap.Error(err))
		return nil, err
	}

	log.Info("service.AnalysisService.Scan: scan complete",
		zap.Int("readable", len(session.Extractions)),
		zap.Int("leaks", session.Analysis.TotalLeaks))
	return &ScanResult{Session: session, Models: s.models(true)}, nil
}

func (s *analysisService) ScanStored(ctx context.Context, input *StoredScanInput) (*ScanResult, error) {
	if s.storage == nil {
		return nil, domain.ErrStorageUnavailable
	}
	if len(input.ObjectKeys) == 0 {
		return nil, fmt.Errorf("%w: objectKeys is required", domain.ErrMissingInput)
	}
	if _, err := resolveScanType(input.ScanType); err != nil {
		return nil, err
	}

	files := make([]adapter.FileInput, len(input.ObjectKeys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, key := range input.ObjectKeys {
		g.Go(func() error {
			obj, err := s.storage.Download(gctx, s.bucket, key)
			if err != nil {
				return fmt.Errorf("downloading %s: %w", key, err)
			}
			files[i] = adapter.FileInput{
				FileName: obj.Key,
				MIMEType: obj.ContentType,
				Data:     obj.Body,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.Scan(ctx, &ScanInput{
		Files:            files,
		ScanType:         input.ScanType,
		ExistingAnalysis: input.ExistingAnalysis,
	})
}

type fileResult struct {
	file       adapter.AdaptedFile
	extraction *domain.UniversalExtraction
}

// extractAll adapts and normalizes every file concurrently. Results keep the
// input order; unreadable files carry no extraction.
func (s *analysisService) extractAll(ctx context.Context, files []adapter.FileInput) []fileResult {
	ctx, span := tracing.StartStage(ctx, "pipeline.extract", attribute.Int("files", len(files)))
	defer tracing.EndStage(span, nil)

	results := make([]fileResult, len(files))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range files {
		g.Go(func() error {
			adapted := s.adapter.Adapt(ctx, files[i])
			results[i].file = adapted
			if !adapted.OK() {
				return nil
			}
			content := extraction.Content{Text: adapted.Text}
			if adapted.Path == adapter.PathVision {
				content.Image = &port.ImagePayload{MIMEType: adapted.MIMEType, Base64: adapted.Base64}
			}
			ex := s.normalizer.Normalize(ctx, content, adapted.FileName, adapted.MIMEType)
			results[i].extraction = &ex
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// analyze runs Stage A then Stage B and stores both results on the session.
func (s *analysisService) analyze(ctx context.Context, session *domain.AnalysisSession, content string, fileNames []string) error {
	stageCtx, span := tracing.StartStage(ctx, "leaks.detect_patterns")
	findings := s.detector.DetectPatterns(stageCtx, content, fileNames)
	span.SetAttributes(attribute.Bool("available", findings.Available))
	tracing.EndStage(span, nil)
	session.Findings = &findings

	stageCtx, span = tracing.StartStage(ctx, "leaks.cross_validate",
		attribute.String("scan_type", string(session.ScanType)),
		attribute.Bool("has_prior", session.Prior != nil))
	analysis, err := s.reasoner.CrossValidate(stageCtx, findings, content, fileNames, session.Prior)
	tracing.EndStage(span, err)
	if err != nil {
		return err
	}

	analysis.ScanType = session.ScanType
	session.Analysis = analysis
	return nil
}

func (s *analysisService) models(withExtraction bool) []string {
	var models []string
	add := func(m string) {
		for _, existing := range models {
			if existing == m {
				return
			}
		}
		models = append(models, m)
	}
	if withExtraction {
		add(s.normalizer.Model())
	}
	add(s.detector.Model())
	add(s.reasoner.Model())
	return models
}

func resolveScanType(t domain.ScanType) (domain.ScanType, error) {
	if t == "" {
		return domain.ScanTypeFree, nil
	}
	if !domain.ValidScanTypes[t] {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidScanType, t)
	}
	return t, nil
}
