package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdaptStatus is the outcome of turning an uploaded file into model input.
type AdaptStatus string

const (
	AdaptStatusOK          AdaptStatus = "ok"
	AdaptStatusUnreadable  AdaptStatus = "unreadable"
	AdaptStatusUnsupported AdaptStatus = "unsupported"
)

// DocumentReport describes what happened to one file during a scan.
type DocumentReport struct {
	FileName  string      `json:"fileName"`
	MIMEType  string      `json:"mimeType"`
	Path      string      `json:"path"`
	Status    AdaptStatus `json:"status"`
	Reason    string      `json:"reason,omitempty"`
	Truncated bool        `json:"truncated,omitempty"`
}

// NamedExtraction pairs an extraction with the file it came from.
type NamedExtraction struct {
	FileName   string              `json:"fileName"`
	Extraction UniversalExtraction `json:"extraction"`
}

// AnalysisSession is the state of one user-initiated scan. A session is
// owned by exactly one pipeline invocation; re-analysis starts a new session
// seeded with the previous result instead of mutating this one.
type AnalysisSession struct {
	ID          uuid.UUID         `json:"id"`
	ScanType    ScanType          `json:"scanType"`
	StartedAt   time.Time         `json:"startedAt"`
	Prior       *LeakAnalysis     `json:"prior,omitempty"`
	Documents   []DocumentReport  `json:"documents"`
	Extractions []NamedExtraction `json:"extractions"`
	Findings    *PatternFindings  `json:"findings,omitempty"`
	Analysis    *LeakAnalysis     `json:"analysis,omitempty"`
}

// NewAnalysisSession starts a session. A prior analysis is only kept for
// enhanced scans.
func NewAnalysisSession(scanType ScanType, prior *LeakAnalysis) *AnalysisSession {
	if scanType != ScanTypeEnhanced {
		prior = nil
	}
	return &AnalysisSession{
		ID:        uuid.New(),
		ScanType:  scanType,
		StartedAt: time.Now().UTC(),
		Prior:     prior,
	}
}

// Reanalyze returns a fresh enhanced session carrying this session's result
// forward as context.
func (s *AnalysisSession) Reanalyze() *AnalysisSession {
	return NewAnalysisSession(ScanTypeEnhanced, s.Analysis)
}

// ReadableFileNames lists files whose content reached the model.
func (s *AnalysisSession) ReadableFileNames() []string {
	names := make([]string, 0, len(s.Documents))
	for i := range s.Documents {
		if s.Documents[i].Status == AdaptStatusOK {
			names = append(names, s.Documents[i].FileName)
		}
	}
	return names
}
