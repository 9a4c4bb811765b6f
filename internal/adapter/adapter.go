package adapter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"leakscan/internal/config"
	"leakscan/internal/domain"
	"leakscan/internal/logger"
)

// Path tells the pipeline how an adapted file reaches a model.
type Path string

const (
	PathText   Path = "text"
	PathVision Path = "vision"
	PathNone   Path = "none"
)

// FileInput is one uploaded document as received.
type FileInput struct {
	FileName string
	MIMEType string
	Data     []byte
}

// AdaptedFile is the model-ready form of a FileInput. Text is set on the text
// path; Base64 and MIMEType are set on the vision path.
type AdaptedFile struct {
	FileName  string
	MIMEType  string
	Path      Path
	Status    domain.AdaptStatus
	Reason    string
	Text      string
	Base64    string
	PageCount int
}

// OK reports whether the file produced model input.
func (f *AdaptedFile) OK() bool {
	return f.Status == domain.AdaptStatusOK
}

// Report converts the adapted file into its user-facing status line.
func (f *AdaptedFile) Report() domain.DocumentReport {
	return domain.DocumentReport{
		FileName: f.FileName,
		MIMEType: f.MIMEType,
		Path:     string(f.Path),
		Status:   f.Status,
		Reason:   f.Reason,
	}
}

// Adapter turns raw uploads into text or base64 vision payloads. It never
// drops a file: every input yields an AdaptedFile carrying a status.
type Adapter struct {
	maxBytes     int64
	maxDimension int
}

// New creates an Adapter from config.
func New(cfg config.AdapterConfig) *Adapter {
	return &Adapter{
		maxBytes:     cfg.MaxFileSizeMB * 1024 * 1024,
		maxDimension: cfg.MaxImageDimension,
	}
}

// Adapt converts one file. Failures are reported through Status and Reason.
func (a *Adapter) Adapt(ctx context.Context, in FileInput) AdaptedFile {
	out := AdaptedFile{
		FileName: in.FileName,
		MIMEType: in.MIMEType,
		Path:     PathNone,
	}
	log := logger.FromContext(ctx)

	if err := ctx.Err(); err != nil {
		return unreadable(out, err.Error())
	}
	if len(in.Data) == 0 {
		return unreadable(out, "file is empty")
	}
	if a.maxBytes > 0 && int64(len(in.Data)) > a.maxBytes {
		return unreadable(out, fmt.Sprintf("%v: %d bytes exceeds the %d MB limit",
			domain.ErrFileTooLarge, len(in.Data), a.maxBytes/(1024*1024)))
	}

	k, mimeType := detectKind(in.FileName, in.MIMEType, in.Data)
	out.MIMEType = mimeType

	var err error
	switch k {
	case kindCSV:
		out.Path = PathText
		out.Text, err = renderDelimited(in.Data, ',')
	case kindTSV:
		out.Path = PathText
		out.Text, err = renderDelimited(in.Data, '\t')
	case kindXLSX, kindXLS:
		out.Path = PathText
		out.Text, err = renderWorkbook(in.Data)
	case kindText:
		out.Path = PathText
		out.Text, err = readPlainText(in.Data)
	case kindHTML:
		out.Path = PathText
		out.Text, err = renderHTML(in.Data)
	case kindPDF:
		out.Path = PathVision
		out.PageCount, err = validatePDF(in.Data)
		if err == nil {
			out.Base64 = encodeBase64(in.Data)
		}
	case kindImage:
		out.Path = PathVision
		out.Base64, out.MIMEType, err = a.prepareImage(in.Data, mimeType)
	default:
		log.Debug("adapter.Adapt: unsupported file",
			zap.String("file", in.FileName), zap.String("mime", mimeType))
		out.Status = domain.AdaptStatusUnsupported
		out.Reason = fmt.Sprintf("%v: %s", domain.ErrUnsupportedFileType, mimeType)
		return out
	}

	if err != nil {
		log.Warn("adapter.Adapt: unreadable file",
			zap.String("file", in.FileName), zap.String("mime", out.MIMEType), zap.Error(err))
		return unreadable(out, err.Error())
	}

	out.Status = domain.AdaptStatusOK
	log.Debug("adapter.Adapt: adapted file",
		zap.String("file", in.FileName),
		zap.String("mime", out.MIMEType),
		zap.String("path", string(out.Path)),
		zap.Int("text_len", len(out.Text)),
	)
	return out
}

func unreadable(out AdaptedFile, reason string) AdaptedFile {
	out.Status = domain.AdaptStatusUnreadable
	out.Reason = reason
	out.Text = ""
	out.Base64 = ""
	return out
}
