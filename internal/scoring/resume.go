package scoring

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ledongthuc/pdf"
)

// defaultMaxResumeBytes caps how much of a resume file is read into memory.
const defaultMaxResumeBytes = 10 << 20

// ResumeReader returns the plain text of a resume. Extraction problems are
// not errors: a resume that cannot be read contributes no text.
type ResumeReader interface {
	ResumeText(ctx context.Context, path string) string
}

// PDFResumeReader extracts text from PDF resumes on the local filesystem.
type PDFResumeReader struct {
	Logger   *slog.Logger
	MaxBytes int64
}

// NewPDFResumeReader returns a reader with the default size cap.
func NewPDFResumeReader(logger *slog.Logger) *PDFResumeReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFResumeReader{Logger: logger, MaxBytes: defaultMaxResumeBytes}
}

// ResumeText implements ResumeReader.
func (r *PDFResumeReader) ResumeText(ctx context.Context, path string) string {
	if path == "" || ctx.Err() != nil {
		return ""
	}
	text, err := r.extract(path)
	if err != nil {
		r.logger().Warn("resume text extraction failed", "path", path, "error", err)
		return ""
	}
	return text
}

func (r *PDFResumeReader) extract(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	limit := r.MaxBytes
	if limit <= 0 {
		limit = defaultMaxResumeBytes
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("resume exceeds %d bytes", limit)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *PDFResumeReader) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

type noResume struct{}

func (noResume) ResumeText(context.Context, string) string { return "" }
