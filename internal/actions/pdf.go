package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/infra/pdf"
)

const pdfInstruction = "Summarize the following document content concisely, " +
	"highlighting key findings or arguments:\n\n"

// Document is an uploaded file.
type Document struct {
	Name string
	Data []byte
}

// SummarizePDF extracts text page by page, caps it, and asks the model for a summary.
func (s *Service) SummarizePDF(ctx context.Context, doc *Document) domain.Result {
	if !s.summarizerReady() {
		return domain.Failure(domain.ActionPDFSummary, domain.KindConfig, MsgLLMKeyMissing)
	}
	if doc == nil || len(doc.Data) == 0 {
		return domain.Failure(domain.ActionPDFSummary, domain.KindInput, "Please upload a PDF file to summarize.")
	}
	if limit := s.cfg.PDF.MaxUploadSize; limit > 0 && int64(len(doc.Data)) > limit {
		return domain.Failure(domain.ActionPDFSummary, domain.KindInput,
			fmt.Sprintf("PDF file is too large (%d bytes, limit %d).", len(doc.Data), limit))
	}
	if s.deps.PDF == nil {
		return domain.Failure(domain.ActionPDFSummary, domain.KindConfig, "PDF extractor is not configured.")
	}

	pages, err := s.deps.PDF.ExtractPages(doc.Data)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPDF) {
			return domain.Failure(domain.ActionPDFSummary, domain.KindParse,
				"Error reading PDF file. It might be corrupted or not a valid PDF.")
		}
		return domain.Failure(domain.ActionPDFSummary, domain.KindParse,
			fmt.Sprintf("An unexpected error occurred during PDF summarization: %v", err))
	}

	var b strings.Builder
	for _, p := range pages {
		if p == "" {
			continue
		}
		b.WriteString(p)
		b.WriteString("\n")
	}
	text := b.String()
	if strings.TrimSpace(text) == "" {
		return domain.Failure(domain.ActionPDFSummary, domain.KindParse,
			"Could not extract text from the PDF. It might be an image-based PDF, password-protected, or empty.")
	}

	text, truncated := Truncate(text, s.cfg.PDF.MaxTextLength)
	if truncated {
		s.log.Warn("PDF content is very large, truncating for summarization",
			"document", doc.Name, "limit", s.cfg.PDF.MaxTextLength)
	}

	summary, err := s.summarize(ctx, "pdf_summary", pdfInstruction, text)
	if err != nil {
		kind := domain.KindOf(err)
		if kind == domain.KindNone {
			kind = domain.KindNetwork
		}
		return domain.Failure(domain.ActionPDFSummary, kind,
			llmFailureMessage(err, "An unexpected error occurred during PDF summarization: %v"))
	}

	return domain.Success(domain.ActionPDFSummary, fmt.Sprintf("**Summary of '%s':**\n\n%s", doc.Name, summary))
}
