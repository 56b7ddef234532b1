// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns downloaded primary documents into plain text with
// pluggable backends. The in-process PDF backend is the default; the
// markitdown backend runs the conversion inside a container.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/paper-rag/internal/container"
	"github.com/pdiddy/paper-rag/pkg/types"
)

// ErrEmptyDocument is returned when a document contains no bytes.
var ErrEmptyDocument = errors.New("empty document")

// Converter transforms the raw bytes of a primary document into text.
type Converter interface {
	Convert(ctx context.Context, data []byte) (string, error)
}

// New returns the converter for kind. The markitdown backend needs a
// container runtime with the markitdown image present.
func New(ctx context.Context, kind types.ConverterKind) (Converter, error) {
	switch kind {
	case "", types.ConverterPDF:
		return PDFConverter{}, nil
	case types.ConverterMarkitdown:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewMarkitdownConverter(ctx, rt)
	default:
		return nil, fmt.Errorf("unknown converter %q", kind)
	}
}

// PDFConverter extracts the text layer of a PDF in process. Pages are
// joined with newlines; pages without text are skipped.
type PDFConverter struct{}

// Convert implements Converter.
func (PDFConverter) Convert(ctx context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}
	// The PDF parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(content) == "" {
			continue
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), nil
}
