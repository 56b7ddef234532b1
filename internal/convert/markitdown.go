// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdiddy/paper-rag/internal/container"
)

const imageMarkitdown = "markitdown:latest"

// MarkitdownConverter converts documents by piping them through the
// markitdown container image.
type MarkitdownConverter struct {
	runtime container.Runtime
}

// NewMarkitdownConverter creates a converter that uses rt to run the
// markitdown image. It verifies that the image exists locally.
func NewMarkitdownConverter(ctx context.Context, rt container.Runtime) (*MarkitdownConverter, error) {
	if err := rt.ImageExists(ctx, imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt}, nil
}

// Convert pipes data through the markitdown container and returns the
// resulting Markdown text.
func (m *MarkitdownConverter) Convert(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}
	var out bytes.Buffer
	if err := m.runtime.Run(ctx, imageMarkitdown, bytes.NewReader(data), &out); err != nil {
		return "", fmt.Errorf("converting with markitdown: %w", err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("markitdown produced empty output")
	}
	return out.String(), nil
}
