// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/pdiddy/paper-rag/pkg/types"
)

// fakeModel records the last prompt and returns a canned reply.
type fakeModel struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, m := range msgs {
		for _, p := range m.Parts {
			if tp, ok := p.(llms.TextContent); ok {
				f.prompt = tp.Text
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, opts...)
}

func TestNewRequiresModel(t *testing.T) {
	_, err := New(types.LLMConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(types.LLMConfig{Model: "m", Provider: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unknown LLM provider")
}

func TestNewOpenAICompatible(t *testing.T) {
	c, err := New(types.LLMConfig{Model: "llama3", BaseURL: "http://localhost:11434/v1", Temperature: 0.1})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestGenerate(t *testing.T) {
	m := &fakeModel{reply: "  an answer \n"}
	got, err := NewWithModel(m, 0.1).Generate(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "an answer", got)
	assert.Equal(t, "question", m.prompt)

	var nilClient *Client
	_, err = nilClient.Generate(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTranslateStripsQuotes(t *testing.T) {
	m := &fakeModel{reply: `"CRISPR gene editing"`}
	tr := NewTranslator(NewWithModel(m, 0.1))

	got, err := tr.Translate(context.Background(), []string{"유전자 가위", "임상 적용"})
	require.NoError(t, err)
	assert.Equal(t, "CRISPR gene editing", got)
	assert.Contains(t, m.prompt, "유전자 가위, 임상 적용")
	assert.Contains(t, m.prompt, "Korean keywords")
}

func TestTranslateErrors(t *testing.T) {
	tr := NewTranslator(NewWithModel(&fakeModel{err: errors.New("quota exceeded")}, 0))
	_, err := tr.Translate(context.Background(), []string{"crispr"})
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = tr.Translate(context.Background(), nil)
	assert.Error(t, err)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "Korean", DetectLanguage("트랜스포머 모델의 장점"))
	assert.Equal(t, "English", DetectLanguage("the advantages of transformer models in language processing"))
}
