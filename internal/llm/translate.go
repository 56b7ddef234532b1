// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/pemistahl/lingua-go"
)

// translatePromptTmpl asks for a short English search phrase built from the
// user's keywords.
var translatePromptTmpl = template.Must(template.New("translate").Parse(`Combine the following {{.Language}} keywords into the most effective English search phrase for PubMed and arXiv.
A simple phrase of 2 to 3 words that captures the core meaning works best.
Example: ["인공지능", "신약 개발"] -> "AI in drug discovery"
Never add an explanation. Output only the final search phrase on a single line.
Keywords: {{.Keywords}}
`))

// detectableLanguages bounds the detector to languages users are likely to
// query in; a small set keeps detection fast and accurate on short input.
var detectableLanguages = []lingua.Language{
	lingua.English, lingua.Korean, lingua.Japanese, lingua.Chinese,
	lingua.German, lingua.French, lingua.Spanish,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectableLanguages...).
			Build()
	})
	return detector
}

// DetectLanguage names the language of text, or "" when undetermined.
func DetectLanguage(text string) string {
	lang, ok := languageDetector().DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return lang.String()
}

// Translator turns keywords in any language into one English search phrase.
type Translator struct {
	client *Client
}

// NewTranslator creates a Translator backed by client.
func NewTranslator(client *Client) *Translator {
	return &Translator{client: client}
}

// Translate asks the model for a search phrase. Double quotes are stripped
// from the reply.
func (t *Translator) Translate(ctx context.Context, keywords []string) (string, error) {
	if len(keywords) == 0 {
		return "", fmt.Errorf("no keywords to translate")
	}
	joined := strings.Join(keywords, ", ")
	lang := DetectLanguage(joined)
	if lang == "" {
		lang = "search"
	}

	var buf bytes.Buffer
	if err := translatePromptTmpl.Execute(&buf, struct {
		Language string
		Keywords string
	}{lang, joined}); err != nil {
		return "", fmt.Errorf("rendering translate prompt: %w", err)
	}

	out, err := t.client.Generate(ctx, buf.String())
	if err != nil {
		return "", err
	}
	phrase := strings.TrimSpace(strings.ReplaceAll(out, `"`, ""))
	t.client.logger.Info("translated keywords", "keywords", keywords, "language", lang, "phrase", phrase)
	return phrase, nil
}
