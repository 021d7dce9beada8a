package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/truthcheck/internal/llm"
	"github.com/ppiankov/truthcheck/internal/model"
)

// ImageIntegrityStub is the placeholder integrity sub-score attached to image analyses
var ImageIntegrityStub = model.SubScore{Score: 50, Text: "Análise de integridade da imagem não implementada."}

const imageURLScheme = "imagem-upload://"

// ImageContent builds the article text analyzed for an image description
func ImageContent(description string) string {
	return "Análise de Imagem\n\nDescrição da Imagem: " + description
}

// AnalyzeImage describes the image with one vision call and analyzes the
// description as an article
func (a *Analyzer) AnalyzeImage(ctx context.Context, img llm.Image, progress ProgressFunc) (*Result, error) {
	if len(img.Data) == 0 {
		return nil, &model.ExtractionError{Reason: "empty image"}
	}
	if progress != nil {
		progress(StageExtract, "Descrevendo a imagem...")
	}

	describer := llm.NewCountingProvider(a.provider, a.logger)
	resp, err := describer.Generate(ctx, llm.GenerateRequest{
		Prompt:  llm.ImageDescriptionPrompt,
		Image:   &img,
		Purpose: llm.PurposeDescribe,
	})
	if err != nil {
		return nil, stageError(StageExtract, fmt.Errorf("describe image: %w", err))
	}

	description := strings.TrimSpace(llm.StripCodeFences(resp.Text))
	if description == "" {
		return nil, &model.ExtractionError{Reason: "empty image description"}
	}

	result, err := a.Analyze(ctx, Request{
		URL:     imageUploadURL(a.now()),
		Content: ImageContent(description),
		Type:    model.ContentImage,
	}, progress)
	if err != nil {
		return nil, err
	}

	stub := ImageIntegrityStub
	result.Verdict.Detail.Integrity = &stub
	result.LLMCalls += describer.Calls()
	return result, nil
}

func imageUploadURL(now time.Time) string {
	return fmt.Sprintf("%s%d", imageURLScheme, now.UnixMilli())
}

// IsImageUpload reports whether url names an uploaded image rather than a page
func IsImageUpload(url string) bool {
	return strings.HasPrefix(url, imageURLScheme)
}
