package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/truthcheck/internal/model"
)

// Renderer writes reports as JSON, Markdown and a terminal summary
type Renderer struct {
	includeSignals bool
}

// NewRenderer creates a renderer. includeSignals adds the recalibration trace to Markdown.
func NewRenderer(includeSignals bool) *Renderer {
	return &Renderer{includeSignals: includeSignals}
}

// RenderJSON writes the report as indented JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder
	r.WriteMarkdown(&b, report)
	return writeFile(path, []byte(b.String()))
}

// WriteMarkdown renders the Markdown report into w
func (r *Renderer) WriteMarkdown(w io.Writer, report *model.Report) {
	v := report.Verdict
	score := int(v.OverallScore)

	fmt.Fprintf(w, "# %s\n\n", markdownTitle(report))
	if report.URL != "" && !IsImageUpload(report.URL) {
		fmt.Fprintf(w, "**Fonte:** %s\n\n", report.URL)
	}
	fmt.Fprintf(w, "**Pontuação:** %d/100 (%s)\n\n", score, model.Confidence(score))
	if v.Degraded {
		fmt.Fprintf(w, "> ⚠️ A resposta do modelo não pôde ser interpretada; resultado neutro.\n\n")
	}
	fmt.Fprintf(w, "## Resumo\n\n%s\n\n", v.Summary)

	if !v.Detail.IsEmpty() {
		fmt.Fprintf(w, "## Análise detalhada\n\n")
		fmt.Fprintf(w, "| Dimensão | Score | Análise |\n|---|---|---|\n")
		writeRow(w, "Fatos", v.Detail.Facts)
		writeRow(w, "Fontes", v.Detail.Sources)
		writeRow(w, "Título", v.Detail.Title)
		if v.Detail.Integrity != nil {
			writeRow(w, "Integridade", *v.Detail.Integrity)
		}
		fmt.Fprintln(w)
	}

	writeSources(w, "Fontes que confirmam", v.Sources.Confirming)
	writeSources(w, "Fontes que contestam", v.Sources.Contesting)

	fmt.Fprintf(w, "## Alegação investigada\n\n- Entidade: %s\n- Alegação: %s\n", report.Claim.Entity, report.Claim.Claim)
	if report.Claim.Window != nil {
		fmt.Fprintf(w, "- Janela de datas: %s\n", report.Claim.Window.String())
	}
	fmt.Fprintln(w)

	if report.Escalation.Escalated {
		fmt.Fprintf(w, "## Reavaliação\n\n- Tipo: %s\n- Motivos: %s\n- Termo: %s\n- Pontuação preliminar: %d\n- Novas fontes: %d\n\n",
			report.Escalation.Kind, strings.Join(report.Escalation.Reasons, ", "), report.Escalation.Term,
			report.Escalation.PreliminaryScore, report.Escalation.NewEvidence)
	}

	if r.includeSignals && len(report.Signals) > 0 {
		fmt.Fprintf(w, "## Recalibração\n\n")
		for _, s := range report.Signals {
			fmt.Fprintf(w, "- [%s] %s: %s\n", s.Severity, s.Type, s.Description)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "---\n_%d chamadas ao modelo, %d buscas. Análise em %s._\n",
		report.Usage.LLMCalls, report.Usage.SearchCalls, report.AnalyzedAt.Format("2006-01-02 15:04 MST"))
}

// RenderSummary prints a short terminal summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	v := report.Verdict
	score := int(v.OverallScore)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "📰 %s\n", markdownTitle(report))
	fmt.Fprintf(w, "%s Pontuação: %d/100 (%s)\n", scoreIcon(score), score, model.Confidence(score))
	if v.Degraded {
		fmt.Fprintln(w, "⚠️  Resultado neutro: resposta do modelo ilegível")
	}
	fmt.Fprintf(w, "   %s\n", v.Summary)
	fmt.Fprintf(w, "   Fontes: %d confirmam, %d contestam\n", len(v.Sources.Confirming), len(v.Sources.Contesting))
	if report.Escalation.Escalated {
		fmt.Fprintf(w, "   Reavaliado (%s): %q\n", strings.Join(report.Escalation.Reasons, ", "), report.Escalation.Term)
	}
	fmt.Fprintln(w)
}

func markdownTitle(report *model.Report) string {
	if report.Title != "" {
		return report.Title
	}
	return "Análise de notícia"
}

func writeRow(w io.Writer, name string, s model.SubScore) {
	text := strings.ReplaceAll(s.Text, "|", "\\|")
	text = strings.ReplaceAll(text, "\n", " ")
	fmt.Fprintf(w, "| %s | %d | %s |\n", name, int(s.Score), text)
}

func writeSources(w io.Writer, heading string, refs []model.SourceRef) {
	if len(refs) == 0 {
		return
	}
	fmt.Fprintf(w, "## %s\n\n", heading)
	for _, ref := range refs {
		fmt.Fprintf(w, "- %s\n", ref.URL)
	}
	fmt.Fprintln(w)
}

func scoreIcon(score int) string {
	switch model.Confidence(score) {
	case "high":
		return "✅"
	case "medium":
		return "🟡"
	default:
		return "❌"
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
