package llm

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/truthcheck/internal/model"
)

// Prompts are written in Portuguese: the product targets Brazilian news and the
// verdict schema field names are Portuguese.

// VerdictFormat is the JSON schema the synthesizer demands
const VerdictFormat = `{
  "pontuacaoGeral": <número de 0 a 100>,
  "resumoGeral": "<resumo conciso da análise>",
  "analiseDetalhada": {
    "fatos": { "score": <número>, "texto": "<análise dos fatos>" },
    "titulo": { "score": <número>, "texto": "<análise do título>" },
    "fontes": { "score": <número>, "texto": "<análise das fontes>" }
  },
  "fontesVerificadas": {
    "confirmam": [ { "url": "<url>" } ],
    "contestam": [ { "url": "<url>" } ]
  }
}`

// ImageDescriptionPrompt asks a vision model to describe an uploaded image
const ImageDescriptionPrompt = "Descreva detalhadamente o que você vê nesta imagem. Foque em elementos visuais, pessoas, objetos, texto presente, contexto e qualquer informação relevante que possa ajudar a verificar a veracidade desta imagem como se fosse uma notícia."

// ExtractionPrompt asks for the structured {entidade, alegacao, data} triple
func ExtractionPrompt(content string, budget int) string {
	return fmt.Sprintf(`Analise a notícia e retorne um objeto JSON com "entidade" (pessoa/organização central), "alegacao" (alegação principal, curta e pesquisável) e "data" (data do evento no formato AAAA-MM-DD, ou "" se não houver). Texto: "%s"`,
		Truncate(content, budget))
}

// EntityFallbackPrompt asks for the central entity as plain text
func EntityFallbackPrompt(content string, budget int) string {
	return fmt.Sprintf(`Qual é a pessoa ou organização central? 1 a 3 palavras. Responda apenas com o nome. Texto: "%s"`,
		Truncate(content, budget))
}

// ClaimFallbackPrompt asks for the central claim as plain text
func ClaimFallbackPrompt(content string, budget int, maxWords int) string {
	return fmt.Sprintf(`Extraia a alegação central pesquisável em até %d palavras. Responda apenas com a alegação: "%s"`,
		maxWords, Truncate(content, budget))
}

// ReanalysisKind distinguishes the two escalation flavors
type ReanalysisKind string

const (
	ReanalysisSuspicion    ReanalysisKind = "suspicion"
	ReanalysisConfirmation ReanalysisKind = "confirmation"
)

// SynthesisInput carries everything embedded in a verdict prompt
type SynthesisInput struct {
	Today      time.Time
	Title      string
	Body       string
	BodyBudget int
	Evidence   model.EvidenceSet
	Weights    model.Weights

	// Term and Kind are set for the re-analysis prompt after escalation
	Term string
	Kind ReanalysisKind
}

// SynthesisPrompt builds the grounding prompt for a verdict
func SynthesisPrompt(in SynthesisInput) string {
	evidence := EvidenceJSON(in.Evidence)
	facts, sources, title := in.Weights.Percent()
	body := Truncate(in.Body, in.BodyBudget)

	header := "Você é um especialista em checagem de fatos. Analise a notícia com base nas fontes externas."
	evidenceLabel := "FONTES EXTERNAS"
	if in.Term != "" {
		switch in.Kind {
		case ReanalysisConfirmation:
			header = fmt.Sprintf("RECONFIRMAÇÃO (fato central investigado: %q):\nUma nova busca foi feita sobre o fato central. Reavalie a notícia considerando TODAS as fontes, as iniciais e as novas.", in.Term)
		default:
			header = fmt.Sprintf("REAVALIAÇÃO (ponto investigado: %q):\nCom base nas novas fontes, refine a análise considerando TODAS as fontes, as iniciais e as novas.", in.Term)
		}
		evidenceLabel = "FONTES ATUALIZADAS"
	}

	return fmt.Sprintf(`%s

- A data atual é %s. Eventos anteriores a essa data podem ser verdadeiros mesmo que antigos; não os trate como falsos por serem passados.
- Calcule a "pontuacaoGeral" com base na veracidade dos fatos (%d%%), na qualidade das fontes (%d%%) e no sensacionalismo do título (%d%%). Se o resultado passar de 95, arredonde para 100.
- O score de "fontes" deve refletir se o CONTEÚDO das fontes confirma ou contradiz a notícia, não a reputação do domínio. Se os trechos das fontes contradizem a notícia, esse score deve ficar abaixo de 30.
- Preencha "fontesVerificadas" APENAS com URLs presentes nas fontes fornecidas abaixo.
- Se não houver fontes externas, diga que as evidências são insuficientes; não afirme que a notícia é falsa por falta de fontes.
- O resumo deve ser curto e direto.

%s:
%s

NOTÍCIA:
- Título: %q
- Conteúdo: %q

REGRAS: Responda APENAS com um objeto JSON válido no seguinte formato:
%s`,
		header, FormatDatePtBR(in.Today), facts, sources, title,
		evidenceLabel, evidence, in.Title, body, VerdictFormat)
}

// SuspicionPrompt asks for the most doubtful searchable term. lowScore selects the
// low-probability framing; otherwise the prompt points at the weak source coverage.
func SuspicionPrompt(title, body string, score int, lowScore bool, maxWords, budget int) string {
	opening := fmt.Sprintf("A análise anterior desta notícia indicou baixa probabilidade (%d%%) de ser verdadeira.", score)
	if !lowScore {
		opening = fmt.Sprintf("A análise anterior desta notícia estimou %d%% de probabilidade de ser verdadeira, mas as fontes encontradas foram escassas ou contraditórias.", score)
	}
	return fmt.Sprintf(`%s
Notícia original:
- Título: %q
- Conteúdo: %q

Identifique e retorne APENAS o principal termo factual duvidoso DENTRO da notícia, o ponto mais frágil ou questionável. O termo deve ser curto (máximo %d palavras) e pesquisável.
Se a suspeita for geral ou não houver um termo específico, retorne "N/A".`,
		opening, title, Truncate(body, budget), maxWords)
}

// ConfirmationPrompt asks for the most central searchable fact of a high-confidence verdict
func ConfirmationPrompt(title, body string, score, maxWords, budget int) string {
	return fmt.Sprintf(`A análise anterior desta notícia indicou probabilidade muito alta (%d%%) de ser verdadeira.
Notícia original:
- Título: %q
- Conteúdo: %q

Identifique e retorne APENAS o principal fato DENTRO da notícia que você considera o MAIS CENTRAL para a sua veracidade. O termo deve ser curto (máximo %d palavras) e pesquisável para encontrar fontes de suporte adicionais.
Se não houver um fato específico claramente destacável, retorne "N/A".`,
		score, title, Truncate(body, budget), maxWords)
}

// EvidenceJSON renders the evidence set exactly as the model sees it
func EvidenceJSON(set model.EvidenceSet) string {
	if set.Affirmative == nil {
		set.Affirmative = []model.EvidenceItem{}
	}
	if set.Skeptical == nil {
		set.Skeptical = []model.EvidenceItem{}
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return `{"affirmativeResults": [], "skepticalResults": []}`
	}
	return string(data)
}

var monthsPtBR = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// FormatDatePtBR renders a date in Brazilian long form ("05 de março de 2024")
func FormatDatePtBR(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), monthsPtBR[t.Month()-1], t.Year())
}
