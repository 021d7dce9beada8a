package score

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Patterns are written lowercase and without accents; text is folded the same way before matching.

var healthTerms = []string{
	"saude", "doenca", "cancer", "tumor", "vacina", "virus", "covid", "diabetes",
	"remedio", "medicamento", "farmaco", "tratamento", "terapia", "sintoma",
	"paciente", "hospital", "infeccao", "colesterol", "pressao arterial", "obesidade",
	"alzheimer", "autismo", "imunidade", "suplemento", "health", "disease", "vaccine",
}

var scienceTerms = []string{
	"estudo", "pesquisa", "pesquisador", "cientista", "cientific", "comprovad",
	"ensaio clinico", "clinico", "universidade", "laboratorio", "artigo", "revista",
	"descoberta", "evidencia", "study", "research", "scientist",
}

var efficacyTerms = []string{
	"cura definitiva", "cura o ", "cura a ", "curar ", "elimina o ", "elimina a ",
	"100% eficaz", "100% natural", "milagros", "emagrece", "emagrecer",
	"rejuvenesce", "acaba com", "sem efeitos colaterais", "medicos odeiam",
	"remedio caseiro", "miracle cure",
}

var noPeerReviewTerms = []string{
	"sem revisao por pares", "nao foi revisado", "nao foi revisada",
	"nao passou por revisao", "ainda nao foi publicado", "ainda nao foi publicada",
	"ainda nao revisado", "preprint", "pre-print", "pre-publicacao",
	"not peer-reviewed", "not peer reviewed", "not yet peer",
}

// Fold lowercases s and strips diacritics ("Saúde" -> "saude"). A chained
// transformer keeps state, so each call builds its own.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// IsMedicalClaim reports whether the text reads as a health claim with scientific
// framing, or as product/drug efficacy marketing
func IsMedicalClaim(text string) bool {
	folded := Fold(text)
	if containsAny(folded, efficacyTerms) {
		return true
	}
	return containsAny(folded, healthTerms) && containsAny(folded, scienceTerms)
}

// AdmitsNoPeerReview reports whether the text says its findings were not peer reviewed
func AdmitsNoPeerReview(text string) bool {
	return containsAny(Fold(text), noPeerReviewTerms)
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
