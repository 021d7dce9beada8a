package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ppiankov/truthcheck/internal/llm"
	"github.com/ppiankov/truthcheck/internal/model"
)

// fakeProvider replays queued replies per call purpose
type fakeProvider struct {
	mu       sync.Mutex
	replies  map[string][]string
	errs     map[string]error
	calls    []llm.GenerateRequest
	noImages bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{replies: map[string][]string{}, errs: map[string]error{}}
}

func (p *fakeProvider) on(purpose string, replies ...string) *fakeProvider {
	p.replies[purpose] = append(p.replies[purpose], replies...)
	return p
}

func (p *fakeProvider) Name() string                         { return "fake" }
func (p *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

func (p *fakeProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, req)
	if req.Image != nil && p.noImages {
		return nil, llm.ErrImageUnsupported
	}
	if err := p.errs[req.Purpose]; err != nil {
		return nil, err
	}
	queue := p.replies[req.Purpose]
	if len(queue) == 0 {
		return &llm.GenerateResponse{Text: ""}, nil
	}
	reply := queue[0]
	if len(queue) > 1 {
		p.replies[req.Purpose] = queue[1:]
	}
	return &llm.GenerateResponse{Text: reply}, nil
}

func (p *fakeProvider) count(purpose string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c.Purpose == purpose {
			n++
		}
	}
	return n
}

type searchCall struct {
	query  string
	window *model.DateRange
}

// fakeSearcher returns canned evidence per query
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string]model.EvidenceSet
	err     error
	calls   []searchCall
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{results: map[string]model.EvidenceSet{}}
}

func (s *fakeSearcher) Search(ctx context.Context, query string, window *model.DateRange) (model.EvidenceSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, searchCall{query: query, window: window})
	if s.err != nil {
		return model.EvidenceSet{}, s.err
	}
	return s.results[query], nil
}

func item(link string, trusted bool) model.EvidenceItem {
	return model.EvidenceItem{Title: "t " + link, Link: link, Snippet: "s", IsTrusted: trusted}
}

func claimJSON(entity, claim, date string) string {
	data, _ := json.Marshal(map[string]string{"entidade": entity, "alegacao": claim, "data": date})
	return string(data)
}

// verdictJSON renders a model reply with equal sub-scores
func verdictJSON(score int, confirming, contesting []string) string {
	refs := func(urls []string) []map[string]string {
		out := []map[string]string{}
		for _, u := range urls {
			out = append(out, map[string]string{"url": u})
		}
		return out
	}
	data, _ := json.Marshal(map[string]interface{}{
		"pontuacaoGeral": score,
		"resumoGeral":    fmt.Sprintf("resumo %d", score),
		"analiseDetalhada": map[string]interface{}{
			"fatos":  map[string]interface{}{"score": score, "texto": "fatos"},
			"titulo": map[string]interface{}{"score": score, "texto": "titulo"},
			"fontes": map[string]interface{}{"score": score, "texto": "fontes"},
		},
		"fontesVerificadas": map[string]interface{}{
			"confirmam": refs(confirming),
			"contestam": refs(contesting),
		},
	})
	return "```json\n" + string(data) + "\n```"
}

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestAnalyzer(provider llm.Provider, searcher Searcher) *Analyzer {
	return newTestAnalyzerWith(model.DefaultConfig(), provider, searcher)
}

func newTestAnalyzerWith(cfg *model.Config, provider llm.Provider, searcher Searcher) *Analyzer {
	return NewAnalyzer(cfg, provider, searcher, Options{Now: func() time.Time { return fixedNow }})
}
