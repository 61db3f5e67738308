package http

import (
	"sort"
	"strings"
	"unicode"

	"insurance-chat/internal/domain"
)

// Document es una entrada de la base de conocimiento en memoria.
type Document struct {
	Path string
	Text string
}

// DefaultDocuments devuelve el corpus de ejemplo de seguros.
func DefaultDocuments() []Document {
	return []Document{
		{
			Path: "data/raw/claims_process.md",
			Text: "To file a claim, report the incident within 30 days, attach photos and the police report if any, and submit the claim form through your agent or the online portal.",
		},
		{
			Path: "data/raw/auto_coverage.md",
			Text: "Auto coverage includes liability, collision and comprehensive options. Comprehensive covers theft, fire and weather damage. Collision covers damage from accidents regardless of fault.",
		},
		{
			Path: "data/raw/home_policy.md",
			Text: "The home policy covers the dwelling, personal property and additional living expenses. Flood damage requires a separate flood policy.",
		},
		{
			Path: "data/raw/premiums_and_deductibles.md",
			Text: "A higher deductible lowers your premium. Premiums are billed monthly or annually and a discount applies when bundling home and auto policies.",
		},
	}
}

const (
	maxSources     = 2
	fallbackAnswer = "I can help with filing claims, coverage options, policy information and general insurance questions. Could you give me more detail?"
)

// KnowledgeAnswerer responde por coincidencia de palabras contra el corpus.
type KnowledgeAnswerer struct {
	docs []Document
}

func NewKnowledgeAnswerer(docs []Document) *KnowledgeAnswerer {
	return &KnowledgeAnswerer{docs: docs}
}

func (k *KnowledgeAnswerer) Answer(req domain.ChatRequest) (domain.ChatResponse, error) {
	if !req.UseContext {
		return domain.ChatResponse{Response: fallbackAnswer}, nil
	}

	query := tokenize(req.Message)
	type scored struct {
		doc   Document
		score int
	}
	var hits []scored
	for _, d := range k.docs {
		words := tokenize(d.Text)
		score := 0
		for w := range query {
			if _, ok := words[w]; ok {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{doc: d, score: score})
		}
	}
	if len(hits) == 0 {
		return domain.ChatResponse{Response: fallbackAnswer}, nil
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > maxSources {
		hits = hits[:maxSources]
	}

	parts := make([]string, 0, len(hits))
	sources := make([]string, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, h.doc.Text)
		sources = append(sources, h.doc.Path)
	}
	return domain.ChatResponse{Response: strings.Join(parts, "\n\n"), Sources: sources}, nil
}

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "to": {}, "of": {}, "is": {},
	"if": {}, "do": {}, "i": {}, "my": {}, "how": {}, "what": {}, "your": {}, "for": {},
	"in": {}, "on": {}, "any": {}, "are": {}, "does": {}, "can": {},
}

func tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if _, stop := stopwords[f]; stop || len(f) < 3 {
			continue
		}
		out[f] = struct{}{}
	}
	return out
}
