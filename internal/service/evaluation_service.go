package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"insurance-chat/internal/domain"
	"insurance-chat/internal/llm"
)

var ErrEvaluationNotConfigured = errors.New("evaluation service not configured")

// EvalCase es una pregunta con su respuesta de referencia.
type EvalCase struct {
	Category    string `json:"category"`
	Question    string `json:"question"`
	GroundTruth string `json:"ground_truth"`
}

// EvalResult guarda la respuesta obtenida y sus métricas.
type EvalResult struct {
	EvalCase
	Response         string        `json:"model_response"`
	Sources          []string      `json:"sources,omitempty"`
	WordOverlapRatio float64       `json:"word_overlap_ratio"`
	ResponseProvided bool          `json:"response_provided"`
	Latency          time.Duration `json:"latency_ns"`
	Error            string        `json:"error,omitempty"`
}

// EvalSummary resume una corrida.
type EvalSummary struct {
	Timestamp           time.Time `json:"timestamp"`
	TotalQuestions      int       `json:"total_questions"`
	SuccessfulResponses int       `json:"successful_responses"`
	SuccessRate         float64   `json:"success_rate"`
	AverageWordOverlap  float64   `json:"average_word_overlap"`
	WithSources         int       `json:"with_sources"`
	UseContext          bool      `json:"use_context"`
}

type EvalReport struct {
	Summary EvalSummary  `json:"summary"`
	Results []EvalResult `json:"results"`
}

// DefaultEvalCases es el set de preguntas de referencia.
func DefaultEvalCases() []EvalCase {
	return []EvalCase{
		{
			Category:    "auto",
			Question:    "What does liability insurance cover?",
			GroundTruth: "Liability insurance covers costs if you're found legally responsible for someone else's injury or property damage.",
		},
		{
			Category:    "auto",
			Question:    "How do I file a car insurance claim?",
			GroundTruth: "Contact your insurance provider after the accident, provide time, location, parties involved and photos, and get a police report if required.",
		},
		{
			Category:    "auto",
			Question:    "What is comprehensive coverage?",
			GroundTruth: "Comprehensive coverage protects against non-collision damage like theft, vandalism, weather damage or hitting an animal.",
		},
		{
			Category:    "home",
			Question:    "Is flood damage covered under homeowners insurance?",
			GroundTruth: "Standard homeowners policies usually do not cover flood damage. You need a separate flood insurance policy.",
		},
		{
			Category:    "home",
			Question:    "What is a deductible in homeowners insurance?",
			GroundTruth: "A deductible is the amount you pay out of pocket before insurance pays. A higher deductible usually lowers the premium.",
		},
		{
			Category:    "general",
			Question:    "What is an insurance premium?",
			GroundTruth: "A premium is the amount you pay for your insurance policy, billed monthly or annually.",
		},
		{
			Category:    "general",
			Question:    "What should I do after an accident?",
			GroundTruth: "Make sure everyone is safe, call the police if needed, document the scene with photos and report the claim to your insurer.",
		},
	}
}

// EvaluationService corre preguntas de referencia contra el endpoint /chat.
type EvaluationService struct {
	client llm.ChatClient
	logger *zap.Logger
	now    func() time.Time
}

func NewEvaluationService(client llm.ChatClient, logger *zap.Logger) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{client: client, logger: logger, now: time.Now}
}

// Run evalúa los primeros sampleSize casos (todos si sampleSize <= 0). Las
// fallas por pregunta quedan en el resultado; Run solo falla si el contexto
// se cancela o el servicio no está configurado.
func (s *EvaluationService) Run(ctx context.Context, cases []EvalCase, sampleSize int, useContext bool) (EvalReport, error) {
	if s == nil || s.client == nil {
		return EvalReport{}, ErrEvaluationNotConfigured
	}
	if sampleSize > 0 && sampleSize < len(cases) {
		cases = cases[:sampleSize]
	}

	report := EvalReport{Results: make([]EvalResult, 0, len(cases))}
	var overlapSum float64
	for i, c := range cases {
		if err := ctx.Err(); err != nil {
			return EvalReport{}, err
		}
		s.logger.Info("evaluating question", zap.Int("index", i+1), zap.Int("total", len(cases)), zap.String("category", c.Category))

		start := s.now()
		resp, err := s.client.Chat(ctx, domain.ChatRequest{Message: c.Question, UseContext: useContext})
		res := EvalResult{EvalCase: c, Latency: s.now().Sub(start)}
		if err != nil {
			res.Error = err.Error()
			report.Results = append(report.Results, res)
			continue
		}

		res.Response = resp.Response
		res.Sources = resp.Sources
		res.ResponseProvided = strings.TrimSpace(resp.Response) != ""
		res.WordOverlapRatio = WordOverlapRatio(c.GroundTruth, resp.Response)
		overlapSum += res.WordOverlapRatio

		report.Summary.SuccessfulResponses++
		if len(resp.Sources) > 0 {
			report.Summary.WithSources++
		}
		report.Results = append(report.Results, res)
	}

	report.Summary.Timestamp = s.now().UTC()
	report.Summary.TotalQuestions = len(report.Results)
	report.Summary.UseContext = useContext
	if n := report.Summary.TotalQuestions; n > 0 {
		report.Summary.SuccessRate = float64(report.Summary.SuccessfulResponses) / float64(n)
		report.Summary.AverageWordOverlap = overlapSum / float64(n)
	}
	return report, nil
}

// WordOverlapRatio es la fracción de palabras distintas de la referencia que
// aparecen en la respuesta, comparando en minúsculas y separando por espacios.
func WordOverlapRatio(groundTruth, response string) float64 {
	truth := wordSet(groundTruth)
	if len(truth) == 0 {
		return 0
	}
	got := wordSet(response)
	common := 0
	for w := range truth {
		if _, ok := got[w]; ok {
			common++
		}
	}
	return float64(common) / float64(len(truth))
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = struct{}{}
	}
	return out
}
