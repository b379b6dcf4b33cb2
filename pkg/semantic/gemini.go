package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/agentstation/crossmap/pkg/errors"
	"github.com/agentstation/crossmap/pkg/logging"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// defaultTimeout bounds one batch call. The join keeps going without the
// suggestions if the service is slower than this.
const defaultTimeout = 60 * time.Second

// Gemini matches query strings against references with one batched Gemini
// call. It holds no connection state; the client is created per call so a
// revoked credential shows up immediately.
type Gemini struct {
	apiKey  string
	model   string
	timeout time.Duration
}

// NewGemini returns a Gemini matcher. An empty model selects DefaultModel.
// An empty API key is not an error; such a matcher simply never suggests.
func NewGemini(apiKey, model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{apiKey: apiKey, model: model, timeout: defaultTimeout}
}

// Match implements Matcher. Any failure, from a missing credential to a
// malformed response, degrades to no-suggestion answers.
func (g *Gemini) Match(ctx context.Context, references, queries []string) []Suggestion {
	out := make([]Suggestion, len(queries))
	for i := range out {
		out[i] = None()
	}
	if len(queries) == 0 || len(references) == 0 {
		return out
	}

	log := logging.Ctx(ctx)
	if g.apiKey == "" {
		log.Debug().
			Err(errors.NewAuthenticationError("gemini", "api_key", "no API key configured")).
			Msg("semantic matcher has no API key, skipping")
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  g.apiKey,
	})
	if err != nil {
		log.Warn().Err(err).Msg("semantic matcher client creation failed")
		return out
	}

	resp, err := client.Models.GenerateContent(ctx, g.model,
		genai.Text(buildPrompt(references, queries)),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		log.Warn().Err(classifyCallError(ctx, err)).Str("model", g.model).Msg("semantic matcher call failed")
		return out
	}

	answers, err := parseAnswers(resp.Text(), len(references), len(queries))
	if err != nil {
		log.Warn().Err(err).Msg("semantic matcher returned malformed response")
		return out
	}
	for q, s := range answers {
		out[q] = s
	}
	return out
}

// classifyCallError folds a failed service call into the error taxonomy:
// an expired deadline reports as a timeout, anything else as an API error.
func classifyCallError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %v", errors.ErrTimeout, err)
	}
	return errors.WrapAPI("gemini", 0, err)
}

func buildPrompt(references, queries []string) string {
	var b strings.Builder
	b.WriteString("You match query strings to the most similar reference string.\n")
	b.WriteString("References:\n")
	for i, r := range references {
		fmt.Fprintf(&b, "%d: %s\n", i, r)
	}
	b.WriteString("Queries:\n")
	for i, q := range queries {
		fmt.Fprintf(&b, "%d: %s\n", i, q)
	}
	b.WriteString(`For each query, pick the best matching reference, or skip the query if nothing plausibly matches. Respond with a JSON array of objects {"query": <query index>, "reference": <reference index>, "confidence": "HIGH"|"MEDIUM"|"LOW"}.`)
	return b.String()
}

type geminiAnswer struct {
	Query      int    `json:"query"`
	Reference  int    `json:"reference"`
	Confidence string `json:"confidence"`
}

// parseAnswers decodes the model's JSON, dropping answers that are out of
// range or carry an unknown confidence label. Code fences around the JSON
// are tolerated.
func parseAnswers(text string, refs, queries int) (map[int]Suggestion, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var answers []geminiAnswer
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &answers); err != nil {
		return nil, err
	}

	out := make(map[int]Suggestion, len(answers))
	for _, a := range answers {
		if a.Query < 0 || a.Query >= queries || a.Reference < 0 || a.Reference >= refs {
			continue
		}
		var c Confidence
		switch strings.ToUpper(a.Confidence) {
		case string(ConfidenceHigh):
			c = ConfidenceHigh
		case string(ConfidenceMedium):
			c = ConfidenceMedium
		case string(ConfidenceLow):
			c = ConfidenceLow
		default:
			continue
		}
		out[a.Query] = Suggestion{Reference: a.Reference, Confidence: c}
	}
	return out, nil
}
