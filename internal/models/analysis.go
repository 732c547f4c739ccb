package models

// Canonical category labels. Remote backends may return other strings; they are
// passed through verbatim and never validated against this pair.
const (
	CategoryProductive   = "Produtivo"
	CategoryUnproductive = "Improdutivo"
)

// Candidates lists the labels offered to remote classifiers, in prompt order.
var Candidates = []string{CategoryProductive, CategoryUnproductive}

// Provenance tags for classifications.
const (
	ClassifiedByHeuristics  = "heuristics"
	ClassifiedByOpenAI      = "openai"
	ClassifiedByHuggingFace = "huggingface-inference"
	ClassifiedByGemini      = "gemini"
)

// Provenance tags for replies.
const (
	ReplyByOpenAI   = "openai"
	ReplyByGemini   = "gemini"
	ReplyByTemplate = "template"
)

// Classification is the outcome of one classifier backend
type Classification struct {
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
	ClassifiedBy string  `json:"classified_by"`
}

// Reply is a suggested answer to the analyzed email
type Reply struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

// Analysis is the JSON body returned by POST /api/analyze
type Analysis struct {
	Category       string  `json:"category"`
	Confidence     float64 `json:"confidence"`
	SuggestedReply string  `json:"suggested_reply"`
	ReplyProvider  string  `json:"reply_provider"`
	ClassifiedBy   string  `json:"classified_by"`
	Tokens         int     `json:"tokens"`
	Preview        string  `json:"preview"`
}

// ProviderInfo describes one configured backend for GET /api/providers.
type ProviderInfo struct {
	Name       string `json:"name"`
	Model      string `json:"model,omitempty"`
	Configured bool   `json:"configured"`
}
