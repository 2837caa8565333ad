package llm

// chatMessage is a single OpenAI Chat Completions message.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the wire shape for POST /chat/completions. Seed
// is only sent when non-zero so deterministic replay is opt-in per call.
type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	Seed           *int           `json:"seed,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateRequest is the document-generation pipeline's view of a chat
// completion call.
type GenerateRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
	Seed         int
	// SchemaName and Schema, when both set, request a JSON Schema
	// structured output via response_format; without them the model
	// returns free-form text.
	SchemaName string
	Schema     map[string]any
}

// GenerateResult is what a generation pipeline needs from a completed call.
type GenerateResult struct {
	Content          string
	TokensUsed       int
	GenerationTimeMS int
}
