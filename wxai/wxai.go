// Package wxai implements [watsonx.Generator] for the watsonx.ai text
// generation API.
package wxai

const (
	defaultBaseURL    = "https://us-south.ml.cloud.ibm.com"
	defaultAPIVersion = "2023-05-29"

	generationPath       = "/ml/v1/text/generation"
	generationStreamPath = "/ml/v1/text/generation_stream"
	modelSpecsPath       = "/ml/v1/foundation_model_specs"

	transactionHeader = "X-Global-Transaction-Id"
)

// API request types.

type apiRequest struct {
	Input      string        `json:"input"`
	Parameters apiParameters `json:"parameters"`
	ModelID    string        `json:"model_id"`
	ProjectID  string        `json:"project_id"`
}

type apiParameters struct {
	DecodingMethod    string   `json:"decoding_method"`
	MaxNewTokens      int      `json:"max_new_tokens"`
	MinNewTokens      int      `json:"min_new_tokens,omitempty"`
	TopK              int      `json:"top_k"`
	TopP              float64  `json:"top_p"`
	RepetitionPenalty float64  `json:"repetition_penalty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	StopSequences     []string `json:"stop_sequences,omitempty"`
}

// API response types.

type apiResponse struct {
	ModelID string      `json:"model_id"`
	Results []apiResult `json:"results"`
}

type apiResult struct {
	GeneratedText       string `json:"generated_text"`
	GeneratedTokenCount int    `json:"generated_token_count"`
	InputTokenCount     int    `json:"input_token_count"`
	StopReason          string `json:"stop_reason"`
}

type apiModel struct {
	ModelID          string     `json:"model_id"`
	Label            string     `json:"label"`
	Provider         string     `json:"provider"`
	ShortDescription string     `json:"short_description"`
	Functions        []apiIDRef `json:"functions"`
	Lifecycle        []apiIDRef `json:"lifecycle"`
}

type apiIDRef struct {
	ID string `json:"id"`
}

type apiErrorResponse struct {
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	StatusCode int `json:"status_code"`
}
