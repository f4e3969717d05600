package watsonx

// Model IDs known to the generation service.
const (
	ModelGranite4HSmall        = "ibm/granite-4-h-small"
	ModelGranite33_8BInstruct  = "ibm/granite-3-3-8b-instruct"
	ModelGranite32_8BInstruct  = "ibm/granite-3-2-8b-instruct"
	ModelGranite3_8BInstruct   = "ibm/granite-3-8b-instruct"
	ModelGranite8BCodeInstruct = "ibm/granite-8b-code-instruct"
	ModelGraniteGuardian3_8B   = "ibm/granite-guardian-3-8b"
	ModelLlama33_70BInstruct   = "meta-llama/llama-3-3-70b-instruct"
	ModelLlama3_405BInstruct   = "meta-llama/llama-3-405b-instruct"
	ModelLlama4Maverick        = "meta-llama/llama-4-maverick-17b-128e-instruct-fp8"
	ModelMistralMedium         = "mistralai/mistral-medium-2505"
	ModelMistralSmall31        = "mistralai/mistral-small-3-1-24b-instruct-2503"
	ModelGPTOSS120B            = "openai/gpt-oss-120b"
)

// Generation defaults and limits.
const (
	DefaultModel     = ModelGranite4HSmall
	DefaultMaxTokens = 8192
	QuickMaxTokens   = 2048
	MaxTokensLimit   = 131072
)

// ModelInfo describes one foundation model offered by the service.
type ModelInfo struct {
	ID               string   `json:"model_id"`
	Label            string   `json:"label"`
	Provider         string   `json:"provider"`
	ShortDescription string   `json:"short_description"`
	Functions        []string `json:"-"`
	Lifecycle        []string `json:"-"`
}

// Available reports whether the model has not been withdrawn.
func (m ModelInfo) Available() bool {
	for _, l := range m.Lifecycle {
		if l == "withdrawn" {
			return false
		}
	}
	return true
}

// Supports reports whether the model lists function fn, e.g. "text_generation".
func (m ModelInfo) Supports(fn string) bool {
	for _, f := range m.Functions {
		if f == fn {
			return true
		}
	}
	return false
}
