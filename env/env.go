// Package env loads client configuration from environment variables.
package env

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/fwojciec/watsonx"
)

// Generation configures the generation client.
type Generation struct {
	APIKey     string
	ProjectID  string
	APIURL     string
	IAMHost    string
	APIVersion string
	Timeout    time.Duration
	Model      string
}

type generationVars struct {
	APIKey          string `env:"WATSONX_API_KEY"`
	LegacyAPIKey    string `env:"API_KEY"`
	ProjectID       string `env:"WATSONX_PROJECT_ID"`
	LegacyProjectID string `env:"PROJECT_ID"`
	APIURL          string `env:"WATSONX_API_URL" envDefault:"https://us-south.ml.cloud.ibm.com"`
	IAMHost         string `env:"IAM_IBM_CLOUD_URL" envDefault:"iam.cloud.ibm.com"`
	APIVersion      string `env:"WATSONX_API_VERSION" envDefault:"2023-05-29"`
	TimeoutSecs     int    `env:"WATSONX_TIMEOUT_SECS" envDefault:"120"`
	Model           string `env:"WATSONX_MODEL"`
}

// Orchestrate configures the agent client.
type Orchestrate struct {
	InstanceID string
	Region     string
	APIKey     string
	IAMHost    string
	url        string
}

// BaseURL returns the WXO_URL override with its "{}" placeholder replaced
// by the instance id, or "" when no override is set.
func (o Orchestrate) BaseURL() string {
	return strings.ReplaceAll(o.url, "{}", o.InstanceID)
}

type orchestrateVars struct {
	InstanceID  string `env:"WXO_INSTANCE_ID"`
	Region      string `env:"WXO_REGION" envDefault:"us-south"`
	URL         string `env:"WXO_URL"`
	Key         string `env:"WXO_KEY"`
	FallbackKey string `env:"WATSONX_API_KEY"`
	IAMHost     string `env:"IAM_IBM_CLOUD_URL" envDefault:"iam.cloud.ibm.com"`
}

// CLI holds settings that only the command-line tool reads.
type CLI struct {
	LogLevel string `env:"WATSONX_LOG_LEVEL" envDefault:"info"`
}

// LoadGeneration reads the generation settings from the process
// environment.
func LoadGeneration() (Generation, error) { return GenerationFrom(nil) }

// GenerationFrom reads the generation settings from environ, or from the
// process environment when environ is nil.
func GenerationFrom(environ map[string]string) (Generation, error) {
	var v generationVars
	if err := parse(&v, environ); err != nil {
		return Generation{}, err
	}
	g := Generation{
		APIKey:     firstSet(v.APIKey, v.LegacyAPIKey),
		ProjectID:  firstSet(v.ProjectID, v.LegacyProjectID),
		APIURL:     strings.TrimRight(v.APIURL, "/"),
		IAMHost:    v.IAMHost,
		APIVersion: v.APIVersion,
		Timeout:    time.Duration(v.TimeoutSecs) * time.Second,
		Model:      v.Model,
	}
	if g.APIKey == "" {
		return Generation{}, fmt.Errorf("env: WATSONX_API_KEY or API_KEY must be set: %w", watsonx.ErrValidation)
	}
	if g.ProjectID == "" {
		return Generation{}, fmt.Errorf("env: WATSONX_PROJECT_ID or PROJECT_ID must be set: %w", watsonx.ErrValidation)
	}
	if v.TimeoutSecs <= 0 {
		return Generation{}, fmt.Errorf("env: WATSONX_TIMEOUT_SECS must be positive, got %d: %w", v.TimeoutSecs, watsonx.ErrValidation)
	}
	return g, nil
}

// LoadOrchestrate reads the agent settings from the process environment.
func LoadOrchestrate() (Orchestrate, error) { return OrchestrateFrom(nil) }

// OrchestrateFrom reads the agent settings from environ, or from the
// process environment when environ is nil.
func OrchestrateFrom(environ map[string]string) (Orchestrate, error) {
	var v orchestrateVars
	if err := parse(&v, environ); err != nil {
		return Orchestrate{}, err
	}
	o := Orchestrate{
		InstanceID: v.InstanceID,
		Region:     v.Region,
		APIKey:     firstSet(v.Key, v.FallbackKey),
		IAMHost:    v.IAMHost,
		url:        strings.TrimSpace(v.URL),
	}
	if o.InstanceID == "" {
		return Orchestrate{}, fmt.Errorf("env: WXO_INSTANCE_ID must be set: %w", watsonx.ErrValidation)
	}
	if o.APIKey == "" {
		return Orchestrate{}, fmt.Errorf("env: WXO_KEY or WATSONX_API_KEY must be set: %w", watsonx.ErrValidation)
	}
	return o, nil
}

// LoadCLI reads the command-line settings from the process environment.
func LoadCLI() (CLI, error) { return CLIFrom(nil) }

// CLIFrom reads the command-line settings from environ, or from the
// process environment when environ is nil.
func CLIFrom(environ map[string]string) (CLI, error) {
	var c CLI
	if err := parse(&c, environ); err != nil {
		return CLI{}, err
	}
	return c, nil
}

func parse(v any, environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(v, opts); err != nil {
		return fmt.Errorf("env: %w", err)
	}
	return nil
}

func firstSet(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
