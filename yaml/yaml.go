// Package yaml reads batch generation files.
//
// A batch file is either a bare list of units or a mapping with a "units"
// list and optional "defaults" applied to every unit:
//
//	defaults:
//	  model: ibm/granite-3-3-8b-instruct
//	  max_tokens: 512
//	units:
//	  - id: summary
//	    prompt: Summarize the release notes.
//	  - id: haiku
//	    prompt: Write a haiku about Go.
//	    config:
//	      decoding: sample
//	      temperature: 0.9
//	  - A unit can also be a bare prompt string.
package yaml

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/batch"
	"gopkg.in/yaml.v3"
)

type fileDTO struct {
	Defaults *configDTO `yaml:"defaults"`
	Units    []unitDTO  `yaml:"units"`
}

type unitDTO struct {
	ID     string     `yaml:"id"`
	Prompt string     `yaml:"prompt"`
	Config *configDTO `yaml:"config"`
}

// UnmarshalYAML accepts a unit written as a bare prompt string.
func (u *unitDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		u.Prompt = node.Value
		return nil
	}
	type plain unitDTO
	return node.Decode((*plain)(u))
}

type configDTO struct {
	Model             string        `yaml:"model"`
	Decoding          string        `yaml:"decoding"`
	MaxTokens         int           `yaml:"max_tokens"`
	MinTokens         int           `yaml:"min_tokens"`
	TopK              int           `yaml:"top_k"`
	TopP              float64       `yaml:"top_p"`
	RepetitionPenalty float64       `yaml:"repetition_penalty"`
	Temperature       *float64      `yaml:"temperature"`
	Stop              []string      `yaml:"stop"`
	Timeout           time.Duration `yaml:"timeout"`
}

func (c configDTO) config() watsonx.GenerationConfig {
	return watsonx.GenerationConfig{
		ModelID:           c.Model,
		DecodingMethod:    c.Decoding,
		MaxTokens:         c.MaxTokens,
		MinTokens:         c.MinTokens,
		TopK:              c.TopK,
		TopP:              c.TopP,
		RepetitionPenalty: c.RepetitionPenalty,
		Temperature:       c.Temperature,
		StopSequences:     c.Stop,
		Timeout:           c.Timeout,
	}
}

// over fills the zero fields of c from d.
func (c configDTO) over(d configDTO) configDTO {
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Decoding == "" {
		c.Decoding = d.Decoding
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.MinTokens == 0 {
		c.MinTokens = d.MinTokens
	}
	if c.TopK == 0 {
		c.TopK = d.TopK
	}
	if c.TopP == 0 {
		c.TopP = d.TopP
	}
	if c.RepetitionPenalty == 0 {
		c.RepetitionPenalty = d.RepetitionPenalty
	}
	if c.Temperature == nil {
		c.Temperature = d.Temperature
	}
	if c.Stop == nil {
		c.Stop = d.Stop
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	return c
}

// ParseUnits decodes a batch file. Units without an id are named by their
// position, as the batch executor would name them.
func ParseUnits(data []byte) ([]watsonx.BatchUnit, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse batch file: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("empty batch file: %w", watsonx.ErrValidation)
	}

	var file fileDTO
	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&file.Units); err != nil {
			return nil, fmt.Errorf("decode units: %w", err)
		}
	case yaml.MappingNode:
		if err := doc.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode batch file: %w", err)
		}
	default:
		return nil, fmt.Errorf("batch file must be a list or a mapping with units: %w", watsonx.ErrValidation)
	}
	return buildUnits(file)
}

func buildUnits(file fileDTO) ([]watsonx.BatchUnit, error) {
	units := make([]watsonx.BatchUnit, 0, len(file.Units))
	seen := make(map[string]int, len(file.Units))
	for i, dto := range file.Units {
		u := watsonx.BatchUnit{ID: strings.TrimSpace(dto.ID), Prompt: dto.Prompt}
		u.ID = batch.UnitID(u, i)
		if strings.TrimSpace(u.Prompt) == "" {
			return nil, fmt.Errorf("unit %q: empty prompt: %w", u.ID, watsonx.ErrValidation)
		}
		if prev, ok := seen[u.ID]; ok {
			return nil, fmt.Errorf("unit %q: duplicate id (also unit %d): %w", u.ID, prev, watsonx.ErrValidation)
		}
		seen[u.ID] = i

		var cfg *configDTO
		switch {
		case dto.Config != nil && file.Defaults != nil:
			merged := dto.Config.over(*file.Defaults)
			cfg = &merged
		case dto.Config != nil:
			cfg = dto.Config
		case file.Defaults != nil:
			cfg = file.Defaults
		}
		if cfg != nil {
			c := cfg.config()
			if err := c.Validate(); err != nil {
				return nil, fmt.Errorf("unit %q: %w", u.ID, err)
			}
			u.Config = &c
		}
		units = append(units, u)
	}
	return units, nil
}

// LoadUnits reads and decodes a batch file.
func LoadUnits(path string) ([]watsonx.BatchUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return ParseUnits(data)
}
