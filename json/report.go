package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/watsonx"
)

type reportEnvelope struct {
	header
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	DurationMS int64     `json:"duration_ms"`
	Items      []itemDTO `json:"items"`
}

type itemDTO struct {
	Index        int      `json:"index"`
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Status       string   `json:"status"`
	Text         string   `json:"text,omitempty"`
	ModelID      string   `json:"model_id,omitempty"`
	RequestID    string   `json:"request_id,omitempty"`
	TokensUsed   int      `json:"tokens_used,omitempty"`
	QualityScore *float64 `json:"quality_score,omitempty"`
	Error        string   `json:"error,omitempty"`
	DurationMS   int64    `json:"duration_ms"`
}

const statusOK = "ok"

// storedError is a batch failure restored from disk. It keeps the message
// and whether the item was cancelled.
type storedError struct {
	msg       string
	cancelled bool
}

func (e *storedError) Error() string { return e.msg }

func (e *storedError) Is(target error) bool {
	return e.cancelled && target == watsonx.ErrCancelled
}

// MarshalReport serializes a BatchReport in v1 envelope format.
func MarshalReport(r watsonx.BatchReport) ([]byte, error) {
	env := reportEnvelope{
		header:     header{Version: version, Kind: kindReport},
		Total:      r.Total,
		Succeeded:  r.Succeeded,
		Failed:     r.Failed,
		DurationMS: r.Duration.Milliseconds(),
		Items:      make([]itemDTO, len(r.Items)),
	}
	for i, it := range r.Items {
		dto := itemDTO{
			Index:      it.Index,
			ID:         it.ID,
			Prompt:     it.Prompt,
			Status:     statusOK,
			DurationMS: it.Duration.Milliseconds(),
		}
		if it.OK() {
			dto.Text = it.Result.Text
			dto.ModelID = it.Result.ModelID
			dto.RequestID = it.Result.RequestID
			dto.TokensUsed = it.Result.TokensUsed
			dto.QualityScore = it.Result.QualityScore
		} else {
			dto.Status = it.Kind.String()
			if it.Err != nil {
				dto.Error = it.Err.Error()
			}
		}
		env.Items[i] = dto
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalReport deserializes a BatchReport from v1 envelope format.
// Restored failures match [watsonx.ErrCancelled] when they were cancelled.
func UnmarshalReport(data []byte) (watsonx.BatchReport, error) {
	if err := checkHeader(data, kindReport); err != nil {
		return watsonx.BatchReport{}, err
	}
	var env reportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return watsonx.BatchReport{}, fmt.Errorf("unmarshal report: %w", err)
	}
	items := make([]watsonx.BatchItemOutcome, len(env.Items))
	for i, dto := range env.Items {
		it := watsonx.BatchItemOutcome{
			Index:    dto.Index,
			ID:       dto.ID,
			Prompt:   dto.Prompt,
			Duration: time.Duration(dto.DurationMS) * time.Millisecond,
		}
		switch dto.Status {
		case statusOK:
			it.Kind = watsonx.FailureNone
			it.Result = watsonx.GenerationResult{
				Text:         dto.Text,
				ModelID:      dto.ModelID,
				RequestID:    dto.RequestID,
				TokensUsed:   dto.TokensUsed,
				QualityScore: dto.QualityScore,
			}
		case watsonx.FailureError.String():
			it.Kind = watsonx.FailureError
			it.Err = &storedError{msg: dto.Error}
		case watsonx.FailureCancelled.String():
			it.Kind = watsonx.FailureCancelled
			it.Err = &storedError{msg: dto.Error, cancelled: true}
		default:
			return watsonx.BatchReport{}, fmt.Errorf("item %d: unknown status: %q", i, dto.Status)
		}
		items[i] = it
	}
	return watsonx.BatchReport{
		Total:     env.Total,
		Succeeded: env.Succeeded,
		Failed:    env.Failed,
		Duration:  time.Duration(env.DurationMS) * time.Millisecond,
		Items:     items,
	}, nil
}

// SaveReport writes a BatchReport to a JSON file.
func SaveReport(path string, r watsonx.BatchReport) error {
	data, err := MarshalReport(r)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeFile(path, data)
}

// LoadReport reads a BatchReport from a JSON file.
func LoadReport(path string) (watsonx.BatchReport, error) {
	data, err := readFile(path)
	if err != nil {
		return watsonx.BatchReport{}, err
	}
	return UnmarshalReport(data)
}
