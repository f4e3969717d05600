package wxo

import (
	"context"
	"net/http"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/shape"
)

// SendBatchMessages submits several messages in one request. Instances
// without the batch route return no results.
func (c *Client) SendBatchMessages(ctx context.Context, msgs []watsonx.BatchMessage) ([]watsonx.BatchMessageResult, error) {
	payload := batchPayload{Messages: make([]batchItem, len(msgs))}
	for i, m := range msgs {
		payload.Messages[i] = batchItem{
			AgentID:  m.AgentID,
			Message:  chatMessage{Role: string(watsonx.RoleUser), Content: m.Message},
			ThreadID: m.ThreadID,
			Context:  map[string]any{},
		}
	}
	return list[watsonx.BatchMessageResult](ctx, c, http.MethodPost, "/batch/messages", payload, []string{"responses"}, shape.EmptyOk)
}
