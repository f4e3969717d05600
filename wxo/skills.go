package wxo

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/shape"
)

// ListSkills returns the skills catalog. Instances without one return none.
func (c *Client) ListSkills(ctx context.Context) ([]watsonx.Skill, error) {
	return list[watsonx.Skill](ctx, c, http.MethodGet, "/skills", nil, []string{"skills"}, shape.EmptyOk)
}

// GetSkill returns one skill.
func (c *Client) GetSkill(ctx context.Context, skillID string) (watsonx.Skill, error) {
	var s watsonx.Skill
	err := c.call(ctx, http.MethodGet, "/skills/"+url.PathEscape(skillID), nil, &s)
	return s, err
}
