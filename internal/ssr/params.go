package ssr

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// PageParams is the conventional parameter object of a page render.
type PageParams struct {
	Location string                 `json:"location"`
	Context  map[string]interface{} `json:"context"`
}

// NewPageParams creates params for the request URI location.
func NewPageParams(location string) PageParams {
	return PageParams{
		Location: location,
		Context:  map[string]interface{}{},
	}
}

// Encode serializes p to the JSON string render functions receive.
func (p PageParams) Encode() (Params, error) {
	if p.Context == nil {
		p.Context = map[string]interface{}{}
	}
	data, err := sonic.Marshal(p)
	if err != nil {
		return NoParams, fmt.Errorf("failed to encode page params: %w", err)
	}
	return StringParams(string(data)), nil
}
