package analysis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// RawResponse is the untouched answer of the analysis endpoint.
type RawResponse struct {
	Result string `json:"result" mapstructure:"result"`
}

// DecodeResponse reads the {"result": "..."} envelope. The result must be a
// string; anything else is an error.
func DecodeResponse(data []byte) (*RawResponse, error) {
	var envelope map[string]any
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}

	if envelope == nil {
		return nil, errors.New("response is not a json object")
	}

	if value, ok := envelope["result"]; !ok || value == nil {
		return nil, errors.New("response has no result field")
	}

	var raw *RawResponse
	if err := mapstructure.Decode(envelope, &raw); err != nil {
		return nil, fmt.Errorf("decoding result field: %w", err)
	}

	return raw, nil
}
