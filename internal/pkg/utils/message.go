package utils

import (
	"encoding/json"
	"fmt"
)

// DecodeMessage unmarshals a JSON message payload into T.
func DecodeMessage[T any](data []byte) (*T, error) {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decoding %T: %w", value, err)
	}
	return &value, nil
}
