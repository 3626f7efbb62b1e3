package sdk

import (
	"encoding/json"
	"fmt"
)

// marshalBody serializes a request body to the exact bytes that go on the
// wire. The same bytes feed the signature, which is what keeps the signature
// verifiable server-side: there is no second, subtly different serialization.
//
// A nil body yields nil, which signs as the empty string.
func marshalBody(body interface{}) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, nil
}

// decodeResponse parses a JSON response body into dest. A nil dest or empty
// body is not an error; some routes return no content.
func decodeResponse(data []byte, dest interface{}) error {
	if dest == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
