package api

import (
	"encoding/json"
	"fmt"
)

// Envelope is the backend's uniform response body. Data carries the
// operation-specific payload and stays raw until a caller decodes it.
type Envelope struct {
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// Decode unmarshals the envelope's data payload into dest
func (e *Envelope) Decode(dest any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("response carries no data")
	}
	return json.Unmarshal(e.Data, dest)
}
