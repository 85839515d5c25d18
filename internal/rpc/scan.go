package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samber/mo"
)

const OperationAuto = "auto"

type ScanRequest struct {
	MemberBarcode string `json:"member_barcode"`
	BookBarcode   string `json:"book_barcode"`
	Operation     string `json:"operation"`
}

type ScanResult struct {
	Success bool
	Message mo.Option[string]
}

// UnmarshalJSON requires a boolean success field. The backend sends false instead of
// null for unset text fields, so message may be a string, null or false.
func (r *ScanResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Success *bool           `json:"success"`
		Message json.RawMessage `json:"message"`
	}
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	if raw.Success == nil {
		return fmt.Errorf("result is missing the success field")
	}
	r.Success = *raw.Success
	r.Message = mo.None[string]()

	switch string(raw.Message) {
	case "", "null", "false":
		return nil
	}

	var message string
	err = json.Unmarshal(raw.Message, &message)
	if err != nil {
		return fmt.Errorf("result message is not text: %w", err)
	}
	r.Message = mo.Some(message)

	return nil
}

func (r ScanResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
	}{
		Success: r.Success,
		Message: r.Message.OrEmpty(),
	})
}

// CreateAndProcess submits one scan to the configured model and method.
func (c *Client) CreateAndProcess(ctx context.Context, req ScanRequest) (ScanResult, error) {
	var result ScanResult
	err := c.CallKW(ctx, c.model, c.method, []any{req}, nil, &result)
	if err != nil {
		return ScanResult{}, err
	}
	return result, nil
}
