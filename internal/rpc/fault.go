package rpc

import (
	"fmt"
)

type FaultData struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Debug   string `json:"debug"`
}

// Fault is a JSON-RPC error envelope returned by the backend, or a transport failure
// that never produced one.
type Fault struct {
	Code       int       `json:"code"`
	Text       string    `json:"message"`
	Data       FaultData `json:"data"`
	StatusCode int       `json:"-"`
}

// Message is the best human readable description, empty when the backend sent none.
func (f *Fault) Message() string {
	if len(f.Data.Message) != 0 {
		return f.Data.Message
	}
	return f.Text
}

func (f *Fault) Error() string {
	msg := f.Message()
	if len(f.Data.Name) != 0 {
		return fmt.Sprintf("rpc fault %d (%s): %s", f.Code, f.Data.Name, msg)
	}
	return fmt.Sprintf("rpc fault %d: %s", f.Code, msg)
}

// DecodeError means the backend answered but the payload did not match the expected schema.
type DecodeError struct {
	Method string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode %s result: %s", e.Method, e.Err.Error())
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
