package gateway

import (
	"fmt"
)

// GatewayError is returned when the gateway answers with a non-200 status.
// It is distinguishable from "authenticated but no role", which is a normal
// empty result.
type GatewayError struct {
	Operation string
	Status    int
}

func (e *GatewayError) Error() string {
	if e == nil {
		return "gateway error"
	}
	return fmt.Sprintf("gateway %s failed: status %d", e.Operation, e.Status)
}

// ProtocolError is returned when a 200 response body could not be parsed as
// the expected XML. Callers treat it like an outage but it logs distinctly.
type ProtocolError struct {
	Operation string
	Err       error
}

func (e *ProtocolError) Error() string {
	if e == nil {
		return "gateway protocol error"
	}
	if e.Err != nil {
		return fmt.Sprintf("gateway %s returned unparseable response: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("gateway %s returned unparseable response", e.Operation)
}

func (e *ProtocolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
