package ports

import (
	"context"
	"encoding/json"
)

// FunctionInvoker calls a remote serverless function by name. A failed
// invocation (transport error or a {success:false} envelope) is returned as
// an error; callers treat both identically.
type FunctionInvoker interface {
	Invoke(ctx context.Context, name string, payload any) (json.RawMessage, error)
}
