package job

import "context"

// Service defines the job pipeline contract. Implemented by Runner and by
// the instrumented wrapper in the observability package.
type Service interface {
	// Run executes one heavy job end to end: admission through the
	// concurrency gate, staging, external-tool invocation and outcome
	// classification. The caller owns the returned Result and must call
	// Release on it once the response has been delivered (or abandoned).
	Run(ctx context.Context, req *Request) (*Result, error)
}
