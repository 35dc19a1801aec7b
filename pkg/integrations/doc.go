// Package integrations provides HTTP clients for external APIs.
//
// # Overview
//
// This package contains the shared base [Client] (request headers, JSON
// encoding, retry on transient failures) used by the API subpackages:
//
//   - [chat]: OpenAI-compatible chat completion endpoints
//
// # Error handling
//
// Clients return [ErrNotFound] for missing resources and [ErrNetwork] for
// transport failures. 5xx responses and connection errors are wrapped as
// retryable and re-attempted with exponential backoff.
//
// [chat]: github.com/erdraw/erdraw/pkg/integrations/chat
package integrations
