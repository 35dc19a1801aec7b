// Package httputil provides retry infrastructure for outbound HTTP clients.
//
// Transient failures (network errors, 5xx responses) are wrapped in
// [RetryableError] by callers; [Retry] and [RetryWithBackoff] re-attempt
// only those, with exponential backoff. Everything else fails fast.
package httputil
