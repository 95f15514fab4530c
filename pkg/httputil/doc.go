// Package httputil provides the HTTP plumbing used by remote snapshot
// providers.
//
// # Client
//
// [Client] performs JSON GET requests with default headers (typically a
// bearer token), maps HTTP status codes onto lineage error codes and retries
// transient failures:
//
//   - 404 becomes NOT_FOUND
//   - 401 and 403 become UNAUTHORIZED
//   - 429 becomes RATE_LIMITED and is retried
//   - 5xx and transport errors become NETWORK_ERROR and are retried
//
// # Retry
//
// [Retry] runs a function with exponential backoff. Only errors wrapped in
// [RetryableError] are retried; everything else is returned at once:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch()
//	})
package httputil
