// Package httputil provides HTTP utilities for package registry clients.
//
// # Retry
//
// [Policy] retries an operation when it fails with a [RetryableError]. The
// registry client wraps transient failures with it:
//
//   - Network errors (connection refused, timeouts)
//   - 5xx server errors
//
// Other errors (404, malformed responses, cancelled contexts) are returned
// immediately. The delay between attempts doubles after each failure:
//
//	err := httputil.DefaultPolicy.Do(ctx, func() error {
//	    return fetch(ctx)
//	})
//
// # Configuration
//
// Default settings:
//
//   - Attempts: 3
//   - Initial delay: 1 second
//
// A Policy with Attempts set to 1 disables retries.
package httputil
