// Package httputil provides shared HTTP response utilities for handlers.
//
// Every handler file should use these helpers instead of writing raw
// http.ResponseWriter calls. This keeps JSON formatting, error envelopes,
// and logging consistent across all endpoints, including the proxy
// endpoints whose {ok:false, error} shape the dashboard client depends on.
package httputil
