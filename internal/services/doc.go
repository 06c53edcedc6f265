// Package services holds helpers shared by the external HTTP integrations
// under internal/services.
//
// Getter issues GET requests with a bounded number of attempts and a fixed,
// linearly growing sleep between them. Only transport failures, 408, 429 and
// 5xx responses are retried; 404 maps to ErrNotFound so callers can treat a
// miss as "no data" instead of a failure.
package services
