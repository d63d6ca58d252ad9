// Package platform implements the HTTP client for the workflow platform.
//
// The platform exposes two base URLs: the core API serves reads (flows,
// runs, logs, payload downloads) and the import endpoint, while a separate
// start API triggers runs. The client speaks JSON:API-shaped responses,
// authenticates with a bearer token and applies a fixed per-request
// timeout.
//
// Idempotent reads are retried once on network failure or a 5xx response.
// Writes (flow import, run start) are never retried; repeating them would
// create duplicate flows or duplicate runs.
//
// Every failure surfaces as a typed error from the api package: a
// NotFoundError for 404s, a TransportError for everything else. Response
// bodies quoted in errors have the bearer token redacted.
package platform
