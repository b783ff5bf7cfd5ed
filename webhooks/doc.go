// Package webhooks contains the commit-webhook attachment engine. It is a
// brute-force fallback for legacy project connections: every candidate
// account for the resolved provider is tried in order until one accepts the
// hook, and total failure is reported to the user through the notification
// store rather than an error return.
package webhooks
