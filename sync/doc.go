// Package sync contains the account sync engine and the two batch entry
// points that feed it: organization-wide distribution over the job queue and
// the in-process weekly re-sync of active users.
package sync
