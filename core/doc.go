// Package core contains the canonical repo-sync domain entities, contracts,
// and the provider registry. Orchestration packages and adapters depend on
// this package; core must not depend on provider-specific or store-specific
// code.
package core
