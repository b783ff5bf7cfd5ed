// Package providers contains the built-in VCS provider descriptors. Each
// descriptor pairs the shared account-enumeration and sync machinery with a
// host-specific Driver that talks to the provider API.
package providers
