// Package provision runs storekeep's first-time setup.
//
// Setup applies the configured environment variables, merges the configured
// overrides into the application's settings.json and finishes with a smart
// cleaning pass. Each component is recorded in the ledger once it succeeds
// and skipped on later runs unless forced. The ledger is marked initialized
// only when every step of a run succeeded.
package provision
