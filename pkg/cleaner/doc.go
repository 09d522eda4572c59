// Package cleaner runs a cleaning tier over every key-value store of the
// target application.
//
// A run resolves the global store and the workspace stores, backs each one
// up before touching it, and then either deletes matching rows (smart and
// deep) or removes the store files outright (complete). Stores are handled
// one after another. A failing store is recorded in the result and the run
// moves on to the next one; only a run where every attempted store failed is
// reported as a failure.
//
// When protection is on, a deep pattern whose matches in a store overlap any
// protected pattern is skipped for that store as a whole. Under-deleting is
// preferred to removing protected settings.
package cleaner
