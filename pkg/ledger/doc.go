// Package ledger persists what storekeep has already done to the target
// application: whether first-time setup finished, which components were
// installed and when each cleaning tier last ran.
//
// Reads never fail. A missing or corrupt ledger file is indistinguishable
// from "never configured", which only causes idempotent setup steps to run
// again. Writes are best-effort: a failed save is logged and the run goes on.
//
// The ledger is an explicit object created once per process and handed to
// the components that need it. It guards its document with a mutex, but two
// processes writing the same file is out of contract (last writer wins).
package ledger
