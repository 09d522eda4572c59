// Package types defines the core types and interfaces shared across storekeep:
// the cleaning Tier, the resolved target Locations, the result of a cleaning
// run, and the FS abstraction every component performs file I/O through.
package types
