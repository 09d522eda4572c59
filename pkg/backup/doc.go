// Package backup snapshots store files before they are mutated.
//
// Every store gets exactly one backup slot at <store>.backup. Each run
// overwrites the previous backup, so the slot always holds the last known
// good copy from before the most recent mutation. The original file is never
// touched until the copy has been written, synced and verified.
package backup
