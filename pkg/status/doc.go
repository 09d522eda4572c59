// Package status reports what storekeep knows about the target application:
// the ledger summary, installed plugins and which stores are present.
package status
