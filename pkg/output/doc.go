// Package output renders command results for people and for machines.
//
// Human formats run the result through a Go template from templates/ whose
// style calls resolve to lipgloss styles from the styles package, with
// per-store breakdowns drawn as go-pretty tables. Structured formats encode
// the result as JSON or YAML unchanged. FormatText produces the same
// layout as FormatTerminal with every style stripped.
package output
