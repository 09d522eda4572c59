// Package patterns holds the cleaning pattern catalog.
//
// Patterns are SQL LIKE strings: '%' matches any run of characters and '_'
// matches exactly one. Matching is case-sensitive. The pattern strings are
// part of the external contract because they must line up with the key
// naming the target application uses, so they are not configurable.
package patterns
