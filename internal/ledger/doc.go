// Package ledger appends reading records to the xlsx ledger.
//
// Columns are addressed by header name. Missing columns are appended at the
// right edge, existing columns never move, and only the columns a record
// owns are written, so hand-edited columns and pre-filled placeholder rows
// survive every append.
package ledger
