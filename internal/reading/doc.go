// Package reading turns the text of a captured reading panel into a Record.
//
// The panel renders five fixed lines (Gregorian date, lunar date, stem-branch
// pillars, void branches, bracketing solar terms) plus a separate intro block
// naming the hexagram. Each line has its own small parser; Assemble runs them
// all, hashes the raw capture for deduplication, and rewrites the first line
// of the stored text with the write time.
package reading
