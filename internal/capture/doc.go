// Package capture reads text from the external application's panels and
// decides when a read is stable enough to parse.
//
// The application repaints its reading panel asynchronously, so a single read
// may return a half-rendered fragment. Reader polls a Probe for a bounded
// number of iterations and returns as soon as the text looks complete,
// falling back to the longest candidate it saw.
package capture
