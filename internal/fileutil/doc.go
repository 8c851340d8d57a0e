// Package fileutil holds small filesystem helpers shared by the ledger and
// CLI.
package fileutil
