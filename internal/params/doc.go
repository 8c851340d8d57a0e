// Package params looks up the ordered parameter values attached to a
// hexagram name.
//
// Values live in a small SQLite table, gui_para(name, param_order,
// param_value), populated from a spreadsheet by Import. The capture pipeline
// only ever reads it: Resolver opens the database per lookup, tries the exact
// name and then the abbreviation-derived fallback, and never holds a
// connection between polls.
package params
