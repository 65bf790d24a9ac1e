// Package queryir is a small filter language over the command journal.
//
// A Select names the journal rows to return: commands joined with their
// outcomes, always in seq order. Filters are built from a closed set of
// predicates over a fixed set of fields:
//
//	session    string  the command's session token
//	op         string  the op name
//	case       string  the outcome case ("Ok", "Conflict", ...)
//	command_id string  the content-addressed command id
//	seq        int     the logical clock value
//
// Query and Predicate are sealed: only this package implements them, so
// backends can switch over them exhaustively.
//
//	switch p := pred.(type) {
//	case Equals:
//	case NotEquals:
//	case In:
//	case Range:
//	case And:
//	}
//
// Literal values are ir.IRValue, so filters encode canonically and never
// carry floats.
package queryir
