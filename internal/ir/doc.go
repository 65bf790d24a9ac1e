// Package ir provides the canonical command representation for cutroom.
//
// Every edit that reaches the engine is a Command: an op name plus an
// argument object. Every command produces exactly one Outcome, whose Case is
// "Ok" or the name of the error kind that rejected it. Commands and outcomes
// are what the journal stores, what the harness traces and what the HTTP API
// speaks.
//
// This package imports nothing internal. All other internal packages may
// import ir.
//
// Key constraints:
//   - NO float types in IR values. Times and scales are carried as integer
//     microseconds (see Micros and Seconds).
//   - JSON tags use snake_case.
//   - Logical clocks (seq) only, never wall-clock timestamps.
//   - Identity is content-addressed: CommandID and OutcomeID hash the RFC 8785
//     canonical form of the record, so replaying the same commands yields the
//     same ids.
package ir
