// Package output renders the results of swellow commands.
//
// Two forms are supported. Humans get a plain text migration plan, styled
// with lipgloss when the destination is a terminal. Machines get a single JSON
// Envelope per command, whose error object carries a coarse error type derived
// by Classify.
package output
