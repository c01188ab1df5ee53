// Package ballotservice implements weighted assembly voting inside the
// governance context.
//
// The module owns the ballot agenda with its options, the attendee roster
// imported from the registration desk, and one-vote-per-seat casting with
// capital weights. Election lifecycle state is projected in through the
// ElectionGate port; the module never reaches into assembly storage.
package ballotservice
