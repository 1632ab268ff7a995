// Package votecount turns the votecount plugin payload into a domain.Snapshot.
//
// Names are matched against the roster in three steps: exact, case-insensitive,
// then substring with an optional uniqueness requirement. The Engine keeps the
// previous snapshot so an unchanged vote whose post reference went missing
// keeps the link it had last tick.
package votecount
