// Package render turns a votecount snapshot into forum post text: the list
// format read by the votecount plugin, the table format shown to players and
// the assembled post around them.
package render
