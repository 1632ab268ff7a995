// Package domain defines the core votecount types and the ports the
// application layer consumes.
//
// This package contains concept-oriented files (vote.go, snapshot.go, forum.go,
// settings.go) with shared types and consumer-side interfaces. Adapters depend
// on domain, never the other way around.
package domain
