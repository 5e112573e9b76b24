// Package engine implements the social graph state engine.
//
// The engine owns one State (users, posts, public-key bindings, follow
// adjacency lists and two id counters, all held in a store.Backend) and
// exposes a fixed set of read and mutate operations over it.
//
// EXECUTION MODEL:
//
// Single writer. Every public operation takes the engine mutex, so exactly
// one operation runs at a time regardless of how many goroutines call in.
// Within an operation:
//  1. All reads and validation happen first
//  2. All writes happen afterwards, in a fixed order
//  3. Events are emitted last, one per visible state change
//
// A failed operation therefore leaves state unchanged. Store I/O errors in
// the middle of the write phase are surfaced wrapped; there is no rollback.
//
// Values are copy-on-write: an operation reads an entity, builds a new value
// with fresh slices, and writes it back whole.
//
// SNAPSHOT FIELDS:
//
// Post.AuthorName, AuthorAvatar and AuthorWalletAddress are copied from the
// author at creation. UpdateUser rewrites AuthorName on the author's posts;
// the avatar and wallet snapshots, and the user_name on likes and tips, stay
// frozen.
package engine
