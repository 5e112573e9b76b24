// Package ir holds the foundational record types for the social graph.
//
// Entities (User, Post, Like, Tip), domain events and the constrained value
// types used to serialise them deterministically all live here. Every other
// internal package imports ir; ir imports nothing internal.
//
// Constraints:
//   - Numbers are int64 only. Timestamps are opaque int64 ordering keys.
//   - Monetary amounts stay decimal strings, never floats.
//   - JSON tags are snake_case and match the wire names hosts already use.
//   - Anything hashed or golden-compared goes through MarshalCanonical.
package ir
