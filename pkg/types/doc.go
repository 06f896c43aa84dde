// Package types defines the public API surface shared by the crate decoder
// and its consumers: typed errors, scene paths, the enumerations used by
// prim and property metadata, and the decoder configuration with its
// resource ceilings.
//
// Keeping these in a leaf package lets internal decoding packages and the
// public usd package agree on vocabulary without import cycles.
package types
