// Package codec implements the two compression schemes used inside crate
// files: the delta + variable-byte integer coding (32- and 64-bit variants)
// and the chunked LZ4 block framing that wraps both the integer streams and
// the TOKENS/FIELDS payloads.
//
// Encoders are provided alongside the decoders so tests and tooling can
// author crate fixtures; they are not a general-purpose serializer.
package codec
