// Package arenajson is a JSON codec for resource-constrained and
// embedded targets. It lexes and parses into caller-owned arenas
// rather than the Go heap, decodes directly against a reflective
// struct schema built once at startup, and encodes that same schema
// back to JSON. A Codec bundles the arenas and configuration; Parse,
// Scan, DecodeInto, DecodeIntoIter and Encode are available
// standalone for callers that want to manage their own arenas.
package arenajson
