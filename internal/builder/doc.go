// Package builder assembles raw source-format nodes into the canonical IR graph.
//
// Build runs in phases separated by barriers:
//
//  1. extraction: every raw node is resolved through the registry and its
//     handler fills the canonical attributes (optionally in parallel);
//  2. commit: operator nodes and their output data nodes are created in
//     source order;
//  3. wiring: declared input names are resolved to data nodes and connected,
//     preserving port order;
//  4. validation and element type propagation.
//
// Per-node failures are collected in a Report. In strict mode the first
// failure aborts the build.
package builder
