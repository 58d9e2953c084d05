// Package analysis turns recorded card sorts into the artifacts researchers
// read: a pairwise similarity matrix, a hierarchical clustering of the cards
// (dendrogram) and a two-dimensional layout computed by classical
// multidimensional scaling.
//
// Every function here is pure and synchronous. Inputs are never mutated and
// every call builds fresh outputs, so concurrent callers need no
// coordination. Data anomalies (empty sessions, unknown card IDs, zero
// joint appearances) degrade to neutral values. Programmer errors, such as
// matrices of mismatched dimensions, panic.
package analysis
