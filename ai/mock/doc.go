// Package mock provides test doubles for the ai interfaces.
//
// The embedder produces deterministic vectors derived from the input text,
// so identical texts embed identically across runs without a model server.
// Generation backends return canned responses or scripted failures, which
// makes fallback-chain behavior testable.
//
// Constructors return concrete types rather than interfaces so tests can
// inject behavior and assert on call state.
package mock
