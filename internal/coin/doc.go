// Package coin holds the simulation core: a Bernoulli trial generator driven
// by an injectable uniform randomness source, and the aggregate State that
// folds outcomes into running counts.
//
// The core is single-owner. A State is mutated only by Record and Reset and
// carries no locking; callers that share a State across goroutines must
// serialize access themselves.
package coin
