// Package searcher provides the bounded top-k selection used by k-nearest
// neighbor queries.
//
// Selector keeps the k best (smallest distance) candidates of a stream in a
// fixed array laid out as an implicit binary max-heap. The root always holds
// the worst retained candidate, so a non-competitive candidate is rejected
// with a single comparison. All k slots are occupied from the start: unused
// slots hold sentinels with index -1 and distance +Inf.
//
// A Selector is owned by a single query and is not safe for concurrent use.
package searcher
