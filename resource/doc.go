// Package resource bounds the work admitted by a searcher: concurrent
// queries through a weighted semaphore, query rate and dataset read
// throughput through token buckets.
package resource
