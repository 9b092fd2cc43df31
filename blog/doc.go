// Package blog provides the post storage layer and HTTP handler that the
// session gate was built to protect.
//
// Posts are JSON documents with ownership metadata and a soft-delete flag.
// Identifiers are counter-based (post_<n>), minted atomically so concurrent
// creates never collide. [Store] is the persistence seam; [RedisStore] is
// the bundled implementation.
package blog
