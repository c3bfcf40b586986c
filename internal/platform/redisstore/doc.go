// Package redisstore implements the store interfaces on top of Redis.
//
// Persisted layout:
//
//	entry:<id>           hash   entry fields (status, created_at)
//	entry:<id>:images    list   image IDs in upload order
//	image:<id>           string raw image bytes, TTL-bounded
//	image:<id>:metadata  hash   image fields, analysis JSON; no TTL
//	analysis_queue       list   pending image IDs (configurable name)
//
// Metadata records deliberately outlive the byte payload: after the TTL
// elapses a reader still sees the image and its status while the payload
// read reports store.ErrPayloadMissing.
package redisstore
