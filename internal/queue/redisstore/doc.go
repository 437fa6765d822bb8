// Package redisstore implements queue.Backend on Redis.
//
// The queue is the list "<namespace>_Q" and each record is the hash
// "<namespace>:item:<id>". Operations that read and write are Lua scripts so
// they stay atomic across every process sharing the server.
package redisstore
