package redisstore

import "github.com/redis/go-redis/v9"

// Move result codes returned by moveScript.
const (
	moveOK          = 0
	moveNotFound    = -1
	moveNotQueued   = -2
	moveOutOfRange  = -3
	insertDuplicate = -1
	appendMissing   = -2
)

// KEYS[1] = queue list, KEYS[2] = item hash
// ARGV[1] = id, ARGV[2..] = field/value pairs
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 1 then
  return -1
end
redis.call('HSET', KEYS[2], unpack(ARGV, 2))
redis.call('LREM', KEYS[1], 0, ARGV[1])
redis.call('RPUSH', KEYS[1], ARGV[1])
return redis.call('LLEN', KEYS[1]) - 1
`)

// KEYS[1] = item hash; ARGV = field/value pairs
var mergeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

// KEYS[1] = queue list, KEYS[2] = item hash; ARGV[1] = id
var deleteScript = redis.NewScript(`
redis.call('LREM', KEYS[1], 0, ARGV[1])
return redis.call('DEL', KEYS[2])
`)

// KEYS[1] = queue list, KEYS[2] = item hash
// ARGV[1] = id, ARGV[2] = status, ARGV[3] = released_at or "",
// ARGV[4] = updated_at, ARGV[5] = "1" to dequeue
// An existing released_at survives when the status does not change.
var setStatusScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 0 then
  return 0
end
local prior = redis.call('HGET', KEYS[2], 'status')
local stamped = redis.call('HEXISTS', KEYS[2], 'released_at') == 1
redis.call('HSET', KEYS[2], 'status', ARGV[2], 'updated_at', ARGV[4])
if ARGV[3] ~= '' and not (prior == ARGV[2] and stamped) then
  redis.call('HSET', KEYS[2], 'released_at', ARGV[3])
end
if ARGV[5] == '1' then
  redis.call('LREM', KEYS[1], 0, ARGV[1])
end
return 1
`)

// KEYS[1] = queue list, KEYS[2] = item hash; ARGV[1] = id
var appendScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 0 then
  return -2
end
local pos = redis.call('LPOS', KEYS[1], ARGV[1])
if pos then
  return pos
end
redis.call('RPUSH', KEYS[1], ARGV[1])
return redis.call('LLEN', KEYS[1]) - 1
`)

// Returns {id, {field, value, ...}} per queue entry; the field list is empty
// when the record is missing.
//
// KEYS[1] = queue list; ARGV[1] = item key prefix
var pendingScript = redis.NewScript(`
local ids = redis.call('LRANGE', KEYS[1], 0, -1)
local out = {}
for i, id in ipairs(ids) do
  out[i] = {id, redis.call('HGETALL', ARGV[1] .. id)}
end
return out
`)

// Target 0 prepends, n-1 appends, anything else inserts after the element
// currently at target. Returns {code, length}.
//
// KEYS[1] = queue list, KEYS[2] = item hash
// ARGV[1] = id, ARGV[2] = target, ARGV[3] = "1" to skip the status check,
// ARGV[4] = pending status
var moveScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 0 then
  return {-1, 0}
end
if ARGV[3] ~= '1' and redis.call('HGET', KEYS[2], 'status') ~= ARGV[4] then
  return {-2, 0}
end
if not redis.call('LPOS', KEYS[1], ARGV[1]) then
  return {-2, 0}
end
local n = redis.call('LLEN', KEYS[1])
local target = tonumber(ARGV[2])
if target < -n or target >= n then
  return {-3, n}
end
if target < 0 then
  target = target + n
end
if target == 0 then
  redis.call('LREM', KEYS[1], 0, ARGV[1])
  redis.call('LPUSH', KEYS[1], ARGV[1])
elseif target == n - 1 then
  redis.call('LREM', KEYS[1], 0, ARGV[1])
  redis.call('RPUSH', KEYS[1], ARGV[1])
else
  local neighbor = redis.call('LINDEX', KEYS[1], target)
  if neighbor ~= ARGV[1] then
    redis.call('LREM', KEYS[1], 0, ARGV[1])
    redis.call('LINSERT', KEYS[1], 'AFTER', neighbor, ARGV[1])
  end
end
return {0, n}
`)
