package storage

import "errors"

// Error taxonomy exposed by the engine, per spec.md §4.2/§7. Dispatch maps
// each to its conventional RESP error reply; the engine itself never knows
// about RESP.
var (
	ErrWrongType       = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	ErrNotAnInteger    = errors.New("ERR value is not an integer or out of range")
	ErrIntegerOverflow = errors.New("ERR increment or decrement would overflow")
	ErrIndexOutOfRange = errors.New("ERR index out of range")
)
