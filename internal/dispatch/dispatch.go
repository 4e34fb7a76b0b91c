// Package dispatch turns a decoded RESP command array into a storage.Engine
// call and a RESP reply, per spec.md §4.5. The table is a flat
// map[string]cmdFunc built once at package init — grounded on the
// teacher's static mux.HandleFunc registration in setupHTTPServer
// (internal/server/server.go): a flat table, not a polymorphic command
// hierarchy, matching spec.md §9's explicit design note.
package dispatch

import (
	"strconv"
	"strings"

	"github.com/flashkv/flashkv/internal/resp"
	"github.com/flashkv/flashkv/internal/storage"
)

// cmdFunc executes one command against engine, returning the RESP reply.
type cmdFunc func(e *storage.Engine, args []string) resp.Value

var table map[string]cmdFunc

func init() {
	table = map[string]cmdFunc{
		"PING":    cmdPing,
		"ECHO":    cmdEcho,
		"QUIT":    cmdQuit,
		"GET":     cmdGet,
		"SET":     cmdSet,
		"SETNX":   cmdSetNX,
		"APPEND":  cmdAppend,
		"INCR":    cmdIncr,
		"DECR":    cmdDecr,
		"INCRBY":  cmdIncrBy,
		"DECRBY":  cmdDecrBy,
		"DEL":     cmdDel,
		"EXISTS":  cmdExists,
		"TYPE":    cmdType,
		"KEYS":    cmdKeys,
		"DBSIZE":  cmdDbSize,
		"EXPIRE":  cmdExpire,
		"PERSIST": cmdPersist,
		"TTL":     cmdTTL,
		"PTTL":    cmdPTTL,
		"EXPIREAT": cmdExpireAt,
		"FLUSHALL": cmdFlushAll,
		"LPUSH":   cmdLPush,
		"RPUSH":   cmdRPush,
		"LPOP":    cmdLPop,
		"RPOP":    cmdRPop,
		"LLEN":    cmdLLen,
		"LINDEX":  cmdLIndex,
		"LRANGE":  cmdLRange,
		"LSET":    cmdLSet,
		"LREM":    cmdLRem,
	}
}

// Result carries the reply plus whether the connection should close after
// it is written (QUIT) and whether it counted as an error for metrics.
type Result struct {
	Reply   resp.Value
	Quit    bool
	IsError bool
}

// Execute looks up args[0] (ASCII-uppercased) and runs it against engine.
// args must be the string-extracted command array (args[0] is the command
// name itself, matching conventional RESP command framing).
func Execute(e *storage.Engine, args []string) Result {
	if len(args) == 0 {
		return Result{Reply: resp.ErrorReply("ERR empty command"), IsError: true}
	}
	name := strings.ToUpper(args[0])
	fn, ok := table[name]
	if !ok {
		return Result{
			Reply:   resp.ErrorReply("ERR unknown command '" + args[0] + "'"),
			IsError: true,
		}
	}
	if name == "QUIT" {
		return Result{Reply: resp.SimpleString("OK"), Quit: true}
	}

	reply := fn(e, args[1:])
	return Result{Reply: reply, IsError: reply.Kind == resp.KindError}
}

func arityErr(cmd string) resp.Value {
	return resp.ErrorReply("ERR wrong number of arguments for '" + strings.ToLower(cmd) + "' command")
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func engineErrReply(err error) resp.Value {
	return resp.ErrorReply(err.Error())
}
