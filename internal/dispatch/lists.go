package dispatch

import (
	"github.com/flashkv/flashkv/internal/resp"
	"github.com/flashkv/flashkv/internal/storage"
)

func cmdLPush(e *storage.Engine, args []string) resp.Value {
	if len(args) < 2 {
		return arityErr("LPUSH")
	}
	values := make([]resp.Bytes, len(args)-1)
	for i, v := range args[1:] {
		values[i] = resp.NewBytesFromString(v)
	}
	n, err := e.LPush(args[0], values...)
	if err != nil {
		return engineErrReply(err)
	}
	return resp.Integer(n)
}

func cmdRPush(e *storage.Engine, args []string) resp.Value {
	if len(args) < 2 {
		return arityErr("RPUSH")
	}
	values := make([]resp.Bytes, len(args)-1)
	for i, v := range args[1:] {
		values[i] = resp.NewBytesFromString(v)
	}
	n, err := e.RPush(args[0], values...)
	if err != nil {
		return engineErrReply(err)
	}
	return resp.Integer(n)
}

func cmdLPop(e *storage.Engine, args []string) resp.Value {
	if len(args) != 1 {
		return arityErr("LPOP")
	}
	v, ok, err := e.LPop(args[0])
	if err != nil {
		return engineErrReply(err)
	}
	if !ok {
		return resp.NullBulk()
	}
	return resp.BulkString(v)
}

func cmdRPop(e *storage.Engine, args []string) resp.Value {
	if len(args) != 1 {
		return arityErr("RPOP")
	}
	v, ok, err := e.RPop(args[0])
	if err != nil {
		return engineErrReply(err)
	}
	if !ok {
		return resp.NullBulk()
	}
	return resp.BulkString(v)
}

func cmdLLen(e *storage.Engine, args []string) resp.Value {
	if len(args) != 1 {
		return arityErr("LLEN")
	}
	n, err := e.LLen(args[0])
	if err != nil {
		return engineErrReply(err)
	}
	return resp.Integer(n)
}

func cmdLIndex(e *storage.Engine, args []string) resp.Value {
	if len(args) != 2 {
		return arityErr("LINDEX")
	}
	i, ok := parseInt(args[1])
	if !ok {
		return resp.ErrorReply("ERR value is not an integer or out of range")
	}
	v, found, err := e.LIndex(args[0], i)
	if err != nil {
		return engineErrReply(err)
	}
	if !found {
		return resp.NullBulk()
	}
	return resp.BulkString(v)
}

func cmdLRange(e *storage.Engine, args []string) resp.Value {
	if len(args) != 3 {
		return arityErr("LRANGE")
	}
	start, ok1 := parseInt(args[1])
	stop, ok2 := parseInt(args[2])
	if !ok1 || !ok2 {
		return resp.ErrorReply("ERR value is not an integer or out of range")
	}
	items, err := e.LRange(args[0], start, stop)
	if err != nil {
		return engineErrReply(err)
	}
	out := make([]resp.Value, len(items))
	for i, v := range items {
		out[i] = resp.BulkString(v)
	}
	return resp.ArrayOf(out)
}

func cmdLSet(e *storage.Engine, args []string) resp.Value {
	if len(args) != 3 {
		return arityErr("LSET")
	}
	i, ok := parseInt(args[1])
	if !ok {
		return resp.ErrorReply("ERR value is not an integer or out of range")
	}
	if err := e.LSet(args[0], i, resp.NewBytesFromString(args[2])); err != nil {
		return engineErrReply(err)
	}
	return resp.SimpleString("OK")
}

func cmdLRem(e *storage.Engine, args []string) resp.Value {
	if len(args) != 3 {
		return arityErr("LREM")
	}
	count, ok := parseInt(args[1])
	if !ok {
		return resp.ErrorReply("ERR value is not an integer or out of range")
	}
	n, err := e.LRem(args[0], count, []byte(args[2]))
	if err != nil {
		return engineErrReply(err)
	}
	return resp.Integer(n)
}
