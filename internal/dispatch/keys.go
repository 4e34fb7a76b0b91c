package dispatch

import (
	"time"

	"github.com/flashkv/flashkv/internal/resp"
	"github.com/flashkv/flashkv/internal/storage"
)

func cmdDel(e *storage.Engine, args []string) resp.Value {
	if len(args) < 1 {
		return arityErr("DEL")
	}
	return resp.Integer(e.Del(args...))
}

func cmdExists(e *storage.Engine, args []string) resp.Value {
	if len(args) < 1 {
		return arityErr("EXISTS")
	}
	var n int64
	for _, k := range args {
		if e.Type(k) != "none" {
			n++
		}
	}
	return resp.Integer(n)
}

func cmdType(e *storage.Engine, args []string) resp.Value {
	if len(args) != 1 {
		return arityErr("TYPE")
	}
	return resp.SimpleString(e.Type(args[0]))
}

func cmdKeys(e *storage.Engine, args []string) resp.Value {
	if len(args) != 1 {
		return arityErr("KEYS")
	}
	keys := e.Keys(args[0])
	items := make([]resp.Value, len(keys))
	for i, k := range keys {
		items[i] = resp.BulkFromString(k)
	}
	return resp.ArrayOf(items)
}

func cmdDbSize(e *storage.Engine, args []string) resp.Value {
	if len(args) != 0 {
		return arityErr("DBSIZE")
	}
	return resp.Integer(e.Stats().KeyCount)
}

func cmdExpire(e *storage.Engine, args []string) resp.Value {
	if len(args) != 2 {
		return arityErr("EXPIRE")
	}
	secs, ok := parseInt(args[1])
	if !ok {
		return resp.ErrorReply("ERR value is not an integer or out of range")
	}
	if e.Expire(args[0], time.Duration(secs)*time.Second) {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}

func cmdPersist(e *storage.Engine, args []string) resp.Value {
	if len(args) != 1 {
		return arityErr("PERSIST")
	}
	if e.Persist(args[0]) {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}

func cmdTTL(e *storage.Engine, args []string) resp.Value {
	if len(args) != 1 {
		return arityErr("TTL")
	}
	return resp.Integer(e.TTL(args[0]))
}

func cmdPTTL(e *storage.Engine, args []string) resp.Value {
	if len(args) != 1 {
		return arityErr("PTTL")
	}
	return resp.Integer(e.PTTL(args[0]))
}

func cmdExpireAt(e *storage.Engine, args []string) resp.Value {
	if len(args) != 2 {
		return arityErr("EXPIREAT")
	}
	unixSecs, ok := parseInt(args[1])
	if !ok {
		return resp.ErrorReply("ERR value is not an integer or out of range")
	}
	if e.ExpireAt(args[0], unixSecs) {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}

func cmdFlushAll(e *storage.Engine, args []string) resp.Value {
	if len(args) != 0 {
		return arityErr("FLUSHALL")
	}
	e.Flush()
	return resp.SimpleString("OK")
}
