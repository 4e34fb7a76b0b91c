package dispatch

import (
	"strings"
	"time"

	"github.com/flashkv/flashkv/internal/resp"
	"github.com/flashkv/flashkv/internal/storage"
)

func cmdPing(_ *storage.Engine, args []string) resp.Value {
	if len(args) == 0 {
		return resp.SimpleString("PONG")
	}
	if len(args) == 1 {
		return resp.BulkFromString(args[0])
	}
	return arityErr("PING")
}

func cmdEcho(_ *storage.Engine, args []string) resp.Value {
	if len(args) != 1 {
		return arityErr("ECHO")
	}
	return resp.BulkFromString(args[0])
}

func cmdQuit(_ *storage.Engine, _ []string) resp.Value {
	return resp.SimpleString("OK")
}

func cmdGet(e *storage.Engine, args []string) resp.Value {
	if len(args) != 1 {
		return arityErr("GET")
	}
	v, ok := e.Get(args[0])
	if !ok {
		if e.Type(args[0]) == "list" {
			return engineErrReply(storage.ErrWrongType)
		}
		return resp.NullBulk()
	}
	return resp.BulkString(v)
}

func cmdSet(e *storage.Engine, args []string) resp.Value {
	if len(args) < 2 {
		return arityErr("SET")
	}
	key, value := args[0], args[1]

	var opts storage.SetOpts
	for i := 2; i < len(args); i++ {
		switch strings.ToUpper(args[i]) {
		case "NX":
			opts.NX = true
		case "XX":
			opts.XX = true
		case "EX":
			i++
			if i >= len(args) {
				return arityErr("SET")
			}
			secs, ok := parseInt(args[i])
			if !ok {
				return resp.ErrorReply("ERR value is not an integer or out of range")
			}
			opts.TTL = time.Duration(secs) * time.Second
		case "PX":
			i++
			if i >= len(args) {
				return arityErr("SET")
			}
			ms, ok := parseInt(args[i])
			if !ok {
				return resp.ErrorReply("ERR value is not an integer or out of range")
			}
			opts.TTL = time.Duration(ms) * time.Millisecond
		default:
			return resp.ErrorReply("ERR syntax error")
		}
	}

	ok, err := e.Set(key, resp.NewBytesFromString(value), opts)
	if err != nil {
		return engineErrReply(err)
	}
	if !ok {
		return resp.NullBulk()
	}
	return resp.SimpleString("OK")
}

func cmdSetNX(e *storage.Engine, args []string) resp.Value {
	if len(args) != 2 {
		return arityErr("SETNX")
	}
	ok, err := e.Set(args[0], resp.NewBytesFromString(args[1]), storage.SetOpts{NX: true})
	if err != nil {
		return engineErrReply(err)
	}
	if ok {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}

func cmdAppend(e *storage.Engine, args []string) resp.Value {
	if len(args) != 2 {
		return arityErr("APPEND")
	}
	n, err := e.Append(args[0], []byte(args[1]))
	if err != nil {
		return engineErrReply(err)
	}
	return resp.Integer(n)
}

func cmdIncr(e *storage.Engine, args []string) resp.Value {
	if len(args) != 1 {
		return arityErr("INCR")
	}
	n, err := e.Incr(args[0])
	if err != nil {
		return engineErrReply(err)
	}
	return resp.Integer(n)
}

func cmdDecr(e *storage.Engine, args []string) resp.Value {
	if len(args) != 1 {
		return arityErr("DECR")
	}
	n, err := e.Decr(args[0])
	if err != nil {
		return engineErrReply(err)
	}
	return resp.Integer(n)
}

func cmdIncrBy(e *storage.Engine, args []string) resp.Value {
	if len(args) != 2 {
		return arityErr("INCRBY")
	}
	delta, ok := parseInt(args[1])
	if !ok {
		return resp.ErrorReply("ERR value is not an integer or out of range")
	}
	n, err := e.IncrBy(args[0], delta)
	if err != nil {
		return engineErrReply(err)
	}
	return resp.Integer(n)
}

func cmdDecrBy(e *storage.Engine, args []string) resp.Value {
	if len(args) != 2 {
		return arityErr("DECRBY")
	}
	delta, ok := parseInt(args[1])
	if !ok {
		return resp.ErrorReply("ERR value is not an integer or out of range")
	}
	n, err := e.DecrBy(args[0], delta)
	if err != nil {
		return engineErrReply(err)
	}
	return resp.Integer(n)
}
