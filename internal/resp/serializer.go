package resp

import (
	"bufio"
	"strconv"
)

// WriteValue appends the canonical wire encoding of v to w, per spec.md
// §4.1's serialize(value, out_buffer) contract. It does not flush; the
// connection engine batches writes across a whole drain iteration before
// flushing once (spec.md §4.4).
func WriteValue(w *bufio.Writer, v Value) error {
	switch v.Kind {
	case KindSimpleString:
		return writeLine(w, '+', v.Str)
	case KindError:
		return writeLine(w, '-', v.Str)
	case KindInteger:
		return writeLine(w, ':', strconv.FormatInt(v.Int, 10))
	case KindBulkString:
		if v.BulkNull {
			_, err := w.WriteString("$-1\r\n")
			return err
		}
		if err := writeLine(w, '$', strconv.Itoa(v.Bulk.Len())); err != nil {
			return err
		}
		if _, err := w.Write(v.Bulk.Data()); err != nil {
			return err
		}
		_, err := w.WriteString("\r\n")
		return err
	case KindArray:
		if v.ArrayNull {
			_, err := w.WriteString("*-1\r\n")
			return err
		}
		if err := writeLine(w, '*', strconv.Itoa(len(v.Array))); err != nil {
			return err
		}
		for _, item := range v.Array {
			if err := WriteValue(w, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return writeLine(w, '-', "ERR internal error serializing reply")
	}
}

func writeLine(w *bufio.Writer, prefix byte, text string) error {
	if err := w.WriteByte(prefix); err != nil {
		return err
	}
	if _, err := w.WriteString(text); err != nil {
		return err
	}
	_, err := w.WriteString("\r\n")
	return err
}
