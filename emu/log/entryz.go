package log

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

const maxZFields = 16

// EntryZ is a log entry built field by field. Every method accepts a nil
// receiver, which is what disabled modules hand out, so that a disabled log
// line costs a single branch.
type EntryZ struct {
	mod Module
	lvl Level
	msg string

	zfbuf [maxZFields]ZField
	zfidx int
}

var entryPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

func NewEntryZ() *EntryZ {
	e := entryPool.Get().(*EntryZ)
	e.zfidx = 0
	return e
}

func (z *EntryZ) add(f ZField) *EntryZ {
	if z == nil || z.zfidx == maxZFields {
		return z
	}
	z.zfbuf[z.zfidx] = f
	z.zfidx++
	return z
}

func (z *EntryZ) Bool(key string, value bool) *EntryZ {
	return z.add(ZField{Type: FieldTypeBool, Key: key, Boolean: value})
}

func (z *EntryZ) String(key, value string) *EntryZ {
	return z.add(ZField{Type: FieldTypeString, Key: key, String: value})
}

func (z *EntryZ) Stringer(key string, value fmt.Stringer) *EntryZ {
	return z.add(ZField{Type: FieldTypeStringer, Key: key, Interface: value})
}

func (z *EntryZ) Int(key string, value int) *EntryZ {
	return z.add(ZField{Type: FieldTypeInt, Key: key, Integer: uint64(value)})
}

func (z *EntryZ) Uint(key string, value uint64) *EntryZ {
	return z.add(ZField{Type: FieldTypeUint, Key: key, Integer: value})
}

func (z *EntryZ) Hex8(key string, value uint8) *EntryZ {
	return z.add(ZField{Type: FieldTypeHex8, Key: key, Integer: uint64(value)})
}

func (z *EntryZ) Hex16(key string, value uint16) *EntryZ {
	return z.add(ZField{Type: FieldTypeHex16, Key: key, Integer: uint64(value)})
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	return z.add(ZField{Type: FieldTypeError, Key: key, Error: err})
}

func (z *EntryZ) Duration(key string, d time.Duration) *EntryZ {
	return z.add(ZField{Type: FieldTypeDuration, Key: key, Duration: d})
}

// End emits the entry. Fatal entries exit the process, panic entries panic.
func (z *EntryZ) End() {
	if z == nil {
		return
	}

	fields := contextFields()
	fields["_mod"] = z.mod.String()
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}
	lvl, msg := z.lvl, z.msg

	z.zfbuf = [maxZFields]ZField{}
	entryPool.Put(z)

	entry := logrus.StandardLogger().WithFields(fields)
	switch lvl {
	case PanicLevel:
		entry.Panic(msg)
	case FatalLevel:
		entry.Fatal(msg)
	case ErrorLevel:
		entry.Error(msg)
	case WarnLevel:
		entry.Warn(msg)
	case InfoLevel:
		entry.Info(msg)
	default:
		entry.Debug(msg)
	}
}
