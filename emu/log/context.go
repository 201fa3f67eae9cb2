package log

import (
	"slices"
	"sync"

	"gopkg.in/Sirupsen/logrus.v0"
)

// A LogContext adds its own fields to every log entry, whichever module
// emits it.
type LogContext interface {
	AddLogContext(z *EntryZ)
}

// Entries are logged from any goroutine. Contexts must be safe for
// concurrent use.
var (
	ctxmu    sync.RWMutex
	contexts []LogContext
)

func AddContext(c LogContext) {
	ctxmu.Lock()
	defer ctxmu.Unlock()
	contexts = append(contexts, c)
}

func RemoveContext(c LogContext) {
	ctxmu.Lock()
	defer ctxmu.Unlock()
	contexts = slices.DeleteFunc(contexts, func(o LogContext) bool { return o == c })
}

func contextFields() logrus.Fields {
	var z EntryZ
	ctxmu.RLock()
	for _, c := range contexts {
		c.AddLogContext(&z)
	}
	ctxmu.RUnlock()
	fields := make(logrus.Fields, z.zfidx+1)
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}
	return fields
}
