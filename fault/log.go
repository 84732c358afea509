// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
)

// time for the log writer to drain before the process dies
const flushDelay = 100 * time.Millisecond

var panicLog struct {
	sync.Mutex
	log *logger.L
}

// Initialise - open the channel used for the final message of a
// failing node
func Initialise() error {
	panicLog.Lock()
	defer panicLog.Unlock()

	if nil != panicLog.log {
		return AlreadyInitialised
	}
	panicLog.log = logger.New("PANIC")
	if nil == panicLog.log {
		return ErrInvalidLoggerChannel
	}
	return nil
}

// Finalise - flush anything still buffered
func Finalise() {
	panicLog.Lock()
	defer panicLog.Unlock()

	if nil != panicLog.log {
		panicLog.log.Flush()
		panicLog.log = nil
	}
}

// Panic - log the caller position and message then abort
func Panic(message string) {
	abort(caller(2) + message)
}

// PanicWithError - abort because an operation failed
func PanicWithError(message string, err error) {
	abort(fmt.Sprintf("%s%s failed with error: %v", caller(2), message, err))
}

// PanicIfError - abort only on a non-nil error
func PanicIfError(message string, err error) {
	if nil != err {
		abort(fmt.Sprintf("%s%s failed with error: %v", caller(2), message, err))
	}
}

func caller(skip int) string {
	if _, file, line, ok := runtime.Caller(skip); ok {
		return fmt.Sprintf("(%q:%d) ", file, line)
	}
	return ""
}

func abort(message string) {
	panicLog.Lock()
	l := panicLog.log
	panicLog.Unlock()

	if nil == l {
		fmt.Printf("*** %s\n", message)
	} else {
		l.Critical(message)
		l.Flush()
		time.Sleep(flushDelay)
	}
	panic(message)
}
