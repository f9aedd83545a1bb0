package goroutine

import (
	"runtime/debug"

	"github.com/x-xyz/goauction/base/log"
)

type PanicEvent struct {
	Panic interface{}
	Stack []byte
}

type RecoverableGoOptions struct {
	name           string
	logger         *log.Logger
	beforeStart    *func()
	afterEnded     *func()
	afterRecovered *func(panic interface{}, stack []byte)
}

type RecoverableGoOptionsFunc = func(*RecoverableGoOptions) error

func getRecoverableGoOptions(fns ...RecoverableGoOptionsFunc) RecoverableGoOptions {
	opts := RecoverableGoOptions{}
	for _, fn := range fns {
		fn(&opts)
	}
	return opts
}

// WithName tags the panic log with the goroutine's purpose
func WithName(name string) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) error {
		options.name = name
		return nil
	}
}

// WithLogger logs the recovered panic with the given logger's fields
func WithLogger(l log.Logger) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) error {
		options.logger = &l
		return nil
	}
}

func WithBeforeStart(f func()) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) error {
		options.beforeStart = &f
		return nil
	}
}

func WithAfterEnded(f func()) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) error {
		options.afterEnded = &f
		return nil
	}
}

func WithAfterRecovered(f func(panic interface{}, stack []byte)) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) error {
		options.afterRecovered = &f
		return nil
	}
}

// RecoverableGo runs f in a new goroutine. The returned channel receives a
// PanicEvent if f panicked and is closed otherwise.
func RecoverableGo(f func(), fns ...RecoverableGoOptionsFunc) chan *PanicEvent {
	opts := getRecoverableGoOptions(fns...)

	panicChan := make(chan *PanicEvent, 1)

	go func() {
		defer func() {
			if opts.afterEnded != nil {
				(*opts.afterEnded)()
			}

			if p := recover(); p != nil {
				stack := debug.Stack()

				logger := log.Log()
				if opts.logger != nil {
					logger = *opts.logger
				}
				logger.WithFields(log.Fields{
					"err":       p,
					"goroutine": opts.name,
					"stack":     string(stack),
				}).Error("panic")

				if opts.afterRecovered != nil {
					(*opts.afterRecovered)(p, stack)
				}

				panicChan <- &PanicEvent{p, stack}
			} else {
				close(panicChan)
			}
		}()

		if opts.beforeStart != nil {
			(*opts.beforeStart)()
		}

		f()
	}()

	return panicChan
}

// RecoverableRun runs f on the current goroutine and converts a panic into a
// PanicEvent.
func RecoverableRun(f func(), fns ...RecoverableGoOptionsFunc) *PanicEvent {
	return <-RecoverableGo(f, fns...)
}
