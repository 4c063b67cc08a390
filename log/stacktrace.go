package log

import "runtime"

type tracerrFrame struct {
	Path string
	Line int
	Func string
}

// traceFrames captures the stack at the log call site. Errors built with the
// standard library don't carry their own stack, so the call-site stack is the
// best context available when an error reaches Error/Fatal.
func traceFrames(_ error) []tracerrFrame {
	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(3, pcs) //nolint:gomnd
	frames := runtime.CallersFrames(pcs[:n])

	st := make([]tracerrFrame, 0, n)
	for {
		frame, more := frames.Next()
		st = append(st, tracerrFrame{
			Path: frame.File,
			Line: frame.Line,
			Func: frame.Function,
		})
		if !more {
			break
		}
	}

	return st
}
