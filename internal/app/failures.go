package app

// FailureLog reports failed ticks without repeating the same failure every
// frame. A failure is logged again once a tick has succeeded in between.
type FailureLog struct {
	logf func(format string, args ...any)
	last string
}

// NewFailureLog returns a log writing through logf, typically log.Printf.
func NewFailureLog(logf func(format string, args ...any)) *FailureLog {
	return &FailureLog{logf: logf}
}

// Record notes the outcome of one tick. It reports whether err was logged.
func (l *FailureLog) Record(err error) bool {
	if err == nil {
		l.last = ""
		return false
	}
	msg := err.Error()
	if msg == l.last {
		return false
	}
	l.last = msg
	l.logf("tick failed: %+v", err)
	return true
}
