package wtest

// InlineLoop runs posted closures synchronously on the caller's goroutine.
// A closure posted while another is running is queued and runs right after
// it, so ordering matches a real loop.
type InlineLoop struct {
	queue   []func()
	running bool
}

// Post runs f, or queues it when called from inside a running closure.
func (l *InlineLoop) Post(f func()) {
	l.queue = append(l.queue, f)
	if l.running {
		return
	}
	l.running = true
	defer func() { l.running = false }()
	for len(l.queue) > 0 {
		next := l.queue[0]
		l.queue = l.queue[1:]
		next()
	}
}
