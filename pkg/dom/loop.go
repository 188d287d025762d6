package dom

// Post queues fn to run on the owning goroutine during the next Drain. It is
// safe to call from any goroutine.
func (d *Document) Post(source string, fn func()) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	d.tasks = append(d.tasks, task{source: source, fn: fn})
	d.mu.Unlock()
}

// Async runs work off the event turn. The continuation it returns (which may
// be nil) is posted back and runs during Drain, so it may touch the document.
func (d *Document) Async(source string, work func() func()) {
	if work == nil {
		return
	}
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		var next func()
		func() {
			defer func() {
				if recovered := recover(); recovered != nil {
					next = func() { panic(recovered) }
				}
			}()
			next = work()
		}()
		if next != nil {
			d.Post(source, next)
		}
	}()
}

// Drain runs queued tasks in order until the queue is empty and returns the
// number executed. Tasks posted while draining are run in the same call.
func (d *Document) Drain() int {
	ran := 0
	for {
		d.mu.Lock()
		if len(d.tasks) == 0 {
			d.mu.Unlock()
			return ran
		}
		next := d.tasks[0]
		d.tasks = d.tasks[1:]
		d.mu.Unlock()

		d.invoke(next.source, next.fn)
		ran++
	}
}

// Settle waits for outstanding Async work and drains the queue.
func (d *Document) Settle() int {
	d.pending.Wait()
	return d.Drain()
}
