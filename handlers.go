package shelf

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	remove func()
}

// Remove unregisters the callback so it no longer fires. Calling Remove more
// than once, or on the zero CallbackHandle, does nothing.
func (h CallbackHandle) Remove() {
	if h.remove != nil {
		h.remove()
	}
}

type listener[T any] struct {
	id uint32
	fn func(T)
}

// listeners is an ordered callback list. Callbacks registered or removed
// while an emit is in progress take effect from the next emit.
type listeners[T any] struct {
	entries []listener[T]
	scratch []listener[T]
	nextID  uint32
}

func (l *listeners[T]) add(fn func(T)) CallbackHandle {
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, listener[T]{id: id, fn: fn})
	return CallbackHandle{remove: func() { l.removeID(id) }}
}

func (l *listeners[T]) removeID(id uint32) {
	for i := range l.entries {
		if l.entries[i].id == id {
			copy(l.entries[i:], l.entries[i+1:])
			l.entries[len(l.entries)-1] = listener[T]{}
			l.entries = l.entries[:len(l.entries)-1]
			return
		}
	}
}

func (l *listeners[T]) emit(v T) {
	if len(l.entries) == 0 {
		return
	}
	snap := append(l.scratch[:0], l.entries...)
	l.scratch = nil
	for _, e := range snap {
		e.fn(v)
	}
	clear(snap)
	l.scratch = snap[:0]
}

func (l *listeners[T]) count() int {
	return len(l.entries)
}

func (l *listeners[T]) reset() {
	clear(l.entries)
	l.entries = l.entries[:0]
}
