package shelf

const defaultHistorySize = 20

// positionHistory is a bounded LIFO of sticker positions. When full, the
// oldest entry is dropped.
type positionHistory struct {
	buf   []Vec2
	limit int
}

func newPositionHistory(limit int) positionHistory {
	if limit <= 0 {
		limit = defaultHistorySize
	}
	return positionHistory{limit: limit}
}

func (h *positionHistory) push(p Vec2) {
	if len(h.buf) == h.limit {
		copy(h.buf, h.buf[1:])
		h.buf = h.buf[:len(h.buf)-1]
	}
	h.buf = append(h.buf, p)
}

func (h *positionHistory) pop() (Vec2, bool) {
	if len(h.buf) == 0 {
		return Vec2{}, false
	}
	p := h.buf[len(h.buf)-1]
	h.buf = h.buf[:len(h.buf)-1]
	return p, true
}

func (h *positionHistory) len() int {
	return len(h.buf)
}

func (h *positionHistory) clear() {
	h.buf = h.buf[:0]
}
