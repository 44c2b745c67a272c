package panel

import "iter"

// Handle addresses a panel inside one Bucket. Handles stay valid until the
// panel they name is erased, whatever else is inserted or erased.
type Handle int32

// NoHandle is the end-of-list sentinel.
const NoHandle Handle = 0

type slot struct {
	p          Panel
	prev, next Handle
	live       bool
}

// Bucket is an ordered panel list backed by an arena. Erased slots are
// never reused, so a scan may erase any element, the current one included,
// and keep walking from handles it already holds. The zero value is an
// empty bucket.
type Bucket struct {
	slots      []slot
	head, tail Handle
	n          int
}

// NewBucket returns a bucket holding ps in order.
func NewBucket(ps ...Panel) *Bucket {
	b := &Bucket{}
	for _, p := range ps {
		b.PushBack(p)
	}
	return b
}

func (b *Bucket) slot(h Handle) *slot {
	return &b.slots[h-1]
}

// Len returns the number of live panels.
func (b *Bucket) Len() int { return b.n }

// Front returns the first handle or NoHandle.
func (b *Bucket) Front() Handle { return b.head }

// Back returns the last handle or NoHandle.
func (b *Bucket) Back() Handle { return b.tail }

// Next returns the handle after h. It is also valid on a handle erased
// during the current scan.
func (b *Bucket) Next(h Handle) Handle { return b.slot(h).next }

// Prev returns the handle before h.
func (b *Bucket) Prev(h Handle) Handle { return b.slot(h).prev }

// Valid reports whether h names a live panel.
func (b *Bucket) Valid(h Handle) bool {
	return h > 0 && int(h) <= len(b.slots) && b.slot(h).live
}

// At returns the panel at h.
func (b *Bucket) At(h Handle) Panel { return b.slot(h).p }

// Ref returns a pointer to the panel at h for in-place updates.
func (b *Bucket) Ref(h Handle) *Panel { return &b.slot(h).p }

// PushBack appends p and returns its handle.
func (b *Bucket) PushBack(p Panel) Handle {
	return b.InsertBefore(NoHandle, p)
}

// InsertBefore inserts p before mark, or at the end when mark is NoHandle.
func (b *Bucket) InsertBefore(mark Handle, p Panel) Handle {
	b.slots = append(b.slots, slot{p: p, live: true})
	h := Handle(len(b.slots))
	s := b.slot(h)
	if mark == NoHandle {
		s.prev = b.tail
		if b.tail != NoHandle {
			b.slot(b.tail).next = h
		} else {
			b.head = h
		}
		b.tail = h
	} else {
		m := b.slot(mark)
		s.prev, s.next = m.prev, mark
		if m.prev != NoHandle {
			b.slot(m.prev).next = h
		} else {
			b.head = h
		}
		m.prev = h
	}
	b.n++
	return h
}

// InsertAfter inserts p after mark, or at the front when mark is NoHandle.
func (b *Bucket) InsertAfter(mark Handle, p Panel) Handle {
	if mark == NoHandle {
		return b.InsertBefore(b.head, p)
	}
	return b.InsertBefore(b.slot(mark).next, p)
}

// Erase unlinks h and returns the handle that followed it.
func (b *Bucket) Erase(h Handle) Handle {
	s := b.slot(h)
	if !s.live {
		return s.next
	}
	if s.prev != NoHandle {
		b.slot(s.prev).next = s.next
	} else {
		b.head = s.next
	}
	if s.next != NoHandle {
		b.slot(s.next).prev = s.prev
	} else {
		b.tail = s.prev
	}
	s.live = false
	b.n--
	return s.next
}

// All yields live panels in order.
func (b *Bucket) All() iter.Seq2[Handle, Panel] {
	return func(yield func(Handle, Panel) bool) {
		for h := b.head; h != NoHandle; h = b.slot(h).next {
			if !yield(h, b.slot(h).p) {
				return
			}
		}
	}
}

// Panels returns a copy of the live panels in order.
func (b *Bucket) Panels() []Panel {
	out := make([]Panel, 0, b.n)
	for _, p := range b.All() {
		out = append(out, p)
	}
	return out
}

// Reset replaces the contents with ps and drops the arena.
func (b *Bucket) Reset(ps []Panel) {
	*b = Bucket{}
	for _, p := range ps {
		b.PushBack(p)
	}
}

// Clone returns a compacted copy. Handles do not carry over.
func (b *Bucket) Clone() *Bucket {
	return NewBucket(b.Panels()...)
}

// FirstProjection returns the first panel marked as a projection, or
// NoHandle. Projections always sit after the supports.
func (b *Bucket) FirstProjection() Handle {
	for h, p := range b.All() {
		if p.Shape.Projection {
			return h
		}
	}
	return NoHandle
}

// Supports returns the panels placed before the first projection.
func (b *Bucket) Supports() []Panel {
	var out []Panel
	for _, p := range b.All() {
		if p.Shape.Projection {
			break
		}
		out = append(out, p)
	}
	return out
}
