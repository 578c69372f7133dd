package rescue

type subscription[T any] struct {
	id int
	fn func(T)
}

// observerSet keeps subscribers in registration order. Callers guard it with
// their own mutex and invoke the snapshot after unlocking.
type observerSet[T any] struct {
	nextID int
	subs   []subscription[T]
}

func (s *observerSet[T]) add(fn func(T)) int {
	s.nextID++
	s.subs = append(s.subs, subscription[T]{id: s.nextID, fn: fn})
	return s.nextID
}

func (s *observerSet[T]) remove(id int) {
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *observerSet[T]) snapshot() []func(T) {
	out := make([]func(T), 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub.fn)
	}
	return out
}

func notifyAll[T any](fns []func(T), v T) {
	for _, fn := range fns {
		fn(v)
	}
}
