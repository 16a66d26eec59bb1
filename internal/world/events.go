package world

// EventKind tags a grid change notification.
type EventKind uint8

const (
	// TileChanged carries the block coordinate that was written.
	TileChanged EventKind = iota
	// LightColumnChanged carries X, Z and the inclusive range Y0..Y1 whose light flipped.
	LightColumnChanged
	// AllChanged carries no coordinates; subscribers must invalidate everything.
	AllChanged
)

func (k EventKind) String() string {
	switch k {
	case TileChanged:
		return "TileChanged"
	case LightColumnChanged:
		return "LightColumnChanged"
	case AllChanged:
		return "AllChanged"
	default:
		return "Unknown"
	}
}

// Event is a tagged grid change. Which coordinate fields are meaningful
// depends on Kind.
type Event struct {
	Kind    EventKind
	X, Y, Z int
	Y0, Y1  int
}

// Subscription buffers events for one consumer until Drain is called.
type Subscription struct {
	pending []Event
}

// Drain returns the buffered events in emission order and empties the buffer.
func (s *Subscription) Drain() []Event {
	if len(s.pending) == 0 {
		return nil
	}
	out := s.pending
	s.pending = nil
	return out
}

// Pending returns the number of undrained events.
func (s *Subscription) Pending() int {
	return len(s.pending)
}

// Subscribe registers a new event consumer.
func (g *Grid) Subscribe() *Subscription {
	s := &Subscription{}
	g.subs = append(g.subs, s)
	return s
}

// Unsubscribe stops delivery to s. Already buffered events stay drainable.
func (g *Grid) Unsubscribe(s *Subscription) {
	for i, cur := range g.subs {
		if cur == s {
			g.subs = append(g.subs[:i], g.subs[i+1:]...)
			return
		}
	}
}

func (g *Grid) publish(e Event) {
	for _, s := range g.subs {
		if e.Kind == AllChanged {
			// Anything queued before a full invalidation is subsumed by it.
			s.pending = s.pending[:0]
		}
		s.pending = append(s.pending, e)
	}
}
