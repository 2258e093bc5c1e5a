package orders

// ActiveList is the engine's queue of live orders. Removal uses swap-and-
// pop so cleanup after a pass over the list stays O(1) per removal; callers
// processing indices must do so in reverse order within one pass (see
// SweepNotLive).
type ActiveList struct {
	orders  []*Order
	nextID  int64
}

func NewActiveList() *ActiveList {
	return &ActiveList{}
}

func (l *ActiveList) Orders() []*Order { return l.orders }

func (l *ActiveList) Len() int { return len(l.orders) }

// NextID returns a fresh monotonically increasing order id.
func (l *ActiveList) NextID() int64 {
	l.nextID++
	return l.nextID
}

// Dedup reports whether an order with the same (side, kind, and price for
// limits) is already pending.
func (l *ActiveList) Dedup(side Side, kind Kind, limitPx float64) bool {
	for _, o := range l.orders {
		if !o.Live() {
			continue
		}
		if o.Side != side || o.Kind != kind {
			continue
		}
		if kind == Limit && o.LimitPx != limitPx {
			continue
		}
		return true
	}
	return false
}

// Add appends an order unconditionally; callers check Dedup first.
func (l *ActiveList) Add(o *Order) {
	l.orders = append(l.orders, o)
}

// RemoveAt swaps the element at i with the last element and pops it.
// Callers iterating by index over the list while removing must do so in
// descending index order so earlier indices stay valid.
func (l *ActiveList) RemoveAt(i int) {
	last := len(l.orders) - 1
	l.orders[i] = l.orders[last]
	l.orders = l.orders[:last]
}

// SweepNotLive removes every order that is no longer Pending/PartiallyFilled,
// processed in reverse index order.
func (l *ActiveList) SweepNotLive() {
	for i := len(l.orders) - 1; i >= 0; i-- {
		if !l.orders[i].Live() {
			l.RemoveAt(i)
		}
	}
}
