package market

// History is a bounded ring buffer of recent mid prices for one instrument.
// The scanner owns one per (account, instrument) so a strategy's rolling
// window is explicit rather than hidden instance state.
type History struct {
	prices []float64
	head   int
	count  int
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{prices: make([]float64, capacity)}
}

func (h *History) Push(price float64) {
	h.prices[h.head] = price
	h.head = (h.head + 1) % len(h.prices)
	if h.count < len(h.prices) {
		h.count++
	}
}

func (h *History) Len() int { return h.count }

func (h *History) Cap() int { return len(h.prices) }

// Prices returns the buffered prices oldest-first.
func (h *History) Prices() []float64 {
	out := make([]float64, 0, h.count)
	start := h.head - h.count
	if start < 0 {
		start += len(h.prices)
	}
	for i := 0; i < h.count; i++ {
		out = append(out, h.prices[(start+i)%len(h.prices)])
	}
	return out
}

// MinMax returns the lowest and highest buffered price. ok is false when the
// buffer is empty.
func (h *History) MinMax() (min, max float64, ok bool) {
	ps := h.Prices()
	if len(ps) == 0 {
		return 0, 0, false
	}
	min, max = ps[0], ps[0]
	for _, p := range ps[1:] {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return min, max, true
}
