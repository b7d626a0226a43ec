package application

import "go.uber.org/atomic"

// EndpointSelector hands out server addresses in strict round-robin order.
// It is safe for concurrent use.
type EndpointSelector struct {
	addresses []string
	cursor    *atomic.Uint64
}

func NewEndpointSelector(addresses []string) *EndpointSelector {
	return &EndpointSelector{
		addresses: append([]string(nil), addresses...),
		cursor:    atomic.NewUint64(0),
	}
}

// NextIndex advances the shared cursor and returns the position it pointed at.
func (s *EndpointSelector) NextIndex() int {
	n := s.cursor.Inc() - 1
	return int(n % uint64(len(s.addresses)))
}

func (s *EndpointSelector) Next() string {
	return s.addresses[s.NextIndex()]
}

func (s *EndpointSelector) Len() int {
	return len(s.addresses)
}
