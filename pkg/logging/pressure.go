package logging

// Pressure is the severity reported by a memory-pressure monitor.
type Pressure int

const (
	// PressureSoft trims the store to 75% of its capacity, keeping at least one record.
	PressureSoft Pressure = iota + 1
	// PressureHard trims the store to 50% of its capacity, rounded down, and asks the
	// runtime to return freed memory.
	PressureHard
)

func (p Pressure) String() string {
	switch p {
	case PressureSoft:
		return "soft"
	case PressureHard:
		return "hard"
	default:
		return "none"
	}
}

// OnMemoryPressure trims the store according to level and returns how many records
// were released to the pool. Unknown levels are ignored.
func (s *Store) OnMemoryPressure(level Pressure) int {
	s.mu.Lock()
	var keep int
	switch level {
	case PressureSoft:
		keep = max(s.capacity*3/4, MinCapacity)
	case PressureHard:
		keep = s.capacity / 2
	default:
		s.mu.Unlock()
		return 0
	}
	n := s.evictLocked(keep)
	s.trimmed += uint64(n)
	reclaim := s.reclaim
	s.mu.Unlock()

	if level == PressureHard && reclaim != nil {
		reclaim()
	}
	return n
}
