package conversation

// ActiveLocks reports how many session locks are held or awaited.
func (s *Service) ActiveLocks() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}
