package faucet

// IsAuthorized reports whether caller may perform administrative
// mutations. Read-only; every admin operation checks this before
// touching any field.
func (s *Service) IsAuthorized(caller string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAuthorizedLocked(caller)
}

func (s *Service) isAuthorizedLocked(caller string) bool {
	_, ok := s.admins[caller]
	return ok
}
