package apiserver

// registerRoutes wires every route this server exposes. The investigation
// endpoint is registered before the probe endpoints to mirror the
// teacher's "functional handlers first, catch-all/secondary last" order.
func (s *Server) registerRoutes() {
	s.router.HandleFunc("/invocations", s.withMethod("POST", s.handleInvocations))
	s.router.HandleFunc("/health", s.withMethod("GET", s.handleHealth))
	s.router.HandleFunc("/status", s.withMethod("GET", s.handleStatus))
	s.router.HandleFunc("/ping", s.withMethod("GET", s.handlePing))
}
