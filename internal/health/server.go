package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Server exposes the agent's reporting state on a localhost endpoint.
type Server struct {
	port         string
	running      int32
	lastSubmitOk int32
}

func New(port string) *Server {
	return &Server{port: port}
}

func (s *Server) SetRunning(ok bool) {
	storeBool(&s.running, ok)
}

// SetSubmitHealthy records whether the most recent report submission
// succeeded.
func (s *Server) SetSubmitHealthy(ok bool) {
	storeBool(&s.lastSubmitOk, ok)
}

func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	return http.ListenAndServe("127.0.0.1:"+s.port, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"running":   atomic.LoadInt32(&s.running) == 1,
		"submit_ok": atomic.LoadInt32(&s.lastSubmitOk) == 1,
	}
	json.NewEncoder(w).Encode(resp)
}

func storeBool(addr *int32, ok bool) {
	if ok {
		atomic.StoreInt32(addr, 1)
	} else {
		atomic.StoreInt32(addr, 0)
	}
}
