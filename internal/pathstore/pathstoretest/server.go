// Package pathstoretest provides an in-memory pathstore server for tests.
package pathstoretest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Server is an in-memory implementation of the pathstore KV endpoints.
type Server struct {
	*httptest.Server

	mu    sync.Mutex
	nodes map[string]json.RawMessage
	key   string
}

// NewServer starts a server that requires apiKey as a bearer token.
func NewServer(apiKey string) *Server {
	s := &Server{nodes: map[string]json.RawMessage{}, key: apiKey}
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /kv/{key...}", s.put)
	mux.HandleFunc("GET /kv/{key...}", s.get)
	mux.HandleFunc("DELETE /kv/{key...}", s.delete)
	s.Server = httptest.NewServer(s.auth(mux))
	return s
}

// Put seeds a raw value, bypassing the HTTP API.
func (s *Server) Put(key string, value json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[key] = value
}

// Len returns the number of stored nodes.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.key {
			http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) put(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.Put(r.PathValue("key"), body.Value)
	w.WriteHeader(http.StatusOK)
}

type node struct {
	Key   string          `json:"key_path"`
	Value json.RawMessage `json:"value"`
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	s.mu.Lock()
	defer s.mu.Unlock()

	if prefix, ok := strings.CutSuffix(key, "/*"); ok {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		var keys []string
		for k := range s.nodes {
			if strings.HasPrefix(k, prefix+"/") {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		if limit > 0 && len(keys) > limit {
			keys = keys[:limit]
		}
		out := struct {
			Nodes []node `json:"nodes"`
		}{Nodes: []node{}}
		for _, k := range keys {
			out.Nodes = append(out.Nodes, node{Key: dotted(k), Value: s.nodes[k]})
		}
		writeJSON(w, out)
		return
	}

	v, ok := s.nodes[key]
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, node{Key: dotted(key), Value: v})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found := s.nodes[key]
	delete(s.nodes, key)
	if r.URL.Query().Get("children") == "true" {
		for k := range s.nodes {
			if strings.HasPrefix(k, key+"/") {
				delete(s.nodes, k)
				found = true
			}
		}
	}
	if !found {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func dotted(key string) string {
	return strings.ReplaceAll(key, "/", ".")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
