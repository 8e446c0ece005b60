// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pkitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// ContentTypeCRL is the media type served for CRL endpoints by default.
const ContentTypeCRL = "application/pkix-crl"

type endpoint struct {
	body        []byte
	contentType string
	status      int
}

// CRLServer is an isolated HTTP endpoint serving CRLs under /crl/<name>.
// Each test gets its own listener; nothing is shared between tests.
type CRLServer struct {
	*httptest.Server

	mu        sync.Mutex
	endpoints map[string]endpoint
	hits      map[string]int
}

// NewCRLServer starts a CRL server that is closed when the test ends.
func NewCRLServer(t testing.TB) *CRLServer {
	t.Helper()

	s := &CRLServer{
		endpoints: make(map[string]endpoint),
		hits:      make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *CRLServer) serve(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/crl/")

	s.mu.Lock()
	ep, ok := s.endpoints[name]
	if ok {
		s.hits[name]++
	}
	s.mu.Unlock()

	if !ok || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", ep.contentType)
	w.WriteHeader(ep.status)
	_, _ = w.Write(ep.body)
}

// Serve registers body under /crl/<name> with the CRL media type.
func (s *CRLServer) Serve(name string, body []byte) {
	s.ServeWith(name, body, ContentTypeCRL, http.StatusOK)
}

// ServeWith registers body under /crl/<name> with an explicit content type and status.
func (s *CRLServer) ServeWith(name string, body []byte, contentType string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoints[name] = endpoint{body: body, contentType: contentType, status: status}
}

// ServeAll registers every CRL of p.
func (s *CRLServer) ServeAll(p *PKI) {
	for name, der := range p.CRLs {
		s.Serve(name, der)
	}
}

// Hits returns how many times /crl/<name> was fetched.
func (s *CRLServer) Hits(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[name]
}
