// Package apitest provides an in-process fake of the location API for tests.
// It records every request and answers with canned replies.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/gofiber/fiber"
)

// Host is the base URL clients should use with the fake.
const Host = "http://radar.test"

// Request is a request received by the fake.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]interface{}
}

// Reply is a canned answer.
type Reply struct {
	Status int
	Body   interface{}
}

type Server struct {
	app      *fiber.App
	mu       sync.Mutex
	requests []Request
	replies  map[string][]Reply
}

func New() *Server {
	s := &Server{
		app:     fiber.New(),
		replies: make(map[string][]Reply),
	}
	s.app.All("/*", s.handle)
	return s
}

// Reply queues an answer for method and path, e.g. ("PATCH",
// "/v1/trips/abc"). Queued replies are used in order; the last one repeats.
// Unmatched requests get 200 with {"meta":{"code":200}}.
func (s *Server) Reply(method, path string, status int, body interface{}) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.replies[key] = append(s.replies[key], Reply{Status: status, Body: body})
	return s
}

// Client returns an HTTP client whose requests are served by the fake.
func (s *Server) Client() *http.Client {
	return &http.Client{Transport: s}
}

// RoundTrip implements http.RoundTripper.
func (s *Server) RoundTrip(req *http.Request) (*http.Response, error) {
	return s.app.Test(req, -1)
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns the number of requests received so far.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Last returns the most recent request.
func (s *Server) Last() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

func (s *Server) handle(ctx *fiber.Ctx) {
	req := Request{
		Method: ctx.Method(),
		Path:   ctx.Path(),
		Header: make(http.Header),
	}

	query, err := url.ParseQuery(string(ctx.Fasthttp.URI().QueryString()))
	if err == nil {
		req.Query = query
	}

	ctx.Fasthttp.Request.Header.VisitAll(func(key, value []byte) {
		req.Header.Add(string(key), string(value))
	})

	if body := ctx.Fasthttp.Request.Body(); len(body) > 0 {
		parsed := make(map[string]interface{})
		if err := json.Unmarshal(body, &parsed); err == nil {
			req.Body = parsed
		}
	}

	reply := s.record(req)
	ctx.Status(reply.Status)
	ctx.JSON(reply.Body)
}

func (s *Server) record(req Request) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	key := req.Method + " " + req.Path
	queued := s.replies[key]
	if len(queued) == 0 {
		return Reply{
			Status: http.StatusOK,
			Body:   map[string]interface{}{"meta": map[string]interface{}{"code": http.StatusOK}},
		}
	}

	reply := queued[0]
	if len(queued) > 1 {
		s.replies[key] = queued[1:]
	}
	return reply
}
