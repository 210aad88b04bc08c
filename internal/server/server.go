package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Action string

type Method string

const (
	Data Action = "data"

	GET  Method = "GET"
	POST Method = "POST"
)

type Handler func(r *http.Request) ([]byte, int, error)

type Route struct {
	Action Action
	Path   string
	Method Method
	Exec   Handler
}

// Mount is a plain http handler served under a path prefix.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

type Server struct {
	name   string
	port   int
	debug  bool
	lock   *sync.Mutex
	routes []Route
	mounts []Mount
}

func NewServer(name string, port int) *Server {
	return &Server{
		name:   name,
		port:   port,
		lock:   new(sync.Mutex),
		routes: make([]Route, 0),
		mounts: make([]Mount, 0),
	}
}

// Debug sets the server to debug mode
func (s *Server) Debug() *Server {
	s.debug = true
	return s
}

// Add adds the given routes to the server
func (s *Server) Add(route ...Route) *Server {
	s.routes = append(s.routes, route...)
	return s
}

// Mount serves the handler under the given prefix.
func (s *Server) Mount(prefix string, handler http.Handler) *Server {
	s.mounts = append(s.mounts, Mount{
		Prefix:  prefix,
		Handler: handler,
	})
	return s
}

// Static serves the files of the given directory under the prefix.
func (s *Server) Static(prefix, dir string) *Server {
	return s.Mount(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(dir))))
}

func (s *Server) handle(method Method, handler Handler) func(w http.ResponseWriter, r *http.Request) {
	// we should only handle one request per time,
	// in order to ease memory footprint.
	name := runtime.FuncForPC(reflect.ValueOf(handler).Pointer()).Name()
	return func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		defer s.lock.Unlock()
		start := time.Now()
		defer func() {
			if s.debug {
				log.Info().
					Str("method", string(method)).
					Str("handler", name).
					Str("path", r.URL.Path).
					Float64("duration", time.Since(start).Seconds()).
					Msg("completed execution")
			}
		}()
		requestMethod := Method(r.Method)
		switch requestMethod {
		case method:
			b, code, err := handler(r)
			if err != nil {
				s.error(w, err)
			} else if code != http.StatusOK {
				s.code(w, b, code)
			} else {
				s.respond(w, b)
			}
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}
}

// Handler creates the http handler for all routes and mounts.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, route := range s.routes {
		if route.Path != "" {
			mux.HandleFunc(fmt.Sprintf("/%s/%s", route.Action, route.Path), s.handle(route.Method, route.Exec))
		} else {
			mux.HandleFunc(fmt.Sprintf("/%s", route.Action), s.handle(route.Method, route.Exec))
		}
	}
	for _, m := range s.mounts {
		mux.Handle(m.Prefix, m.Handler)
	}
	return mux
}

// Run starts the server
func (s *Server) Run() error {
	log.Info().Str("server", s.name).Int("port", s.port).Msg("starting server")
	if err := http.ListenAndServe(fmt.Sprintf(":%d", s.port), s.Handler()); err != nil {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) code(w http.ResponseWriter, b []byte, code int) {
	w.WriteHeader(code)
	s.respond(w, b)
}

func (s *Server) respond(w http.ResponseWriter, b []byte) {
	_, err := w.Write(b)
	if err != nil {
		log.Error().Err(err).Msg("could not write response")
	}
}

func (s *Server) error(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("error for http request")
	s.code(w, []byte(err.Error()), http.StatusInternalServerError)
}

func Live() Route {
	return Route{
		Action: Data,
		Method: GET,
		Exec: func(r *http.Request) (payload []byte, code int, err error) {
			return []byte{}, http.StatusOK, nil
		},
	}
}

func JsonRead(r *http.Request, debug bool, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if debug {
		log.Info().
			Str("url", fmt.Sprintf("%+v", r.URL)).
			Str("request", r.RequestURI).
			Str("remote-address", r.RemoteAddr).
			Str("method", r.Method).
			Str("body", string(body)).
			Msg("received payload")
	}
	if len(body) > 0 {
		err = json.Unmarshal(body, v)
		if err != nil {
			return err
		}
	}
	return nil
}
