// Package server runs the HTTP services with graceful restart support
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/rezicom/vendd/pkg/config"
	"gopkg.in/inconshreveable/log15.v2"
)

// Server is a vendd server
type Server struct {
	ctx context.Context
	log log15.Logger

	httpServers []*http.Server
}

// NewServer creates a new vendd server for the given context
func NewServer(ctx context.Context) *Server {
	srv := &Server{
		ctx:         ctx,
		httpServers: make([]*http.Server, 0, 3),
	}
	if log, ok := ctx.Value("log").(log15.Logger); ok {
		srv.log = log
	} else {
		srv.log = log15.New()
		srv.log.SetHandler(log15.StderrHandler)
	}
	srv.log = srv.log.New(log15.Ctx{"pkg": "github.com/rezicom/vendd/pkg/server"})
	return srv
}

// RegisterService adds a service to the server
// It will serve the HTTP with the given service
func (s *Server) RegisterService(cfg config.ServiceConfig, handler http.Handler) error {
	srv := &http.Server{
		Addr:           cfg.Address,
		Handler:        handler,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}
	var err error
	srv.ReadTimeout, err = cfg.ReadTimeout.Duration()
	if err != nil {
		return fmt.Errorf("error parsing duration for server %s: %v", cfg.Address, err)
	}
	srv.WriteTimeout, err = cfg.WriteTimeout.Duration()
	if err != nil {
		return fmt.Errorf("error parsing duration for server %s: %v", cfg.Address, err)
	}
	s.httpServers = append(s.httpServers, srv)
	return nil
}

// Serve starts serving and blocks until shutdown or graceful handoff
func (s *Server) Serve() error {
	if len(s.httpServers) == 0 {
		return errors.New("no services registered")
	}
	pid := os.Getpid()
	for _, srv := range s.httpServers {
		s.log.Info("server listening", log15.Ctx{
			"address": srv.Addr,
			"PID":     pid,
		})
	}
	err := gracehttp.ServeWithOptions(
		s.httpServers,
		gracehttp.PreStartProcess(func() error {
			s.log.Info("graceful handoff, starting new process...", log15.Ctx{"PID": pid})
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("error serving HTTP: %v", err)
	}
	s.log.Info("server stopped", log15.Ctx{"PID": pid})
	return nil
}
