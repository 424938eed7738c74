// Package server exposes the Props pipeline over gRPC and WebSocket.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/winterSteve25/props/internal/store"
	"github.com/winterSteve25/props/pkg/core/cache"
	propserr "github.com/winterSteve25/props/pkg/core/error"
	propslog "github.com/winterSteve25/props/pkg/core/log"
	"github.com/winterSteve25/props/pkg/props/lexer"
	"github.com/winterSteve25/props/pkg/props/parser"
	"github.com/winterSteve25/props/pkg/props/pipeline"
	"github.com/winterSteve25/props/pkg/props/token"
)

// ServiceOptions configures a Service
type ServiceOptions struct {
	Logger         *propslog.Logger
	Recovery       parser.Recovery
	MaxSourceBytes int

	// History, when set, records every completed run
	History store.HistoryStore

	// CacheSize bounds the number of cached units; 0 disables caching
	CacheSize int
	CacheTTL  time.Duration
}

// Service runs sources through the pipeline on behalf of remote callers
type Service struct {
	pipeline *pipeline.Pipeline
	history  store.HistoryStore
	maxBytes int
	units    *cache.Cache[*pipeline.Unit]
	logger   *propslog.Logger
}

// NewService creates a Service
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = propslog.GetDefault()
	}
	s := &Service{
		pipeline: pipeline.New(pipeline.Options{Logger: logger, Recovery: opts.Recovery}),
		history:  opts.History,
		maxBytes: opts.MaxSourceBytes,
		logger:   logger.WithField("component", "service"),
	}
	if opts.CacheSize > 0 {
		s.units = cache.New[*pipeline.Unit](cache.Config{MaxItems: opts.CacheSize, TTL: opts.CacheTTL})
	}
	return s
}

// Parse runs source through the pipeline. Diagnostics are part of the
// returned unit; an error means the request itself could not be served.
// Repeated requests for the same name and source return the cached unit
// and are recorded once.
func (s *Service) Parse(ctx context.Context, name, source string) (*pipeline.Unit, error) {
	if err := s.checkSize(source); err != nil {
		return nil, err
	}
	if s.units == nil {
		return s.run(ctx, name, source)
	}

	unit, hit, err := s.units.GetOrSet(cacheKey(name, source), func() (*pipeline.Unit, error) {
		return s.run(ctx, name, source)
	})
	if hit {
		s.logger.WithRequestID(unit.ID).Debug("Served cached unit", propslog.Fields{"name": name})
	}
	return unit, err
}

func (s *Service) run(ctx context.Context, name, source string) (*pipeline.Unit, error) {
	unit, err := s.pipeline.RunNamed(ctx, name, source)
	if err != nil {
		return nil, err
	}

	if s.history != nil {
		if err := s.history.Record(ctx, store.RunFromUnit(unit)); err != nil {
			s.logger.WithRequestID(unit.ID).ErrorWithErr("Failed to record run", err)
		}
	}

	s.logger.WithRequestID(unit.ID).Info("Parsed source", propslog.Fields{
		"name":        name,
		"nodes":       len(unit.Nodes),
		"diagnostics": len(unit.Diagnostics),
	})
	return unit, nil
}

func cacheKey(name, source string) string {
	sum := sha256.Sum256([]byte(name + "\x00" + source))
	return hex.EncodeToString(sum[:])
}

// Tokens lexes source
func (s *Service) Tokens(source string) ([]token.Item, error) {
	if err := s.checkSize(source); err != nil {
		return nil, err
	}
	return lexer.Lex(source), nil
}

// History returns the configured history store, or nil
func (s *Service) History() store.HistoryStore {
	return s.history
}

// CacheStats reports the unit cache counters; all zero when caching is off
func (s *Service) CacheStats() map[string]interface{} {
	if s.units == nil {
		return map[string]interface{}{"enabled": false}
	}
	hits, misses, rate := s.units.Stats()
	return map[string]interface{}{
		"enabled":  true,
		"size":     s.units.Size(),
		"hits":     hits,
		"misses":   misses,
		"hit_rate": rate,
	}
}

// Close releases the cache and the history store
func (s *Service) Close() error {
	if s.units != nil {
		s.units.Close()
	}
	if s.history != nil {
		return s.history.Close()
	}
	return nil
}

func (s *Service) checkSize(source string) error {
	if s.maxBytes > 0 && len(source) > s.maxBytes {
		return propserr.New("source exceeds the maximum size").
			WithCode(propserr.CodeTooLarge).
			WithOperation("service.Parse").
			WithDetail("bytes", len(source)).
			WithDetail("max_bytes", s.maxBytes)
	}
	return nil
}

// ExportTokens converts lexed items into plain maps
func ExportTokens(items []token.Item) []interface{} {
	out := make([]interface{}, len(items))
	for i, it := range items {
		out[i] = map[string]interface{}{
			"kind":   it.Kind.String(),
			"token":  it.Token.String(),
			"line":   it.Line,
			"column": it.Column,
		}
	}
	return out
}
