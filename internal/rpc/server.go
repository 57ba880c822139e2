// Package rpc serves newline-delimited JSON-RPC 2.0 over a reader/writer
// pair, normally an editor host's stdio.
package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"notechat/internal/logging"
)

const (
	jsonRPCVersion = "2.0"
	rpcErrorCode   = -32000
	maxMessageSize = 10 * 1024 * 1024
)

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	APIVer  string          `json:"api_version,omitempty"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *ErrorPayload   `json:"error,omitempty"`
}

type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type Handler func(ctx context.Context, params json.RawMessage) (any, *Error)

type Error struct {
	Message string
	Data    any
}

type Server struct {
	apiVersion string
	reader     *bufio.Reader
	writer     *bufio.Writer
	mu         sync.Mutex
	handlers   map[string]Handler
	inflight   sync.WaitGroup
	logger     zerolog.Logger
}

func NewServer(apiVersion string, r io.Reader, w io.Writer, logger zerolog.Logger) *Server {
	return &Server{
		apiVersion: apiVersion,
		reader:     bufio.NewReader(r),
		writer:     bufio.NewWriter(w),
		handlers:   make(map[string]Handler),
		logger:     logger,
	}
}

func (s *Server) Register(method string, handler Handler) {
	s.handlers[method] = handler
}

// Serve reads requests until EOF and runs each handler on its own goroutine.
// It returns once the input is exhausted and every in-flight handler has
// responded.
func (s *Server) Serve(ctx context.Context) error {
	defer s.inflight.Wait()
	for {
		line, err := s.reader.ReadBytes('\n')
		if len(line) > 0 {
			s.dispatch(ctx, line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.logger.Error().Err(err).Msg("rpc.read_failed")
			return err
		}
	}
}

func (s *Server) dispatch(ctx context.Context, line []byte) {
	if len(line) > maxMessageSize {
		s.logger.Warn().Int("bytes", len(line)).Msg("rpc.message_too_large")
		s.sendError(nil, "message too large", nil)
		return
	}
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn().Err(err).Msg("rpc.invalid_json")
		s.sendError(nil, "invalid json", nil)
		return
	}
	if req.JSONRPC != jsonRPCVersion {
		s.logger.Warn().Str("version", req.JSONRPC).Msg("rpc.invalid_version")
		s.sendError(req.ID, "invalid jsonrpc version", nil)
		return
	}
	if req.APIVer != "" && req.APIVer != s.apiVersion {
		s.logger.Warn().Str("requested", req.APIVer).Str("expected", s.apiVersion).Msg("rpc.incompatible_version")
		s.sendError(req.ID, "incompatible api_version", map[string]string{"expected": s.apiVersion})
		return
	}
	handler, ok := s.handlers[req.Method]
	if !ok {
		s.logger.Warn().Str("method", req.Method).Msg("rpc.method_not_found")
		s.sendError(req.ID, fmt.Sprintf("method not found: %s", req.Method), nil)
		return
	}
	s.logger.Debug().
		Str("method", req.Method).
		Str("id", string(req.ID)).
		Interface("params", logging.RedactJSON(req.Params)).
		Msg("rpc.request")
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.handleRequest(ctx, req, handler)
	}()
}

func (s *Server) handleRequest(ctx context.Context, req Request, handler Handler) {
	result, err := handler(ctx, req.Params)
	if req.ID == nil {
		return
	}
	if err != nil {
		s.logger.Error().Str("method", req.Method).Str("id", string(req.ID)).Interface("error", logging.RedactAny(err.Data)).Msg("rpc.response_error")
		s.sendError(req.ID, err.Message, err.Data)
		return
	}
	s.logger.Debug().Str("method", req.Method).Str("id", string(req.ID)).Msg("rpc.response")
	s.send(Response{JSONRPC: jsonRPCVersion, ID: req.ID, Result: result})
}

// Notify sends a notification. Every notification carries a fresh
// notification_id so hosts can de-duplicate.
func (s *Server) Notify(method string, params any) {
	s.logger.Debug().Str("method", method).Interface("params", logging.RedactAny(params)).Msg("rpc.notify")
	s.send(Notification{
		JSONRPC: jsonRPCVersion,
		Method:  method,
		Params: map[string]any{
			"notification_id": uuid.NewString(),
			"payload":         params,
		},
	})
}

func (s *Server) sendError(id json.RawMessage, message string, data any) {
	s.send(Response{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &ErrorPayload{Code: rpcErrorCode, Message: message, Data: data},
	})
}

func (s *Server) send(payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("rpc.marshal_failed")
		return
	}
	_, _ = s.writer.Write(append(data, '\n'))
	_ = s.writer.Flush()
}
