package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"go.klb.dev/clipflow/internal/history"
	"go.klb.dev/clipflow/internal/message"
	"go.klb.dev/clipflow/internal/service"
	"go.klb.dev/clipflow/internal/wire"
)

// Backend executes IPC requests. *service.Service implements it.
type Backend interface {
	List(ctx context.Context, query string) ([]history.Item, error)
	CopyMatch(ctx context.Context, query string, index int) (string, error)
	DeleteMatch(ctx context.Context, query string, index int) (string, error)
	Clear(ctx context.Context) error
	Add(ctx context.Context, content string) error
	Status(ctx context.Context) (service.Status, error)
}

// Server answers IPC requests from CLI commands.
type Server struct {
	backend Backend
	version string

	mu    sync.Mutex
	conns map[*wire.Conn]struct{}
	wg    sync.WaitGroup
}

// NewServer returns a server dispatching to b. version is reported in
// STATUS responses.
func NewServer(b Backend, version string) *Server {
	return &Server{
		backend: b,
		version: version,
		conns:   make(map[*wire.Conn]struct{}),
	}
}

// Serve accepts connections on ln until ctx is cancelled, then closes ln
// and every open connection. It returns nil on a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer s.closeAll()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("ipc accept failed", "err", err)
			return err
		}
		wc := wire.New(conn)
		s.track(wc, true)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.track(wc, false)
			s.handleConn(ctx, wc)
		}()
	}
}

func (s *Server) track(wc *wire.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[wc] = struct{}{}
	} else {
		delete(s.conns, wc)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	for wc := range s.conns {
		_ = wc.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) handleConn(ctx context.Context, wc *wire.Conn) {
	defer wc.Close()
	for {
		req, err := wc.ReadMsg()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				slog.Debug("ipc read failed", "err", err)
				_ = wc.WriteMsg(message.Errorf("bad request: %v", err))
			}
			return
		}
		resp := s.handle(ctx, req)
		if err := wc.WriteMsg(resp); err != nil {
			slog.Debug("ipc write failed", "err", err)
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, req *message.Message) *message.Message {
	slog.Debug("ipc request", "type", req.Type)
	switch req.Type {
	case message.TypePing:
		return &message.Message{Type: message.TypePong}

	case message.TypeList:
		items, err := s.backend.List(ctx, req.Query)
		if err != nil {
			return message.Errorf("%v", err)
		}
		out := make([]message.Item, len(items))
		for i, it := range items {
			out[i] = message.NewItem(it.Content, it.CreatedAt)
		}
		return &message.Message{Type: message.TypeItems, Items: out}

	case message.TypeCopy:
		content, err := s.backend.CopyMatch(ctx, req.Query, req.Index)
		return contentReply(content, err)

	case message.TypeDelete:
		content, err := s.backend.DeleteMatch(ctx, req.Query, req.Index)
		return contentReply(content, err)

	case message.TypeClear:
		if err := s.backend.Clear(ctx); err != nil {
			return message.Errorf("%v", err)
		}
		return &message.Message{Type: message.TypeOK}

	case message.TypeAdd:
		text := req.TextPayload()
		if text == "" {
			return message.Errorf("empty content")
		}
		if err := s.backend.Add(ctx, text); err != nil {
			return message.Errorf("%v", err)
		}
		return &message.Message{Type: message.TypeOK}

	case message.TypeStatus:
		st, err := s.backend.Status(ctx)
		if err != nil {
			return message.Errorf("%v", err)
		}
		return &message.Message{
			Type: message.TypeStatusResponse,
			Status: &message.StatusInfo{
				State:     st.State.String(),
				Items:     st.Items,
				MaxItems:  st.MaxItems,
				Store:     st.Store,
				Clipboard: st.Clipboard,
				Query:     st.Query,
				Started:   st.Started,
				Version:   s.version,
			},
		}

	default:
		return message.Errorf("unknown request type %q", req.Type)
	}
}

func contentReply(content string, err error) *message.Message {
	if err != nil {
		return message.Errorf("%v", err)
	}
	return &message.Message{
		Type:  message.TypeOK,
		Items: []message.Item{message.NewItem(content, time.Time{})},
	}
}
