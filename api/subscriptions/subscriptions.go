// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/api/utils"
	"github.com/vestry-labs/vestry/log"
	"github.com/vestry-labs/vestry/logdb"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 7 / 10
	writeWait  = 10 * time.Second
)

// Source tells the head block and signals the commits after it.
type Source interface {
	Head() uint32
	Ticked() <-chan struct{}
}

// Subscriptions streams new log entries over websocket.
type Subscriptions struct {
	src      Source
	db       *logdb.LogDB
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex // guards closed and wg.Add against Close
	closed   bool
}

var errClosed = errors.New("subscriptions closed")

func New(src Source, db *logdb.LogDB, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		src: src,
		db:  db,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) parseReader(req *http.Request) (*logReader, error) {
	query := req.URL.Query()

	r := &logReader{db: s.db}
	switch kind := query.Get("kind"); kind {
	case "":
		r.votes, r.grants = true, true
	case TypeVote:
		r.votes = true
	case TypeGrant:
		r.grants = true
	default:
		return nil, utils.BadRequest(errors.Errorf("kind: unknown kind %q", kind))
	}
	if acc := query.Get("account"); acc != "" {
		addr, err := utils.ParseAddress("account", acc)
		if err != nil {
			return nil, err
		}
		r.account = &addr
	}

	if pos := query.Get("pos"); pos != "" {
		// everything up to pos was seen
		n, err := utils.ParseBlock("pos", pos, 0)
		if err != nil {
			return nil, err
		}
		if n > s.src.Head() {
			return nil, utils.BadRequest(errors.Errorf("pos: %d is beyond the head", n))
		}
		r.from = n + 1
		return r, nil
	}
	r.from = s.src.Head()
	// skip what is already logged
	if _, err := r.Read(req.Context()); err != nil {
		return nil, err
	}
	return r, nil
}

// track counts a new subscription, unless closed.
func (s *Subscriptions) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Subscriptions) handleSubscribeLogs(w http.ResponseWriter, req *http.Request) error {
	if !s.track() {
		return utils.HTTPError(errClosed, http.StatusServiceUnavailable)
	}
	defer s.wg.Done()

	reader, err := s.parseReader(req)
	if err != nil {
		return err
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader already responded
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		// pongs and close frames are handled while reading
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.pipe(conn, reader, closed); err != nil {
		logger.Debug("subscription closed", "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader *logReader, closed <-chan struct{}) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		ticked := s.src.Ticked()
		msgs, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}

		select {
		case <-s.done:
			return conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"),
				time.Now().Add(writeWait))
		case <-closed:
			return nil
		case <-ticked:
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close ends all subscriptions and waits for them to return.
func (s *Subscriptions) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/logs").
		Methods(http.MethodGet).
		Name("WS /subscriptions/logs").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeLogs))
}
