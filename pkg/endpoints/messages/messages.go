// Package messages is an in-memory message board served as a local endpoint.
package messages

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joeydtaylor/steeze-dispatch/pkg/core"
	"go.uber.org/zap"
)

// Name is the handler name manifests refer to.
const Name = "messages"

const defaultCapacity = 100

type Message struct {
	ID      int64      `json:"id"`
	Text    string     `json:"text"`
	Author  string     `json:"author,omitempty"`
	Created time.Time  `json:"created"`
	Updated *time.Time `json:"updated,omitempty"`
}

type Store struct {
	mu       sync.RWMutex
	next     int64
	order    []int64
	items    map[int64]Message
	capacity int
	log      *zap.Logger
	now      func() time.Time
}

var registerOnce sync.Once

// Register binds New under Name. Safe to call more than once.
func Register() {
	registerOnce.Do(func() { core.RegisterHandler(Name, New) })
}

// New is the handler factory. Options: capacity (positive integer, default 100).
func New(cfg core.HandlerConfig) (any, error) {
	capacity := defaultCapacity
	if v, ok := cfg.Options["capacity"]; ok {
		n, err := toInt64(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("messages: capacity must be a positive integer, got %v", v)
		}
		capacity = int(n)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		items:    map[int64]Message{},
		capacity: capacity,
		log:      log,
		now:      time.Now,
	}, nil
}

// Get lists every message, or one when id is given.
func (s *Store) Get(_ context.Context, p core.Params, _ core.RequestMeta) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if raw, ok := p["id"]; ok {
		id, err := toInt64(raw)
		if err != nil {
			return nil, core.NewFailure(http.StatusBadRequest, "id must be an integer")
		}
		m, ok := s.items[id]
		if !ok {
			return nil, core.NewFailure(http.StatusNotFound, "message not found")
		}
		return m, nil
	}

	out := make([]Message, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out, nil
}

func (s *Store) Post(_ context.Context, p core.Params, _ core.RequestMeta) (any, error) {
	text, err := requiredText(p)
	if err != nil {
		return nil, err
	}
	author, _ := p.GetString("author")

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) >= s.capacity {
		return nil, core.NewFailure(http.StatusConflict, "message store full")
	}
	s.next++
	m := Message{ID: s.next, Text: text, Author: strings.TrimSpace(author), Created: s.now().UTC()}
	s.items[m.ID] = m
	s.order = append(s.order, m.ID)
	s.log.Info("message created", zap.Int64("id", m.ID))
	return m, nil
}

func (s *Store) Put(_ context.Context, p core.Params, _ core.RequestMeta) (any, error) {
	id, err := requiredID(p)
	if err != nil {
		return nil, err
	}
	text, err := requiredText(p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[id]
	if !ok {
		return nil, core.NewFailure(http.StatusNotFound, "message not found")
	}
	now := s.now().UTC()
	m.Text = text
	m.Updated = &now
	s.items[id] = m
	return m, nil
}

func (s *Store) Delete(_ context.Context, p core.Params, _ core.RequestMeta) (any, error) {
	id, err := requiredID(p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return nil, core.NewFailure(http.StatusNotFound, "message not found")
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.log.Info("message deleted", zap.Int64("id", id))
	return map[string]any{"deleted": id}, nil
}

func requiredText(p core.Params) (string, error) {
	text, _ := p.GetString("text")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", core.NewFailure(http.StatusBadRequest, "text is required")
	}
	return text, nil
}

func requiredID(p core.Params) (int64, error) {
	raw, ok := p["id"]
	if !ok {
		return 0, core.NewFailure(http.StatusBadRequest, "id is required")
	}
	id, err := toInt64(raw)
	if err != nil {
		return 0, core.NewFailure(http.StatusBadRequest, "id must be an integer")
	}
	return id, nil
}

// toInt64 accepts the shapes an id takes across query strings, JSON bodies,
// TOML options and direct calls.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}
