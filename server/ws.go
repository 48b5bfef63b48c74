package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/pkg/llm"
)

// Message is the websocket frame exchanged in both directions. Clients send
// questions as {"type":"question","content":"..."}; the server replies with
// status, stream, response and error frames.
type Message struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Data    any    `json:"data,omitempty"`
}

const (
	MessageQuestion = "question"
	MessageStatus   = "status"
	MessageStream   = "stream"
	MessageResponse = "response"
	MessageError    = "error"
)

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" ||
				slices.Contains(s.config.AllowedOrigins, "*") ||
				slices.Contains(s.config.AllowedOrigins, origin)
		},
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	logger := s.logger.With(zap.String("request_id", RequestID(ctx)))

	// Questions are answered one at a time; frames of different answers never
	// interleave.
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket read ended", zap.Error(err))
			}
			return
		}
		if msg.Type != "" && msg.Type != MessageQuestion {
			s.sendMessage(conn, MessageError, "unsupported message type: "+msg.Type)
			continue
		}
		if strings.TrimSpace(msg.Content) == "" {
			s.sendMessage(conn, MessageError, "question is required")
			continue
		}
		if !s.limiter.Allow() {
			s.sendMessage(conn, MessageError, "rate limit exceeded")
			continue
		}
		if err := s.handleMessage(ctx, conn, msg.Content); err != nil {
			logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, conn *websocket.Conn, question string) error {
	if err := s.sendMessage(conn, MessageStatus, "Searching artifacts..."); err != nil {
		return err
	}
	docs := s.retrieve(ctx, question)

	stream, err := s.config.Explainer.AskStream(ctx, question, docs)
	if err != nil {
		if !errors.Is(err, llm.ErrDisabled) {
			s.logger.Warn("stream fell back to template", zap.Error(err))
		}
		return s.sendFull(conn, llm.TemplateAnswer(question, docs), llm.SourceTemplate, docs)
	}

	var answer strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			s.logger.Warn("stream failed", zap.Error(chunk.Err))
			for range stream {
			}
			return s.sendMessage(conn, MessageError, chunk.Err.Error())
		}
		answer.WriteString(chunk.Content)
		if err := s.sendMessage(conn, MessageStream, chunk.Content); err != nil {
			for range stream {
			}
			return err
		}
	}
	return s.sendFull(conn, answer.String(), llm.SourceLLM, docs)
}

func (s *Server) sendFull(conn *websocket.Conn, answer, source string, docs []models.Record) error {
	return conn.WriteJSON(Message{
		Type:    MessageResponse,
		Content: answer,
		Data:    models.AnswerInfo{Sources: llm.Sources(docs), Source: source},
	})
}

func (s *Server) sendMessage(conn *websocket.Conn, msgType string, content string) error {
	return conn.WriteJSON(Message{Type: msgType, Content: content})
}
