package server_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/museum/pkg/llm"
	"github.com/xhad/museum/server"
)

func dial(t *testing.T, f *fixture) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

// readUntilResponse collects frames up to and including the final response.
func readUntilResponse(t *testing.T, conn *websocket.Conn) []server.Message {
	t.Helper()
	var frames []server.Message
	for {
		var msg server.Message
		require.NoError(t, conn.ReadJSON(&msg))
		frames = append(frames, msg)
		if msg.Type == server.MessageResponse || msg.Type == server.MessageError {
			return frames
		}
	}
}

func TestWebSocketStreamsAnswer(t *testing.T) {
	f := newFixture(t, nil)
	conn := dial(t, f)

	require.NoError(t, conn.WriteJSON(server.Message{Type: server.MessageQuestion, Content: "Tell me about the sword"}))
	frames := readUntilResponse(t, conn)

	require.GreaterOrEqual(t, len(frames), 2)
	assert.Equal(t, server.MessageStatus, frames[0].Type)

	var streamed strings.Builder
	for _, m := range frames[1 : len(frames)-1] {
		assert.Equal(t, server.MessageStream, m.Type)
		streamed.WriteString(m.Content)
	}
	last := frames[len(frames)-1]
	assert.Equal(t, server.MessageResponse, last.Type)
	assert.Equal(t, "It guards doors.", streamed.String())
	assert.Equal(t, streamed.String(), last.Content)

	info, ok := last.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, llm.SourceLLM, info["source"])
}

func TestWebSocketTemplateFallbackAndErrors(t *testing.T) {
	f := newFixture(t, nil)
	f.explainer.askErr = errors.New("model offline")
	conn := dial(t, f)

	require.NoError(t, conn.WriteJSON(server.Message{Type: server.MessageQuestion, Content: "   "}))
	frames := readUntilResponse(t, conn)
	assert.Equal(t, server.MessageError, frames[len(frames)-1].Type)

	require.NoError(t, conn.WriteJSON(server.Message{Type: "ping", Content: "x"}))
	frames = readUntilResponse(t, conn)
	assert.Equal(t, "unsupported message type: ping", frames[len(frames)-1].Content)

	// The connection survives bad frames and still answers questions.
	require.NoError(t, conn.WriteJSON(server.Message{Type: server.MessageQuestion, Content: "zzzz"}))
	frames = readUntilResponse(t, conn)
	last := frames[len(frames)-1]
	assert.Equal(t, server.MessageResponse, last.Type)
	assert.Equal(t, llm.NotFound, last.Content)
	info := last.Data.(map[string]any)
	assert.Equal(t, llm.SourceTemplate, info["source"])
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	f := newFixture(t, func(c *server.Config) { c.AllowedOrigins = []string{"http://gallery.local"} })

	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
