package logctx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_AddsContextGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewJSONHandler(&buf, nil)}).With(slog.String("component", "test"))

	state := "initializing"
	ctx := WithConnData(context.Background(), &ConnData{ConnID: "c1", Client: "editor", State: func() string { return state }})
	ctx = WithRPCMessage(ctx, &RPCMessage{Method: "initialize", ID: "1", Type: "request"})

	state = "initialized"
	log.InfoContext(ctx, "engine.handle_request.ok")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "test", rec["component"])
	assert.Equal(t, map[string]any{"id": "c1", "client": "editor", "state": "initialized"}, rec["conn"])
	assert.Equal(t, map[string]any{"method": "initialize", "id": "1", "type": "request"}, rec["rpc"])
}

func TestHandler_NoContext(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewJSONHandler(&buf, nil)})
	log.Info("plain")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotContains(t, rec, "conn")
	assert.NotContains(t, rec, "rpc")
}
