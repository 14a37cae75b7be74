package handshake

import (
	"testing"

	"github.com/ggoodman/lsp-server-go/lsp"
	"github.com/stretchr/testify/assert"
)

func TestCheckOutbound(t *testing.T) {
	tests := []struct {
		state     State
		method    lsp.Method
		isRequest bool
		want      error
	}{
		{Uninitialized, lsp.MethodWindowLogMessage, false, ErrServerNotInitialized},
		{Initializing, lsp.MethodWindowLogMessage, false, nil},
		{Initializing, lsp.MethodWindowShowMessageRequest, true, nil},
		{Initializing, "workspace/configuration", true, ErrServerNotInitialized},
		{Initialized, "workspace/configuration", true, nil},
		{ShuttingDown, lsp.MethodWindowLogMessage, false, nil},
		{ShuttingDown, lsp.MethodWindowShowMessageRequest, true, ErrInvalidRequest},
		{Exited, lsp.MethodWindowLogMessage, false, ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.state.String()+"/"+string(tt.method), func(t *testing.T) {
			err := CheckOutbound(tt.state, tt.method, tt.isRequest)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
