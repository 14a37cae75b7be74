package registry

import "github.com/ggoodman/lsp-server-go/lsp"

// Descriptors of the lifecycle and general methods.
var (
	Initialize  = RequestInfo[lsp.InitializeParams, lsp.InitializeResult]{Method: lsp.MethodInitialize}
	Initialized = NotificationInfo[lsp.InitializedParams]{Method: lsp.MethodInitialized}
	Shutdown    = RequestInfo[Void, Void]{Method: lsp.MethodShutdown}
	Exit        = NotificationInfo[Void]{Method: lsp.MethodExit}

	CancelRequest = NotificationInfo[lsp.CancelParams]{Method: lsp.MethodCancelRequest, Direction: Both}
	Progress      = NotificationInfo[lsp.ProgressParams]{Method: lsp.MethodProgress, Direction: Both}
	SetTrace      = NotificationInfo[lsp.SetTraceParams]{Method: lsp.MethodSetTrace}
	LogTrace      = NotificationInfo[lsp.LogTraceParams]{Method: lsp.MethodLogTrace, Direction: ServerToClient}

	LogMessage         = NotificationInfo[lsp.LogMessageParams]{Method: lsp.MethodWindowLogMessage, Direction: ServerToClient}
	ShowMessage        = NotificationInfo[lsp.ShowMessageParams]{Method: lsp.MethodWindowShowMessage, Direction: ServerToClient}
	ShowMessageRequest = RequestInfo[lsp.ShowMessageRequestParams, lsp.Nullable[lsp.MessageActionItem]]{
		Method:    lsp.MethodWindowShowMessageRequest,
		Direction: ServerToClient,
	}
)

// Builtin returns the entries of the methods every server understands. Pass
// them to New together with feature methods to build an extended registry.
func Builtin() []Entry {
	return []Entry{
		Initialize.Entry(),
		Initialized.Entry(),
		Shutdown.Entry(),
		Exit.Entry(),
		CancelRequest.Entry(),
		Progress.Entry(),
		SetTrace.Entry(),
		LogTrace.Entry(),
		LogMessage.Entry(),
		ShowMessage.Entry(),
		ShowMessageRequest.Entry(),
	}
}
