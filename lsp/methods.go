package lsp

// Method is an LSP method identifier used in JSON-RPC messages.
type Method string

// Lifecycle and general methods handled by the protocol core.
const (
	// Initialization
	MethodInitialize  Method = "initialize"
	MethodInitialized Method = "initialized"

	// Shutdown
	MethodShutdown Method = "shutdown"
	MethodExit     Method = "exit"

	// General
	MethodCancelRequest Method = "$/cancelRequest"
	MethodSetTrace      Method = "$/setTrace"
	MethodLogTrace      Method = "$/logTrace"
	MethodProgress      Method = "$/progress"

	// Window
	MethodWindowLogMessage         Method = "window/logMessage"
	MethodWindowShowMessage        Method = "window/showMessage"
	MethodWindowShowMessageRequest Method = "window/showMessageRequest"
)

// IsImplementationDependent reports whether the method uses the `$/` prefix.
// Servers and clients may ignore such notifications, and must answer such
// requests with MethodNotFound when they do not implement them.
func (m Method) IsImplementationDependent() bool {
	return len(m) >= 2 && m[0] == '$' && m[1] == '/'
}

func (m Method) String() string { return string(m) }
