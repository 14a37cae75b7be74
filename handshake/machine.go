package handshake

import (
	"errors"
	"sync"

	"github.com/ggoodman/lsp-server-go/lsp"
)

// ExitReport describes how a session ended.
type ExitReport struct {
	// From is the state the session was in when it exited.
	From State
	// Abnormal is true when exit happened without a prior shutdown.
	Abnormal bool
	// Reason is "exit" for the protocol notification, or the reason given
	// to ForceExit.
	Reason string
}

// Err returns ErrAbnormalExit for abnormal exits and nil otherwise.
func (r ExitReport) Err() error {
	if r.Abnormal {
		return ErrAbnormalExit
	}
	return nil
}

// Machine holds the lifecycle state of one connection. All methods are safe
// for concurrent use; transitions are applied one at a time.
type Machine struct {
	mu     sync.Mutex
	state  State
	client *lsp.InitializeParams
	server *lsp.InitializeResult
	report *ExitReport
	onExit []func(ExitReport)
	done   chan struct{}
}

// NewMachine returns a Machine in Uninitialized.
func NewMachine() *Machine {
	return &Machine{done: make(chan struct{})}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Check returns the outcome ev would have without applying it.
func (m *Machine) Check(ev Event) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Transition(m.state, ev)
}

// Apply applies ev. The state only changes when the verdict is Accept.
//
// An initialize request applied here captures empty params; use Initialize
// to record the client's.
func (m *Machine) Apply(ev Event) Outcome {
	if ev == EventInitializeRequest {
		return m.Initialize(nil)
	}
	return m.apply(ev, "exit", nil)
}

// Initialize applies an initialize request carrying params. Parameters are
// captured only when the transition is accepted, so a repeated initialize
// never replaces the negotiated capabilities.
func (m *Machine) Initialize(params *lsp.InitializeParams) Outcome {
	if params == nil {
		params = &lsp.InitializeParams{}
	}
	return m.apply(EventInitializeRequest, "", params)
}

// ForceExit moves the session to Exited from outside the protocol. It
// reports whether the call caused the transition.
func (m *Machine) ForceExit(reason string) bool {
	out := m.apply(EventForcedExit, reason, nil)
	return out.Verdict == Accept
}

func (m *Machine) apply(ev Event, reason string, params *lsp.InitializeParams) Outcome {
	m.mu.Lock()
	from := m.state
	out := Transition(from, ev)
	if out.Verdict != Accept {
		m.mu.Unlock()
		return out
	}
	m.state = out.Next
	if ev == EventInitializeRequest {
		m.client = params
	}

	var hooks []func(ExitReport)
	var report ExitReport
	if out.Next == Exited && from != Exited {
		report = ExitReport{From: from, Abnormal: out.Abnormal, Reason: reason}
		m.report = &report
		hooks = m.onExit
		m.onExit = nil
		close(m.done)
	}
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(report)
	}
	return out
}

// ErrNotInitializing is returned by Respond outside the Initializing state.
var ErrNotInitializing = errors.New("initialize result recorded outside initializing state")

// Respond records the server's initialize result. It does not change state:
// the session stays in Initializing until the client sends initialized.
func (m *Machine) Respond(result *lsp.InitializeResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Initializing || m.server != nil {
		return ErrNotInitializing
	}
	m.server = result
	return nil
}

// ClientParams returns the captured initialize params.
func (m *Machine) ClientParams() (*lsp.InitializeParams, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client, m.client != nil
}

// ClientCapabilities returns the capabilities the client announced.
func (m *Machine) ClientCapabilities() (lsp.ClientCapabilities, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return lsp.ClientCapabilities{}, false
	}
	return m.client.Capabilities, true
}

// ServerCapabilities returns the capabilities recorded by Respond.
func (m *Machine) ServerCapabilities() (lsp.ServerCapabilities, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.server == nil {
		return lsp.ServerCapabilities{}, false
	}
	return m.server.Capabilities, true
}

// Done is closed when the session reaches Exited.
func (m *Machine) Done() <-chan struct{} { return m.done }

// Exit returns the exit report once the session has exited.
func (m *Machine) Exit() (ExitReport, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.report == nil {
		return ExitReport{}, false
	}
	return *m.report, true
}

// Abnormal reports whether the session exited without a prior shutdown.
func (m *Machine) Abnormal() bool {
	r, ok := m.Exit()
	return ok && r.Abnormal
}

// ExitCode is the process exit code the protocol prescribes: 0 after a
// shutdown, 1 otherwise.
func (m *Machine) ExitCode() int {
	r, ok := m.Exit()
	if !ok || r.Abnormal {
		return 1
	}
	return 0
}

// OnExit registers fn to run once the session exits, on the goroutine that
// caused the exit. If the session already exited, fn runs immediately.
func (m *Machine) OnExit(fn func(ExitReport)) {
	m.mu.Lock()
	if m.report == nil {
		m.onExit = append(m.onExit, fn)
		m.mu.Unlock()
		return
	}
	report := *m.report
	m.mu.Unlock()
	fn(report)
}
