package lsp

import "encoding/json"

// ClientCapabilities describes what the client supports. The handshake
// transports and stores it without interpreting its content.
type ClientCapabilities struct {
	Workspace        Optional[WorkspaceClientCapabilities]    `json:"workspace,omitzero"`
	TextDocument     Optional[TextDocumentClientCapabilities] `json:"textDocument,omitzero"`
	NotebookDocument json.RawMessage                          `json:"notebookDocument,omitempty"`
	Window           Optional[WindowClientCapabilities]       `json:"window,omitzero"`
	General          Optional[GeneralClientCapabilities]      `json:"general,omitzero"`
	Experimental     json.RawMessage                          `json:"experimental,omitempty"`

	// Extra holds capability members not modelled above.
	Extra Extra `json:"-"`
}

func (c *ClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain ClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c ClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain ClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

// DynamicRegistration is the capability record of features that only declare
// whether they support dynamic registration.
type DynamicRegistration struct {
	DynamicRegistration Optional[bool] `json:"dynamicRegistration,omitzero"`

	Extra Extra `json:"-"`
}

func (c *DynamicRegistration) UnmarshalJSON(data []byte) error {
	type plain DynamicRegistration
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c DynamicRegistration) MarshalJSON() ([]byte, error) {
	type plain DynamicRegistration
	return marshalOpen(plain(c), c.Extra)
}

type WorkspaceEditClientCapabilities struct {
	DocumentChanges    Optional[bool]     `json:"documentChanges,omitzero"`
	ResourceOperations Optional[[]string] `json:"resourceOperations,omitzero"`
	FailureHandling    Optional[string]   `json:"failureHandling,omitzero"`

	Extra Extra `json:"-"`
}

func (c *WorkspaceEditClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain WorkspaceEditClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c WorkspaceEditClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain WorkspaceEditClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

type DidChangeWatchedFilesClientCapabilities struct {
	DynamicRegistration    Optional[bool] `json:"dynamicRegistration,omitzero"`
	RelativePatternSupport Optional[bool] `json:"relativePatternSupport,omitzero"`

	Extra Extra `json:"-"`
}

func (c *DidChangeWatchedFilesClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain DidChangeWatchedFilesClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c DidChangeWatchedFilesClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain DidChangeWatchedFilesClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

// WorkspaceClientCapabilities are the workspace-specific client capabilities.
type WorkspaceClientCapabilities struct {
	ApplyEdit              Optional[bool]                                    `json:"applyEdit,omitzero"`
	WorkspaceEdit          Optional[WorkspaceEditClientCapabilities]         `json:"workspaceEdit,omitzero"`
	DidChangeConfiguration Optional[DynamicRegistration]                     `json:"didChangeConfiguration,omitzero"`
	DidChangeWatchedFiles  Optional[DidChangeWatchedFilesClientCapabilities] `json:"didChangeWatchedFiles,omitzero"`
	Symbol                 Optional[DynamicRegistration]                     `json:"symbol,omitzero"`
	ExecuteCommand         Optional[DynamicRegistration]                     `json:"executeCommand,omitzero"`
	WorkspaceFolders       Optional[bool]                                    `json:"workspaceFolders,omitzero"`
	Configuration          Optional[bool]                                    `json:"configuration,omitzero"`

	Extra Extra `json:"-"`
}

func (c *WorkspaceClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain WorkspaceClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c WorkspaceClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain WorkspaceClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

type TextDocumentSyncClientCapabilities struct {
	DynamicRegistration Optional[bool] `json:"dynamicRegistration,omitzero"`
	WillSave            Optional[bool] `json:"willSave,omitzero"`
	WillSaveWaitUntil   Optional[bool] `json:"willSaveWaitUntil,omitzero"`
	DidSave             Optional[bool] `json:"didSave,omitzero"`

	Extra Extra `json:"-"`
}

func (c *TextDocumentSyncClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain TextDocumentSyncClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c TextDocumentSyncClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain TextDocumentSyncClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

// MarkupKind is the format of documentation strings.
type MarkupKind string

const (
	MarkupKindPlainText MarkupKind = "plaintext"
	MarkupKindMarkdown  MarkupKind = "markdown"
)

type CompletionItemCapabilities struct {
	SnippetSupport          Optional[bool]         `json:"snippetSupport,omitzero"`
	CommitCharactersSupport Optional[bool]         `json:"commitCharactersSupport,omitzero"`
	DocumentationFormat     Optional[[]MarkupKind] `json:"documentationFormat,omitzero"`
	DeprecatedSupport       Optional[bool]         `json:"deprecatedSupport,omitzero"`
	PreselectSupport        Optional[bool]         `json:"preselectSupport,omitzero"`

	Extra Extra `json:"-"`
}

func (c *CompletionItemCapabilities) UnmarshalJSON(data []byte) error {
	type plain CompletionItemCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c CompletionItemCapabilities) MarshalJSON() ([]byte, error) {
	type plain CompletionItemCapabilities
	return marshalOpen(plain(c), c.Extra)
}

type CompletionClientCapabilities struct {
	DynamicRegistration Optional[bool]                       `json:"dynamicRegistration,omitzero"`
	CompletionItem      Optional[CompletionItemCapabilities] `json:"completionItem,omitzero"`
	ContextSupport      Optional[bool]                       `json:"contextSupport,omitzero"`

	Extra Extra `json:"-"`
}

func (c *CompletionClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain CompletionClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c CompletionClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain CompletionClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

type HoverClientCapabilities struct {
	DynamicRegistration Optional[bool]         `json:"dynamicRegistration,omitzero"`
	ContentFormat       Optional[[]MarkupKind] `json:"contentFormat,omitzero"`

	Extra Extra `json:"-"`
}

func (c *HoverClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain HoverClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c HoverClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain HoverClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

type DefinitionClientCapabilities struct {
	DynamicRegistration Optional[bool] `json:"dynamicRegistration,omitzero"`
	LinkSupport         Optional[bool] `json:"linkSupport,omitzero"`

	Extra Extra `json:"-"`
}

func (c *DefinitionClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain DefinitionClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c DefinitionClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain DefinitionClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

type PublishDiagnosticsClientCapabilities struct {
	RelatedInformation     Optional[bool] `json:"relatedInformation,omitzero"`
	VersionSupport         Optional[bool] `json:"versionSupport,omitzero"`
	CodeDescriptionSupport Optional[bool] `json:"codeDescriptionSupport,omitzero"`
	DataSupport            Optional[bool] `json:"dataSupport,omitzero"`

	Extra Extra `json:"-"`
}

func (c *PublishDiagnosticsClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain PublishDiagnosticsClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c PublishDiagnosticsClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain PublishDiagnosticsClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

// TextDocumentClientCapabilities are the text-document-specific client
// capabilities.
type TextDocumentClientCapabilities struct {
	Synchronization    Optional[TextDocumentSyncClientCapabilities]   `json:"synchronization,omitzero"`
	Completion         Optional[CompletionClientCapabilities]         `json:"completion,omitzero"`
	Hover              Optional[HoverClientCapabilities]              `json:"hover,omitzero"`
	Definition         Optional[DefinitionClientCapabilities]         `json:"definition,omitzero"`
	References         Optional[DynamicRegistration]                  `json:"references,omitzero"`
	PublishDiagnostics Optional[PublishDiagnosticsClientCapabilities] `json:"publishDiagnostics,omitzero"`

	Extra Extra `json:"-"`
}

func (c *TextDocumentClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain TextDocumentClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c TextDocumentClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain TextDocumentClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

type MessageActionItemCapabilities struct {
	AdditionalPropertiesSupport Optional[bool] `json:"additionalPropertiesSupport,omitzero"`

	Extra Extra `json:"-"`
}

func (c *MessageActionItemCapabilities) UnmarshalJSON(data []byte) error {
	type plain MessageActionItemCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c MessageActionItemCapabilities) MarshalJSON() ([]byte, error) {
	type plain MessageActionItemCapabilities
	return marshalOpen(plain(c), c.Extra)
}

type ShowMessageRequestClientCapabilities struct {
	MessageActionItem Optional[MessageActionItemCapabilities] `json:"messageActionItem,omitzero"`

	Extra Extra `json:"-"`
}

func (c *ShowMessageRequestClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain ShowMessageRequestClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c ShowMessageRequestClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain ShowMessageRequestClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

type ShowDocumentClientCapabilities struct {
	Support bool `json:"support" jsonschema:"required"`

	Extra Extra `json:"-"`
}

func (c *ShowDocumentClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain ShowDocumentClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c ShowDocumentClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain ShowDocumentClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

// WindowClientCapabilities are the window-specific client capabilities.
type WindowClientCapabilities struct {
	WorkDoneProgress Optional[bool]                                 `json:"workDoneProgress,omitzero"`
	ShowMessage      Optional[ShowMessageRequestClientCapabilities] `json:"showMessage,omitzero"`
	ShowDocument     Optional[ShowDocumentClientCapabilities]       `json:"showDocument,omitzero"`

	Extra Extra `json:"-"`
}

func (c *WindowClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain WindowClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c WindowClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain WindowClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

// PositionEncodingKind names how character offsets are counted.
type PositionEncodingKind string

const (
	PositionEncodingUTF8  PositionEncodingKind = "utf-8"
	PositionEncodingUTF16 PositionEncodingKind = "utf-16"
	PositionEncodingUTF32 PositionEncodingKind = "utf-32"
)

type RegularExpressionsClientCapabilities struct {
	Engine  string           `json:"engine" jsonschema:"required"`
	Version Optional[string] `json:"version,omitzero"`

	Extra Extra `json:"-"`
}

func (c *RegularExpressionsClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain RegularExpressionsClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c RegularExpressionsClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain RegularExpressionsClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

type MarkdownClientCapabilities struct {
	Parser      string             `json:"parser" jsonschema:"required"`
	Version     Optional[string]   `json:"version,omitzero"`
	AllowedTags Optional[[]string] `json:"allowedTags,omitzero"`

	Extra Extra `json:"-"`
}

func (c *MarkdownClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain MarkdownClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c MarkdownClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain MarkdownClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

type StaleRequestSupportClientCapabilities struct {
	Cancel                 bool     `json:"cancel" jsonschema:"required"`
	RetryOnContentModified []string `json:"retryOnContentModified" jsonschema:"required"`

	Extra Extra `json:"-"`
}

func (c *StaleRequestSupportClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain StaleRequestSupportClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c StaleRequestSupportClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain StaleRequestSupportClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

// GeneralClientCapabilities are client capabilities not tied to a feature area.
type GeneralClientCapabilities struct {
	PositionEncodings   Optional[[]PositionEncodingKind]                `json:"positionEncodings,omitzero"`
	Markdown            Optional[MarkdownClientCapabilities]            `json:"markdown,omitzero"`
	RegularExpressions  Optional[RegularExpressionsClientCapabilities]  `json:"regularExpressions,omitzero"`
	StaleRequestSupport Optional[StaleRequestSupportClientCapabilities] `json:"staleRequestSupport,omitzero"`

	Extra Extra `json:"-"`
}

func (c *GeneralClientCapabilities) UnmarshalJSON(data []byte) error {
	type plain GeneralClientCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c GeneralClientCapabilities) MarshalJSON() ([]byte, error) {
	type plain GeneralClientCapabilities
	return marshalOpen(plain(c), c.Extra)
}

// SupportsPositionEncoding reports whether the client listed enc. A client
// that lists nothing supports UTF-16 only.
func (c ClientCapabilities) SupportsPositionEncoding(enc PositionEncodingKind) bool {
	general, ok := c.General.Get()
	if !ok {
		return enc == PositionEncodingUTF16
	}
	encodings, ok := general.PositionEncodings.Get()
	if !ok || len(encodings) == 0 {
		return enc == PositionEncodingUTF16
	}
	for _, e := range encodings {
		if e == enc {
			return true
		}
	}
	return false
}

// WorkDoneProgressOptions is embedded in provider options that support
// progress reporting.
type WorkDoneProgressOptions struct {
	WorkDoneProgress Optional[bool] `json:"workDoneProgress,omitzero"`

	Extra Extra `json:"-"`
}

func (c *WorkDoneProgressOptions) UnmarshalJSON(data []byte) error {
	type plain WorkDoneProgressOptions
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c WorkDoneProgressOptions) MarshalJSON() ([]byte, error) {
	type plain WorkDoneProgressOptions
	return marshalOpen(plain(c), c.Extra)
}

type HoverOptions = WorkDoneProgressOptions
type DefinitionOptions = WorkDoneProgressOptions
type ReferenceOptions = WorkDoneProgressOptions
type WorkspaceSymbolOptions = WorkDoneProgressOptions

type DocumentSymbolOptions struct {
	WorkDoneProgress Optional[bool]   `json:"workDoneProgress,omitzero"`
	Label            Optional[string] `json:"label,omitzero"`

	Extra Extra `json:"-"`
}

func (c *DocumentSymbolOptions) UnmarshalJSON(data []byte) error {
	type plain DocumentSymbolOptions
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c DocumentSymbolOptions) MarshalJSON() ([]byte, error) {
	type plain DocumentSymbolOptions
	return marshalOpen(plain(c), c.Extra)
}

type CompletionOptions struct {
	WorkDoneProgress    Optional[bool]     `json:"workDoneProgress,omitzero"`
	TriggerCharacters   Optional[[]string] `json:"triggerCharacters,omitzero"`
	AllCommitCharacters Optional[[]string] `json:"allCommitCharacters,omitzero"`
	ResolveProvider     Optional[bool]     `json:"resolveProvider,omitzero"`

	Extra Extra `json:"-"`
}

func (c *CompletionOptions) UnmarshalJSON(data []byte) error {
	type plain CompletionOptions
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c CompletionOptions) MarshalJSON() ([]byte, error) {
	type plain CompletionOptions
	return marshalOpen(plain(c), c.Extra)
}

type CodeActionOptions struct {
	WorkDoneProgress Optional[bool]     `json:"workDoneProgress,omitzero"`
	CodeActionKinds  Optional[[]string] `json:"codeActionKinds,omitzero"`
	ResolveProvider  Optional[bool]     `json:"resolveProvider,omitzero"`

	Extra Extra `json:"-"`
}

func (c *CodeActionOptions) UnmarshalJSON(data []byte) error {
	type plain CodeActionOptions
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c CodeActionOptions) MarshalJSON() ([]byte, error) {
	type plain CodeActionOptions
	return marshalOpen(plain(c), c.Extra)
}

type RenameOptions struct {
	WorkDoneProgress Optional[bool] `json:"workDoneProgress,omitzero"`
	PrepareProvider  Optional[bool] `json:"prepareProvider,omitzero"`

	Extra Extra `json:"-"`
}

func (c *RenameOptions) UnmarshalJSON(data []byte) error {
	type plain RenameOptions
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c RenameOptions) MarshalJSON() ([]byte, error) {
	type plain RenameOptions
	return marshalOpen(plain(c), c.Extra)
}

type ExecuteCommandOptions struct {
	WorkDoneProgress Optional[bool] `json:"workDoneProgress,omitzero"`
	Commands         []string       `json:"commands" jsonschema:"required"`

	Extra Extra `json:"-"`
}

func (c *ExecuteCommandOptions) UnmarshalJSON(data []byte) error {
	type plain ExecuteCommandOptions
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c ExecuteCommandOptions) MarshalJSON() ([]byte, error) {
	type plain ExecuteCommandOptions
	return marshalOpen(plain(c), c.Extra)
}

type WorkspaceFoldersServerCapabilities struct {
	Supported           Optional[bool] `json:"supported,omitzero"`
	ChangeNotifications BoolOr[string] `json:"changeNotifications,omitzero"`

	Extra Extra `json:"-"`
}

func (c *WorkspaceFoldersServerCapabilities) UnmarshalJSON(data []byte) error {
	type plain WorkspaceFoldersServerCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c WorkspaceFoldersServerCapabilities) MarshalJSON() ([]byte, error) {
	type plain WorkspaceFoldersServerCapabilities
	return marshalOpen(plain(c), c.Extra)
}

type ServerWorkspaceCapabilities struct {
	WorkspaceFolders Optional[WorkspaceFoldersServerCapabilities] `json:"workspaceFolders,omitzero"`

	Extra Extra `json:"-"`
}

func (c *ServerWorkspaceCapabilities) UnmarshalJSON(data []byte) error {
	type plain ServerWorkspaceCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c ServerWorkspaceCapabilities) MarshalJSON() ([]byte, error) {
	type plain ServerWorkspaceCapabilities
	return marshalOpen(plain(c), c.Extra)
}

// ServerCapabilities describes what the server provides. It is sent in the
// initialize result.
type ServerCapabilities struct {
	PositionEncoding        Optional[PositionEncodingKind]        `json:"positionEncoding,omitzero"`
	TextDocumentSync        TextDocumentSync                      `json:"textDocumentSync,omitzero"`
	CompletionProvider      Optional[CompletionOptions]           `json:"completionProvider,omitzero"`
	HoverProvider           BoolOr[HoverOptions]                  `json:"hoverProvider,omitzero"`
	DefinitionProvider      BoolOr[DefinitionOptions]             `json:"definitionProvider,omitzero"`
	ReferencesProvider      BoolOr[ReferenceOptions]              `json:"referencesProvider,omitzero"`
	DocumentSymbolProvider  BoolOr[DocumentSymbolOptions]         `json:"documentSymbolProvider,omitzero"`
	WorkspaceSymbolProvider BoolOr[WorkspaceSymbolOptions]        `json:"workspaceSymbolProvider,omitzero"`
	CodeActionProvider      BoolOr[CodeActionOptions]             `json:"codeActionProvider,omitzero"`
	RenameProvider          BoolOr[RenameOptions]                 `json:"renameProvider,omitzero"`
	ExecuteCommandProvider  Optional[ExecuteCommandOptions]       `json:"executeCommandProvider,omitzero"`
	Workspace               Optional[ServerWorkspaceCapabilities] `json:"workspace,omitzero"`
	Experimental            json.RawMessage                       `json:"experimental,omitempty"`

	// Extra holds members for features this package does not model. It lets
	// a server advertise newer capabilities verbatim.
	Extra Extra `json:"-"`
}

func (c *ServerCapabilities) UnmarshalJSON(data []byte) error {
	type plain ServerCapabilities
	return decodeOpen(data, (*plain)(c), &c.Extra)
}

func (c ServerCapabilities) MarshalJSON() ([]byte, error) {
	type plain ServerCapabilities
	return marshalOpen(plain(c), c.Extra)
}
