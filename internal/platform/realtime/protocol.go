package realtime

// Frame is the single inbound message shape. Type selects which of the
// remaining fields are meaningful.
type Frame struct {
	Type string `json:"type"`

	// hello
	Name string `json:"username,omitempty"`
	Role string `json:"role,omitempty"`

	// chat
	To   string `json:"to,omitempty"`
	Text string `json:"text,omitempty"`
}

const (
	frameHello    = "hello"
	frameContacts = "contacts"
	frameChat     = "chat"
)

// Outbound frames.

type readyFrame struct {
	Type string `json:"type"`
	Name string `json:"username"`
	Role string `json:"role"`
}

type contactsFrame struct {
	Type     string   `json:"type"`
	Contacts []string `json:"contacts"`
}

type chatFrame struct {
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newErrorFrame(msg string) errorFrame {
	return errorFrame{Type: "error", Error: msg}
}
