package domain

// MessageKind tags the Message variant.
type MessageKind string

const (
	MessageUser      MessageKind = "user"
	MessageAssistant MessageKind = "assistant"
)

// Message is a tagged variant: user messages carry an author, assistant
// messages only carry content.
type Message struct {
	Kind     MessageKind
	AuthorID string // empty for assistant messages
	Content  string
}

func NewUserMessage(authorID, content string) Message {
	return Message{Kind: MessageUser, AuthorID: authorID, Content: content}
}

// NewAssistantMessage is used by the turn pipeline on commit and by stores
// when decoding persisted history.
func NewAssistantMessage(content string) Message {
	return Message{Kind: MessageAssistant, Content: content}
}

func (m Message) IsUser() bool {
	return m.Kind == MessageUser
}

// ActionLogEntry records one participant contribution. Entries are
// immutable once appended.
type ActionLogEntry struct {
	AuthorID  string
	Action    string
	Message   string
	Stage     Stage
	Timestamp string
}

// ActionMessage is the only action kind recorded today.
const ActionMessage = "message"

// AnonymousAuthor replaces an empty author id in the action log.
const AnonymousAuthor = "anônimo"

// SessionState is the whole shared record of a planning session.
// It is passed by value into a turn and replaced by the returned value.
type SessionState struct {
	Messages []Message
	Board    string
	Stage    Stage
	Actions  []ActionLogEntry
}

func NewSessionState() SessionState {
	return SessionState{
		Messages: []Message{},
		Board:    "",
		Stage:    StageBrainstorm,
		Actions:  []ActionLogEntry{},
	}
}

// Clone returns a copy that shares no backing arrays with s.
func (s SessionState) Clone() SessionState {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	out.Actions = make([]ActionLogEntry, len(s.Actions))
	copy(out.Actions, s.Actions)
	return out
}

// LastUserMessage scans from newest to oldest.
func (s SessionState) LastUserMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].IsUser() {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// RecentActions returns up to limit entries, newest first.
// If limit <= 0, returns all.
func (s SessionState) RecentActions(limit int) []ActionLogEntry {
	n := len(s.Actions)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]ActionLogEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.Actions[i])
	}
	return out
}

// Session wraps the state with the metadata the service needs to find it.
type Session struct {
	ID        SessionID
	Title     string
	CreatedAt Timestamp
	UpdatedAt Timestamp

	State SessionState
}
