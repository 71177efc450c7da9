package domain

// ChatMessage is one message inside a thread.
type ChatMessage struct {
	From string
	Body string
	Time string
	Mine bool
}

// ChatThread is a conversation with one counterpart.
type ChatThread struct {
	ID       int
	Name     string
	LastMsg  string
	Online   bool
	Time     string
	Messages []ChatMessage
}
