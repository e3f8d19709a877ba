package types

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`    // user, assistant, system
	Content string `json:"content"` // message text
}

// Reply represents a reasoning back-end's answer to a single prompt.
// Content is the final answer text. Reasoning carries the intermediate
// reasoning trace for providers that expose one (empty otherwise).
type Reply struct {
	Content   string `json:"content"`
	Reasoning string `json:"reasoning,omitempty"`
}
