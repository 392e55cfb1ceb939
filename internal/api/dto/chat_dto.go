package dto

// ChatMessageRequest is one user turn arriving from the chat transport.
type ChatMessageRequest struct {
	UserID   string        `json:"user_id"`
	Username string        `json:"username"`
	FullName string        `json:"full_name"`
	Text     string        `json:"text"`
	PhotoRef string        `json:"photo_ref,omitempty"`
	Location *ChatLocation `json:"location,omitempty"`
}

// ChatLocation is a coordinate pair attached to a turn.
type ChatLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ChatMessageResponse carries the dialog replies for one turn.
type ChatMessageResponse struct {
	Replies []string `json:"replies"`
	State   string   `json:"state"`
}
