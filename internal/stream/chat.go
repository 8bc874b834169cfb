package stream

// ChatClient manages chat users and tokens.
type ChatClient struct {
	*client
}

func NewChatClient(cfg Config) *ChatClient {
	return &ChatClient{client: newClient("stream chat", cfg, "/users")}
}
