package domain

import "time"

// ChatRole identifies who authored a chat message.
type ChatRole string

const (
	ChatRoleUser ChatRole = "user"
	ChatRoleAI   ChatRole = "ai"
)

// ChatGreeting opens every conversation.
const ChatGreeting = "Hello! I'm BudgetWise. Ask me where you have spent the most money."

// ChatMessage is one entry of the conversation transcript.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatRequest is the POST /chat/ payload.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse is the POST /chat/ reply. Response is markdown.
type ChatResponse struct {
	Response string `json:"response"`
}
