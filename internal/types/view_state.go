package types

// ViewState is the operator's monitoring view state persisted between runs.
type ViewState struct {
	Filter    StatusFilter      `json:"filter,omitempty"`
	FocusedID string            `json:"focused_id,omitempty"`
	Drafts    map[string]string `json:"drafts,omitempty"`
}

type DashboardStats struct {
	ActiveConversations      int `json:"active_conversations"`
	TransferredConversations int `json:"transferred_conversations"`
	MessagesToday            int `json:"messages_today"`
	TotalUsers               int `json:"total_users"`
}
