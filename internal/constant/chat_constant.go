package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	ChatMessageStatusPending   = "pending"
	ChatMessageStatusStreaming = "streaming"
	ChatMessageStatusCompleted = "completed"
	ChatMessageStatusFailed    = "failed"

	ResponseModeStrict   = "strict"
	ResponseModeBalanced = "balanced"
	ResponseModeCreative = "creative"

	DefaultSessionTitle = "New conversation"

	// Titles derived from the first question are cut at this length.
	SessionTitleMaxLen = 80

	DefaultMessagePageSize = 50
	MaxMessagePageSize     = 200
	DefaultSessionListSize = 20
)

// IsValidResponseMode reports whether mode is one of the fixed enumeration.
func IsValidResponseMode(mode string) bool {
	switch mode {
	case ResponseModeStrict, ResponseModeBalanced, ResponseModeCreative:
		return true
	}
	return false
}

// IsValidMessageStatus reports whether status is a known lifecycle state.
func IsValidMessageStatus(status string) bool {
	switch status {
	case ChatMessageStatusPending, ChatMessageStatusStreaming,
		ChatMessageStatusCompleted, ChatMessageStatusFailed:
		return true
	}
	return false
}
