package models

// Operator is a registered bot user. The full name is supplied once at
// registration and never changes afterwards.
type Operator struct {
	TelegramID int64
	FullName   string
}
