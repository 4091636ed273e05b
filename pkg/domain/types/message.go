package types

// SenderType identifies the author of a conversation message
type SenderType string

const (
	SenderUser   SenderType = "user"
	SenderMentor SenderType = "mentor"
)

// IsValid checks if the sender type is valid
func (s SenderType) IsValid() bool {
	return s == SenderUser || s == SenderMentor
}

// ContentStatus is the processing state of an ingested document
type ContentStatus string

const (
	ContentStatusProcessing ContentStatus = "processing"
	ContentStatusProcessed  ContentStatus = "processed"
	ContentStatusFailed     ContentStatus = "failed"
)

// IsValid checks if the content status is valid
func (s ContentStatus) IsValid() bool {
	switch s {
	case ContentStatusProcessing, ContentStatusProcessed, ContentStatusFailed:
		return true
	default:
		return false
	}
}
