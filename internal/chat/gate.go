package chat

import "carslink-backend/internal/model"

// CanSend reports whether the client may send a new message: true when the
// conversation is empty or the garage wrote last. The store re-checks this
// inside the send transaction, so a second tab cannot race past it.
func CanSend(messages []model.ChatMessage) bool {
	if len(messages) == 0 {
		return true
	}
	return messages[len(messages)-1].SenderType == model.SenderGarage
}
