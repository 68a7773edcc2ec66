package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"servio/internal/domain"
	"servio/internal/pkg/response"
)

// listMessages returns every message the caller participates in, with
// sender and receiver expanded to full user objects.
func (s *Server) listMessages(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var rows []Message
	err := s.db.WithContext(c.Request.Context()).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("sent_at").
		Find(&rows).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list messages")
		return
	}

	accounts, err := s.accountIndex(c, rows)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load participants")
		return
	}

	out := make([]domain.Message, 0, len(rows))
	for _, m := range rows {
		out = append(out, toWireMessage(m, accounts))
	}
	response.Success(c, http.StatusOK, out)
}

type postMessageRequest struct {
	ReceiverID  int64  `json:"receiverId" binding:"required"`
	MessageText string `json:"messageText" binding:"required"`
}

// postMessage stores the message and raises a message-type notification
// for the receiver. The notification carries structured sender fields;
// the legacy "<name> sent you a message" body is kept for older clients
// that still parse it.
func (s *Server) postMessage(c *gin.Context) {
	senderID := c.GetInt64("user_id")

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.MessageText) == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "receiverId and messageText are required")
		return
	}
	if req.ReceiverID == senderID {
		response.Error(c, http.StatusBadRequest, "INVALID_RECEIVER", "Cannot message yourself")
		return
	}

	var sender, receiver Account
	if err := s.db.First(&sender, senderID).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "SEND_FAILED", "Failed to load sender")
		return
	}
	if err := s.db.First(&receiver, req.ReceiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Receiver not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "SEND_FAILED", "Failed to load receiver")
		return
	}

	msg := Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Text:       req.MessageText,
		Status:     string(domain.StatusDelivered),
		SentAt:     time.Now(),
	}
	notif := Notification{
		ID:          uuid.NewString(),
		UserID:      req.ReceiverID,
		Type:        domain.NotificationMessage,
		Text:        fmt.Sprintf("%s sent you a message", sender.toUser().DisplayName()),
		SenderID:    senderID,
		SenderName:  sender.toUser().DisplayName(),
		ReferenceID: msg.ID,
		CreatedAt:   time.Now(),
	}

	err := s.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Create(&notif).Error
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "SEND_FAILED", "Failed to store message")
		return
	}

	accounts := map[int64]Account{sender.ID: sender, receiver.ID: receiver}
	response.Success(c, http.StatusCreated, toWireMessage(msg, accounts))
}

type updateMessageRequest struct {
	Status domain.MessageStatus `json:"status" binding:"required"`
}

func (s *Server) updateMessage(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id := c.Param("id")

	var req updateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "status is required")
		return
	}

	var msg Message
	err := s.db.WithContext(c.Request.Context()).First(&msg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Message not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to load message")
		return
	}
	if msg.SenderID != userID && msg.ReceiverID != userID {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not a participant of this conversation")
		return
	}

	err = s.db.WithContext(c.Request.Context()).
		Model(&Message{}).
		Where("id = ?", id).
		Update("status", string(req.Status)).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update message")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": req.Status})
}

// accountIndex loads every account referenced by the given messages.
func (s *Server) accountIndex(c *gin.Context, rows []Message) (map[int64]Account, error) {
	ids := make([]int64, 0, len(rows)*2)
	seen := make(map[int64]bool)
	for _, m := range rows {
		for _, id := range []int64{m.SenderID, m.ReceiverID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return map[int64]Account{}, nil
	}

	var accounts []Account
	err := s.db.WithContext(c.Request.Context()).Where("id IN ?", ids).Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	index := make(map[int64]Account, len(accounts))
	for _, a := range accounts {
		index[a.ID] = a
	}
	return index, nil
}

func toWireMessage(m Message, accounts map[int64]Account) domain.Message {
	return domain.Message{
		MessageID:   m.ID,
		Sender:      accounts[m.SenderID].toUser(),
		Receiver:    accounts[m.ReceiverID].toUser(),
		MessageText: m.Text,
		SentAt:      m.SentAt,
		Status:      domain.MessageStatus(m.Status),
	}
}
