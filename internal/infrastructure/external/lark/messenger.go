package lark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
)

const (
	receiveIDTypeOpenID = "open_id"
	msgTypeText         = "text"
)

type createMessageFunc func(ctx context.Context, req *larkim.CreateMessageReq) (*larkim.CreateMessageResp, error)

// Messenger implements port.MessageSender with text messages
type Messenger struct {
	create createMessageFunc
	logger *zap.Logger
}

// NewMessenger creates a new Lark message sender
func NewMessenger(sdk *SDKClient, logger *zap.Logger) *Messenger {
	client := sdk.GetClient()
	return &Messenger{
		create: func(ctx context.Context, req *larkim.CreateMessageReq) (*larkim.CreateMessageResp, error) {
			return client.Im.Message.Create(ctx, req)
		},
		logger: logger,
	}
}

// SendMessage sends content as a text message to the user with openID
func (m *Messenger) SendMessage(ctx context.Context, openID, content string) error {
	if openID == "" {
		return errors.New("openID cannot be empty")
	}
	if content == "" {
		return errors.New("content cannot be empty")
	}

	body, err := newTextBody(openID, content)
	if err != nil {
		return err
	}
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDTypeOpenID).
		Body(body).
		Build()

	resp, err := m.create(ctx, req)
	if err != nil {
		m.logger.Error("Failed to send message",
			zap.String("open_id", openID),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("API returned failure",
			zap.String("open_id", openID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}
	m.logger.Info("Message sent",
		zap.String("message_id", messageID),
		zap.String("open_id", openID))
	return nil
}

// newTextBody builds the request body of a text message to openID
func newTextBody(openID, content string) (*larkim.CreateMessageReqBody, error) {
	text, err := json.Marshal(map[string]string{"text": content})
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return larkim.NewCreateMessageReqBodyBuilder().
		ReceiveId(openID).
		MsgType(msgTypeText).
		Content(string(text)).
		Build(), nil
}

var _ port.MessageSender = (*Messenger)(nil)
