// Package mailer renders notification emails and delivers them through the
// configured mail transport.
package mailer

import (
	"context"
	"errors"
)

var ErrNoRecipient = errors.New("mail has no recipient")

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
