// Package mail builds MIME messages and delivers them over SMTP.
package mail

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          []string
	ReplyTo     string
	Subject     string
	HTML        string
	Attachments []Attachment
}

func (m Message) Validate() error {
	if len(m.To) == 0 {
		return errors.New("mail: no recipient")
	}
	for _, to := range m.To {
		if strings.TrimSpace(to) == "" || strings.ContainsAny(to, "\r\n") {
			return fmt.Errorf("mail: invalid recipient %q", to)
		}
	}
	if strings.ContainsAny(m.Subject, "\r\n") {
		return errors.New("mail: subject must be a single line")
	}
	return nil
}

// Sender is the From header. Name is optional and encoded when it is not
// plain ASCII.
type Sender struct {
	Name    string
	Address string
}

// newMsg renders m as a text and HTML alternative followed by the
// attachments.
func newMsg(from Sender, m Message, date time.Time) (*gomail.Msg, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	msg := gomail.NewMsg()
	if from.Name != "" {
		if err := msg.FromFormat(from.Name, from.Address); err != nil {
			return nil, fmt.Errorf("mail: from: %w", err)
		}
	} else if err := msg.From(from.Address); err != nil {
		return nil, fmt.Errorf("mail: from: %w", err)
	}
	if err := msg.To(m.To...); err != nil {
		return nil, fmt.Errorf("mail: to: %w", err)
	}
	if m.ReplyTo != "" {
		if err := msg.ReplyTo(m.ReplyTo); err != nil {
			return nil, fmt.Errorf("mail: reply-to: %w", err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetDateWithValue(date)

	msg.SetBodyString(gomail.TypeTextPlain, HTMLToText(m.HTML))
	msg.AddAlternativeString(gomail.TypeTextHTML, m.HTML)

	for _, a := range m.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		msg.AttachReadSeeker(a.Filename, bytes.NewReader(a.Data), gomail.WithFileContentType(gomail.ContentType(ct)))
	}
	return msg, nil
}

// Build renders m to its wire form.
func Build(from Sender, m Message, date time.Time) ([]byte, error) {
	msg, err := newMsg(from, m, date)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("mail: rendering message: %w", err)
	}
	return buf.Bytes(), nil
}
