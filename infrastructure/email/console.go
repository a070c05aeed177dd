package email

import (
	"github.com/sirupsen/logrus"
)

type consoleSender struct{}

// NewConsoleSender writes messages to the log instead of delivering them.
// Used in development and whenever email is disabled by configuration.
func NewConsoleSender() Sender {
	return &consoleSender{}
}

func (s *consoleSender) Send(msg Message) error {
	logrus.WithFields(logrus.Fields{
		"to":      msg.ToAddress,
		"subject": msg.Subject,
	}).Info("email (console): ", msg.TextContent)

	return nil
}
