package sms

import "log"

// Sender delivers a text message to a phone number. The real SMS gateway is an
// external boundary; in development the log sender stands in for it.
type Sender interface {
	Send(to string, message string) error
}

// LogSender writes outgoing messages to the application log instead of an SMS
// gateway. Used in dev and in tests.
type LogSender struct{}

func (LogSender) Send(to string, message string) error {
	log.Printf("SMS to %s: %s", to, message)
	return nil
}
