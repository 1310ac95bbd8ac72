package email

import "time"

// Envelope holds the parsed envelope data from an IMAP message.
type Envelope struct {
	MessageID string
	Subject   string
	From      string
	Date      time.Time
	UID       uint32
}

// ParsedMessage holds the full parsed content of a mail message. Parts
// carry their bytes so cid: references and attachment placeholders in
// the body resolve without another round trip to the server.
type ParsedMessage struct {
	Envelope    Envelope
	TextBody    string
	HTMLBody    string
	Attachments []Part
}

// Part is a named binary part of a mail message. Name is the
// Content-ID for inline parts (the cid: reference target) or the
// filename for ordinary attachments.
type Part struct {
	Name     string
	MIMEType string
	Data     []byte
}
