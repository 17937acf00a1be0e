package email

// Message is a fully resolved outbound email. From is always set by the
// time a transport sees it; either Text or HTML must be non empty.
type Message struct {
	From        string
	To          string
	Subject     string
	Text        string
	HTML        string
	ReplyTo     string
	Attachments []Attachment
}

// Attachment is an email attachment. Exactly one of Content or URL is set;
// URL-backed attachments are fetched by the provider.
type Attachment struct {
	Filename    string
	Content     []byte
	URL         string
	ContentType string
}

// SendResult reports the provider message id of a sent email
type SendResult struct {
	MessageID string
}
