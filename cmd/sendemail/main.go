package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"html"
	"os"
	"regexp"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/resend/resend-go/v2"
)

// attachmentInput carries one attachment, either by URL (fetched by the
// provider) or inline base64 content.
type attachmentInput struct {
	Filename      string `json:"filename"`
	ContentBase64 string `json:"contentBase64,omitempty"`
	ContentType   string `json:"contentType,omitempty"`
	URL           string `json:"url,omitempty"`
}

// sendEmailPayload is the function's request body. To accepts a single
// address or a list.
type sendEmailPayload struct {
	From        string            `json:"from"`
	To          recipientList     `json:"to"`
	Subject     string            `json:"subject"`
	Text        string            `json:"text,omitempty"`
	HTML        string            `json:"html,omitempty"`
	Attachments []attachmentInput `json:"attachments,omitempty"`
}

type recipientList []string

func (r *recipientList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = recipientList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*r = recipientList(many)
	return nil
}

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type handler struct {
	apiKey string
	sender emailSender
}

func newHandler() *handler {
	apiKey := os.Getenv("RESEND_API_KEY")
	h := &handler{apiKey: apiKey}
	if apiKey != "" {
		h.sender = resend.NewClient(apiKey).Emails
	}
	return h
}

func (h *handler) handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if h.apiKey == "" {
		return jsonResponse(500, map[string]any{"error": "RESEND_API_KEY is not configured"}), nil
	}

	var payload sendEmailPayload
	if err := json.Unmarshal([]byte(event.Body), &payload); err != nil {
		return jsonResponse(400, map[string]any{"error": "Missing required fields: from, to, subject"}), nil
	}
	if payload.From == "" || len(payload.To) == 0 || payload.Subject == "" {
		return jsonResponse(400, map[string]any{"error": "Missing required fields: from, to, subject"}), nil
	}
	if payload.Text == "" && payload.HTML == "" {
		return jsonResponse(400, map[string]any{"error": "Either text or html content is required"}), nil
	}

	var attachments []*resend.Attachment
	for _, att := range payload.Attachments {
		switch {
		case att.URL != "":
			attachments = append(attachments, &resend.Attachment{
				Filename: att.Filename,
				Path:     att.URL,
			})
		case att.ContentBase64 != "":
			content, err := base64.StdEncoding.DecodeString(att.ContentBase64)
			if err != nil {
				continue
			}
			attachments = append(attachments, &resend.Attachment{
				Filename:    att.Filename,
				Content:     content,
				ContentType: att.ContentType,
			})
		}
	}

	// The provider requires a text body; derive one from the HTML when
	// only HTML was supplied.
	text := payload.Text
	if text == "" {
		text = htmlToText(payload.HTML)
	}

	sent, err := h.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:        payload.From,
		To:          payload.To,
		Subject:     payload.Subject,
		Text:        text,
		Html:        payload.HTML,
		Attachments: attachments,
	})
	if err != nil {
		return jsonResponse(502, map[string]any{"error": err.Error()}), nil
	}

	return jsonResponse(200, map[string]any{"id": sent.Id}), nil
}

func jsonResponse(statusCode int, body any) events.APIGatewayProxyResponse {
	encoded, _ := json.Marshal(body)
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type":                 "application/json",
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Methods": "POST, OPTIONS",
			"Access-Control-Allow-Headers": "Content-Type, Authorization",
		},
		Body: string(encoded),
	}
}

var (
	styleRe    = regexp.MustCompile(`(?is)<style.*?</style>`)
	scriptRe   = regexp.MustCompile(`(?is)<script.*?</script>`)
	brRe       = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockEndRe = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr)>`)
	liRe       = regexp.MustCompile(`(?i)<li>`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	blankRe    = regexp.MustCompile(`\n{3,}`)
)

// htmlToText is a minimal HTML to plaintext conversion for the fallback
// text body.
func htmlToText(in string) string {
	out := styleRe.ReplaceAllString(in, "")
	out = scriptRe.ReplaceAllString(out, "")
	out = brRe.ReplaceAllString(out, "\n")
	out = blockEndRe.ReplaceAllString(out, "\n")
	out = liRe.ReplaceAllString(out, " - ")
	out = tagRe.ReplaceAllString(out, "")
	out = html.UnescapeString(out)
	out = blankRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func main() {
	h := newHandler()
	lambda.Start(h.handle)
}
