package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	lastParams *resend.SendEmailRequest
	err        error
}

func (f *fakeSender) SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "re_test_123"}, nil
}

func newTestHandler(sender emailSender) *handler {
	return &handler{apiKey: "re_test_key", sender: sender}
}

func invoke(t *testing.T, h *handler, body string) events.APIGatewayProxyResponse {
	t.Helper()
	resp, err := h.handle(context.Background(), events.APIGatewayProxyRequest{Body: body})
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp events.APIGatewayProxyResponse) map[string]any {
	t.Helper()
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &decoded))
	return decoded
}

func TestHandleMissingAPIKey(t *testing.T) {
	h := &handler{}
	resp := invoke(t, h, `{"from":"a@b.test","to":"c@d.test","subject":"hi","text":"hello"}`)

	assert.Equal(t, 500, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["error"], "RESEND_API_KEY")
}

func TestHandleInvalidJSON(t *testing.T) {
	h := newTestHandler(&fakeSender{})
	resp := invoke(t, h, `{not json`)

	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleMissingRequiredFields(t *testing.T) {
	h := newTestHandler(&fakeSender{})

	tests := []string{
		`{"to":"c@d.test","subject":"hi","text":"x"}`,
		`{"from":"a@b.test","subject":"hi","text":"x"}`,
		`{"from":"a@b.test","to":"c@d.test","text":"x"}`,
		`{"from":"a@b.test","to":[],"subject":"hi","text":"x"}`,
	}
	for _, body := range tests {
		resp := invoke(t, h, body)
		assert.Equal(t, 400, resp.StatusCode, "body: %s", body)
		assert.Contains(t, decodeBody(t, resp)["error"], "Missing required fields")
	}
}

func TestHandleRequiresTextOrHTML(t *testing.T) {
	h := newTestHandler(&fakeSender{})
	resp := invoke(t, h, `{"from":"a@b.test","to":"c@d.test","subject":"hi"}`)

	assert.Equal(t, 400, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["error"], "text or html")
}

func TestHandleToAcceptsStringOrArray(t *testing.T) {
	sender := &fakeSender{}
	h := newTestHandler(sender)

	resp := invoke(t, h, `{"from":"a@b.test","to":"c@d.test","subject":"hi","text":"x"}`)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []string{"c@d.test"}, sender.lastParams.To)

	resp = invoke(t, h, `{"from":"a@b.test","to":["c@d.test","e@f.test"],"subject":"hi","text":"x"}`)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []string{"c@d.test", "e@f.test"}, sender.lastParams.To)
}

func TestHandleSuccessReturnsMessageID(t *testing.T) {
	h := newTestHandler(&fakeSender{})
	resp := invoke(t, h, `{"from":"a@b.test","to":"c@d.test","subject":"hi","text":"hello"}`)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "re_test_123", decodeBody(t, resp)["id"])
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
}

func TestHandleProviderError(t *testing.T) {
	h := newTestHandler(&fakeSender{err: errors.New("rate limited")})
	resp := invoke(t, h, `{"from":"a@b.test","to":"c@d.test","subject":"hi","text":"hello"}`)

	assert.Equal(t, 502, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["error"], "rate limited")
}

func TestHandleAttachments(t *testing.T) {
	sender := &fakeSender{}
	h := newTestHandler(sender)

	body := `{
		"from": "a@b.test",
		"to": "c@d.test",
		"subject": "hi",
		"text": "hello",
		"attachments": [
			{"filename": "inv.pdf", "url": "https://files.test/inv.pdf"},
			{"filename": "note.txt", "contentBase64": "aGVsbG8=", "contentType": "text/plain"},
			{"filename": "bad.bin", "contentBase64": "!!!not-base64!!!"}
		]
	}`
	resp := invoke(t, h, body)
	require.Equal(t, 200, resp.StatusCode)

	require.Len(t, sender.lastParams.Attachments, 2)
	assert.Equal(t, "inv.pdf", sender.lastParams.Attachments[0].Filename)
	assert.Equal(t, "https://files.test/inv.pdf", sender.lastParams.Attachments[0].Path)
	assert.Equal(t, "note.txt", sender.lastParams.Attachments[1].Filename)
	assert.Equal(t, []byte("hello"), sender.lastParams.Attachments[1].Content)
	assert.Equal(t, "text/plain", sender.lastParams.Attachments[1].ContentType)
}

func TestHandleDerivesTextFromHTML(t *testing.T) {
	sender := &fakeSender{}
	h := newTestHandler(sender)

	resp := invoke(t, h, `{"from":"a@b.test","to":"c@d.test","subject":"hi","html":"<p>Hello &amp; welcome</p>"}`)
	require.Equal(t, 200, resp.StatusCode)

	assert.Equal(t, "<p>Hello &amp; welcome</p>", sender.lastParams.Html)
	assert.Equal(t, "Hello & welcome", sender.lastParams.Text)
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"strips tags", "<p>Hello</p>", "Hello"},
		{"line breaks", "line one<br>line two", "line one\nline two"},
		{"list items", "<ul><li>first</li><li>second</li></ul>", "- first\n - second"},
		{"drops styles", "<style>p{color:red}</style><p>visible</p>", "visible"},
		{"drops scripts", "<script>alert(1)</script>ok", "ok"},
		{"entities", "Tom &amp; Jerry &lt;3", "Tom & Jerry <3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, htmlToText(tt.input))
		})
	}
}
