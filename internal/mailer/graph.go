package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"
	defaultGraphScope   = "https://graph.microsoft.com/.default"
)

type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Sender       string
	// TokenURL and BaseURL override the Microsoft endpoints.
	TokenURL string
	BaseURL  string
}

// GraphMailer sends mail through the Graph sendMail API, authenticating with
// the OAuth client-credentials grant. Access tokens are cached until expiry.
type GraphMailer struct {
	sender  string
	baseURL string
	tokens  oauth2.TokenSource
}

func NewGraphMailer(cfg GraphConfig) *GraphMailer {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", url.PathEscape(cfg.TenantID))
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGraphBaseURL
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{defaultGraphScope},
	}
	return &GraphMailer{
		sender:  cfg.Sender,
		baseURL: baseURL,
		tokens:  cc.TokenSource(context.Background()),
	}
}

type graphAddress struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type graphAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}

type graphMessage struct {
	Subject string `json:"subject"`
	Body    struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	ToRecipients []graphAddress   `json:"toRecipients"`
	Attachments  []graphAttachment `json:"attachments,omitempty"`
}

type graphSendRequest struct {
	Message         graphMessage `json:"message"`
	SaveToSentItems bool         `json:"saveToSentItems"`
}

func (m *GraphMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	var gm graphMessage
	gm.Subject = msg.Subject
	gm.Body.ContentType = "HTML"
	gm.Body.Content = msg.HTML
	var to graphAddress
	to.EmailAddress.Address = msg.To
	gm.ToRecipients = []graphAddress{to}
	for _, a := range msg.Attachments {
		gm.Attachments = append(gm.Attachments, graphAttachment{
			ODataType:    "#microsoft.graph.fileAttachment",
			Name:         a.Name,
			ContentType:  a.ContentType,
			ContentBytes: base64.StdEncoding.EncodeToString(a.Data),
		})
	}

	body, err := json.Marshal(graphSendRequest{Message: gm})
	if err != nil {
		return fmt.Errorf("encode mail: %w", err)
	}

	endpoint := fmt.Sprintf("%s/users/%s/sendMail", m.baseURL, url.PathEscape(m.sender))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := oauth2.NewClient(ctx, m.tokens).Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("send mail: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
