// Package mail fetches job-related candidate emails over IMAP and
// converts them into the internal email model.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	id "github.com/emersion/go-imap-id"

	"github.com/tyagiprnv/Job-Tracker/internal/config"
	"github.com/tyagiprnv/Job-Tracker/internal/models"
)

var (
	// ErrIMAPConnectionFailed indicates IMAP connection or auth failed
	ErrIMAPConnectionFailed = errors.New("IMAP connection failed")
)

const fetchBatchSize = 10

// Fetcher pulls recent messages from the configured mailbox.
type Fetcher struct {
	cfg *config.Config
}

// NewFetcher creates a new Fetcher.
func NewFetcher(cfg *config.Config) *Fetcher {
	return &Fetcher{cfg: cfg}
}

// connect dials the IMAP endpoint, performs the ID handshake for servers
// that require client identification and authenticates with XOAUTH2 when
// OAuth credentials are configured, password login otherwise.
func (f *Fetcher) connect(ctx context.Context) (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", f.cfg.IMAPHost, f.cfg.IMAPPort)
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	var c *client.Client
	if f.cfg.IMAPUseSSL {
		tlsConfig := &tls.Config{ServerName: f.cfg.IMAPHost}
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}
		c, err = client.New(conn)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}
	} else {
		conn, err := dialer.Dial("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}
		c, err = client.New(conn)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}
	}

	c.Timeout = 5 * time.Minute

	if ok, _ := c.Support("ID"); ok {
		idClient := id.NewClient(c)
		// Some providers reject logins without an ID; failure here is fine
		idClient.ID(id.ID{
			id.FieldName:    "Job Tracker",
			id.FieldVersion: "1.0.0",
		})
	}

	if f.cfg.OAuthRefreshToken != "" {
		accessToken, err := AccessToken(ctx, f.cfg)
		if err != nil {
			c.Logout()
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}
		if err := c.Authenticate(NewXOAuth2Client(f.cfg.IMAPUsername, accessToken)); err != nil {
			c.Logout()
			return nil, fmt.Errorf("%w: XOAUTH2 authentication failed: %v", ErrIMAPConnectionFailed, err)
		}
	} else {
		if err := c.Login(f.cfg.IMAPUsername, f.cfg.IMAPPassword); err != nil {
			c.Logout()
			return nil, fmt.Errorf("%w: login failed: %v", ErrIMAPConnectionFailed, err)
		}
	}

	return c, nil
}

// Fetch retrieves messages received within the last days days and parses
// them into emails ready for classification. days <= 0 falls back to the
// configured search window.
func (f *Fetcher) Fetch(ctx context.Context, days int) ([]*models.Email, error) {
	if days <= 0 {
		days = f.cfg.SearchDays
	}

	c, err := f.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	mbox, err := c.Select("INBOX", true)
	if err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	criteria := imap.NewSearchCriteria()
	sinceDate := time.Now().AddDate(0, 0, -days)
	criteria.Since = time.Date(sinceDate.Year(), sinceDate.Month(), sinceDate.Day(), 0, 0, 0, 0, time.UTC)

	seqNums, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("searching INBOX: %w", err)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}

	log.Printf("[Mail] found %d messages in the last %d days", len(seqNums), days)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, imap.FetchEnvelope, section.FetchItem()}

	var emails []*models.Email
	for i := 0; i < len(seqNums); i += fetchBatchSize {
		batchEnd := i + fetchBatchSize
		if batchEnd > len(seqNums) {
			batchEnd = len(seqNums)
		}

		seqSet := new(imap.SeqSet)
		seqSet.AddNum(seqNums[i:batchEnd]...)

		messages := make(chan *imap.Message, fetchBatchSize)
		done := make(chan error, 1)
		go func() {
			done <- c.Fetch(seqSet, items, messages)
		}()

		for msg := range messages {
			if email := f.convertMessage(msg, section); email != nil {
				emails = append(emails, email)
			}
		}
		if err := <-done; err != nil {
			log.Printf("[Mail] fetch batch error: %v", err)
		}

		select {
		case <-ctx.Done():
			return emails, ctx.Err()
		default:
		}
	}

	log.Printf("[Mail] fetched %d messages", len(emails))
	return emails, nil
}

// convertMessage turns one IMAP message into the internal email model.
// Returns nil for messages that cannot be read at all.
func (f *Fetcher) convertMessage(msg *imap.Message, section *imap.BodySectionName) *models.Email {
	if msg == nil || msg.Envelope == nil {
		return nil
	}

	email := &models.Email{
		MessageID: strings.Trim(msg.Envelope.MessageId, "<>"),
		Subject:   msg.Envelope.Subject,
		Date:      msg.Envelope.Date,
	}
	if email.MessageID == "" {
		email.MessageID = fmt.Sprintf("uid:%d", msg.Uid)
	}

	if len(msg.Envelope.From) > 0 {
		from := msg.Envelope.From[0]
		email.SenderEmail = fmt.Sprintf("%s@%s", from.MailboxName, from.HostName)
		if from.PersonalName != "" {
			email.Sender = fmt.Sprintf("%s <%s>", from.PersonalName, email.SenderEmail)
		} else {
			email.Sender = email.SenderEmail
		}
	}

	if literal := msg.GetBody(section); literal != nil {
		if raw, err := io.ReadAll(literal); err == nil && len(raw) > 0 {
			parsed := parseRawMessage(raw)
			email.Body = parsed.Text()
			email.ThreadID = parsed.ThreadID
			if email.MessageID == "" && parsed.MessageID != "" {
				email.MessageID = strings.Trim(parsed.MessageID, "<>")
			}
		}
	}

	// Single messages form their own thread
	if email.ThreadID == "" {
		email.ThreadID = email.MessageID
	}

	email.GmailLink = gmailLink(email.MessageID)
	return email
}

// gmailLink builds a deep link that opens the message in the Gmail UI.
func gmailLink(messageID string) string {
	if messageID == "" || strings.HasPrefix(messageID, "uid:") {
		return ""
	}
	return "https://mail.google.com/mail/u/0/#search/" +
		url.PathEscape("rfc822msgid:"+messageID)
}
