package imap

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/textproto"
	"sort"
	"strings"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/pkg/logger"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// IMAPService reads booking emails from an IMAP mailbox
type IMAPService struct {
	address  string
	username string
	password string
	mailbox  string
	logger   logger.Logger
}

// NewIMAPService creates a new IMAP mail source. address is host:port of an implicit TLS endpoint.
func NewIMAPService(address, username, password, mailbox string, logger logger.Logger) *IMAPService {
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &IMAPService{
		address:  address,
		username: username,
		password: password,
		mailbox:  mailbox,
		logger:   logger,
	}
}

// FetchMessages searches the mailbox by FROM header and returns the newest limit messages
func (s *IMAPService) FetchMessages(ctx context.Context, sender string, limit int) ([]*entity.Email, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	imapClient, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer imapClient.Logout()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			imapClient.Terminate()
		case <-done:
		}
	}()

	if _, err := imapClient.Select(s.mailbox, true); err != nil {
		return nil, fmt.Errorf("imap: selecting %s failed: %w", s.mailbox, err)
	}

	uids, err := imapClient.UidSearch(buildSearchCriteria(sender))
	if err != nil {
		return nil, fmt.Errorf("imap: searching messages failed: %w", err)
	}
	uids = newestUIDs(uids, limit)
	if len(uids) == 0 {
		return nil, nil
	}

	emails, err := s.fetchByUID(imapClient, uids)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Email fetch completed",
		"mailbox", s.mailbox,
		"matched", len(uids),
		"loaded", len(emails))

	return emails, nil
}

func (s *IMAPService) connect() (*client.Client, error) {
	host, _, err := net.SplitHostPort(s.address)
	if err != nil {
		return nil, fmt.Errorf("imap: invalid address %q: %w", s.address, err)
	}

	imapClient, err := client.DialTLS(s.address, &tls.Config{ServerName: host})
	if err != nil {
		return nil, fmt.Errorf("imap: dial failed: %w", err)
	}

	if err := imapClient.Login(s.username, s.password); err != nil {
		imapClient.Logout()
		return nil, fmt.Errorf("imap: login failed: %w", err)
	}

	return imapClient, nil
}

func (s *IMAPService) fetchByUID(imapClient *client.Client, uids []uint32) ([]*entity.Email, error) {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	bodySection := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, imap.FetchEnvelope, imap.FetchInternalDate, bodySection.FetchItem()}

	messages := make(chan *imap.Message, len(uids)+8)
	done := make(chan error, 1)
	go func() {
		done <- imapClient.UidFetch(seqSet, items, messages)
	}()

	emails := make([]*entity.Email, 0, len(uids))
	uidOrder := make(map[*entity.Email]uint32, len(uids))
	for msg := range messages {
		email := &entity.Email{
			EmailID:    fmt.Sprintf("%s/%d", s.mailbox, msg.Uid),
			ReceivedAt: msg.InternalDate.UTC(),
		}
		if env := msg.Envelope; env != nil {
			email.Subject = env.Subject
			email.From = formatAddresses(env.From)
			email.To = formatAddresses(env.To)
			if env.MessageId != "" {
				email.EmailID = env.MessageId
			}
		}

		if literal := msg.GetBody(bodySection); literal != nil {
			raw, err := io.ReadAll(literal)
			if err != nil {
				s.logger.Error("Failed to read message body", "uid", msg.Uid, "error", err)
				continue
			}
			textBody, htmlBody, err := extractBodiesFromRaw(raw)
			if err != nil {
				s.logger.Error("Failed to parse message body", "uid", msg.Uid, "error", err)
				continue
			}
			email.Body = textBody
			email.HTMLBody = htmlBody
		}

		uidOrder[email] = msg.Uid
		emails = append(emails, email)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap: fetching messages failed: %w", err)
	}

	sort.SliceStable(emails, func(i, j int) bool {
		return uidOrder[emails[i]] > uidOrder[emails[j]]
	})
	return emails, nil
}

func buildSearchCriteria(sender string) *imap.SearchCriteria {
	criteria := imap.NewSearchCriteria()
	if sender = strings.TrimSpace(sender); sender != "" {
		criteria.Header.Add("FROM", sender)
	}
	return criteria
}

// newestUIDs keeps the limit highest UIDs, highest first
func newestUIDs(uids []uint32, limit int) []uint32 {
	sorted := append([]uint32(nil), uids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func formatAddresses(addrs []*imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		if addr == nil {
			continue
		}
		address := addr.Address()
		if addr.PersonalName != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", addr.PersonalName, address))
		} else {
			parts = append(parts, address)
		}
	}
	return strings.Join(parts, ", ")
}

func extractBodiesFromRaw(raw []byte) (string, string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return "", "", err
	}
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return "", "", err
	}
	textBody, htmlBody, err := extractBodiesFromEntity(textproto.MIMEHeader(msg.Header), body)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(textBody), strings.TrimSpace(htmlBody), nil
}

func extractBodiesFromEntity(header textproto.MIMEHeader, body []byte) (string, string, error) {
	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil || mediaType == "" {
		mediaType = "text/plain"
	}

	decoded, err := decodeTransferEncoding(header.Get("Content-Transfer-Encoding"), body)
	if err != nil {
		return "", "", err
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return "", "", nil
		}
		reader := multipart.NewReader(bytes.NewReader(decoded), boundary)
		var plainParts, htmlParts []string
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", "", err
			}
			if part.FileName() != "" {
				continue
			}
			partBody, err := io.ReadAll(part)
			if err != nil {
				return "", "", err
			}
			partText, partHTML, err := extractBodiesFromEntity(textproto.MIMEHeader(part.Header), partBody)
			if err != nil {
				return "", "", err
			}
			if partText != "" {
				plainParts = append(plainParts, partText)
			}
			if partHTML != "" {
				htmlParts = append(htmlParts, partHTML)
			}
		}
		return strings.Join(plainParts, "\n"), strings.Join(htmlParts, "\n"), nil
	}

	switch mediaType {
	case "text/plain":
		return string(decoded), "", nil
	case "text/html":
		return "", string(decoded), nil
	default:
		return "", "", nil
	}
}

func decodeTransferEncoding(encoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return io.ReadAll(quotedprintable.NewReader(bytes.NewReader(body)))
	case "base64":
		clean := strings.NewReplacer("\r", "", "\n", "").Replace(string(body))
		decoded, err := base64.StdEncoding.DecodeString(clean)
		if err != nil {
			return body, nil
		}
		return decoded, nil
	default:
		return body, nil
	}
}
