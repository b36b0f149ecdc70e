package mailbox

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/services/scanner"
)

// maxAttachmentBytes caps a single mail attachment, matching the upload cap
const maxAttachmentBytes = 16 << 20 // 16 MiB

// Service polls an IMAP mailbox and turns unseen messages with document
// attachments into scan jobs. The subject line becomes the company name;
// messages are marked seen once their scan is queued, so a failed submission
// is retried on the next poll.
type Service struct {
	cfg     common.MailboxConfig
	scanner *scanner.Service
	logger  arbor.ILogger

	mu      sync.Mutex
	stop    chan struct{}
	done    sync.WaitGroup
	started bool
}

// NewService creates a new mailbox ingestion service
func NewService(cfg common.MailboxConfig, scannerService *scanner.Service, logger arbor.ILogger) *Service {
	return &Service{
		cfg:     cfg,
		scanner: scannerService,
		logger:  logger,
	}
}

// Start begins polling the configured mailbox. Returns immediately when the
// mailbox is disabled in config.
func (s *Service) Start() error {
	if !s.cfg.Enabled {
		s.logger.Debug().Msg("Mailbox ingestion disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("mailbox service already started")
	}

	interval, err := time.ParseDuration(s.cfg.PollInterval)
	if err != nil || interval <= 0 {
		interval = 5 * time.Minute
	}

	s.stop = make(chan struct{})
	s.started = true

	s.done.Add(1)
	go s.pollLoop(interval)

	s.logger.Info().
		Str("host", s.cfg.Host).
		Str("folder", s.folder()).
		Str("interval", interval.String()).
		Msg("Mailbox polling started")

	return nil
}

// Stop halts polling and waits for an in-flight poll to finish
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	close(s.stop)
	s.started = false
	s.mu.Unlock()

	s.done.Wait()
	s.logger.Info().Msg("Mailbox polling stopped")
}

func (s *Service) pollLoop(interval time.Duration) {
	defer s.done.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First poll runs immediately rather than one interval in
	s.pollSafe()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.pollSafe()
		}
	}
}

// pollSafe runs one poll and never lets an error or panic escape the loop
func (s *Service) pollSafe() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in mailbox poll")
		}
	}()

	if _, err := s.PollOnce(context.Background()); err != nil {
		s.logger.Warn().Err(err).Msg("Mailbox poll failed")
	}
}

// PollOnce fetches unseen messages, submits scan jobs for their document
// attachments, and marks handled messages seen. Returns the number of scans
// submitted.
func (s *Service) PollOnce(ctx context.Context) (int, error) {
	if s.cfg.Host == "" || s.cfg.Username == "" || s.cfg.Password == "" {
		return 0, fmt.Errorf("mailbox not configured")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.port())

	var c *client.Client
	var err error
	if s.cfg.UseTLS {
		c, err = client.DialTLS(addr, nil)
	} else {
		c, err = client.Dial(addr)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		return 0, fmt.Errorf("IMAP login failed: %w", err)
	}

	mbox, err := c.Select(s.folder(), false)
	if err != nil {
		return 0, fmt.Errorf("failed to select %s: %w", s.folder(), err)
	}

	if mbox.Messages == 0 {
		s.logger.Debug().Msg("No messages in mailbox")
		return 0, nil
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	seqNums, err := c.Search(criteria)
	if err != nil {
		return 0, fmt.Errorf("failed to search for unseen messages: %w", err)
	}

	if len(seqNums) == 0 {
		s.logger.Debug().Msg("No unseen messages")
		return 0, nil
	}

	s.logger.Debug().Int("count", len(seqNums)).Msg("Found unseen messages")

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	messages := make(chan *imap.Message, len(seqNums))
	section := &imap.BodySectionName{}

	fetchDone := make(chan error, 1)
	go func() {
		fetchDone <- c.Fetch(seqSet, []imap.FetchItem{imap.FetchEnvelope, imap.FetchFlags, section.FetchItem()}, messages)
	}()

	// Parse while the fetch streams; submissions and flag updates wait until
	// the fetch command finishes so the connection carries one command at a
	// time.
	type submission struct {
		seqNum uint32
		req    *models.ScanRequest
	}
	var pending []submission
	var handled []uint32

	for msg := range messages {
		if msg == nil {
			continue
		}

		docs, err := s.attachmentDocuments(msg, section)
		if err != nil {
			s.logger.Warn().Err(err).Uint32("seq", msg.SeqNum).Msg("Failed to parse message")
			handled = append(handled, msg.SeqNum)
			continue
		}

		if len(docs) == 0 {
			s.logger.Debug().Uint32("seq", msg.SeqNum).Msg("Message has no processable attachments")
			handled = append(handled, msg.SeqNum)
			continue
		}

		pending = append(pending, submission{
			seqNum: msg.SeqNum,
			req: &models.ScanRequest{
				CompanyName: s.companyName(msg),
				Documents:   docs,
			},
		})
	}

	if err := <-fetchDone; err != nil {
		return 0, fmt.Errorf("failed to fetch messages: %w", err)
	}

	submitted := 0
	for _, sub := range pending {
		job, err := s.scanner.Submit(ctx, sub.req, "mailbox")
		if err != nil {
			// Left unseen so the next poll retries it
			s.logger.Warn().Err(err).Uint32("seq", sub.seqNum).Msg("Failed to submit scan from message")
			continue
		}

		s.logger.Info().
			Str("scan_id", job.ID).
			Str("company", job.CompanyName).
			Int("documents", len(sub.req.Documents)).
			Msg("Scan submitted from mailbox message")

		handled = append(handled, sub.seqNum)
		submitted++
	}

	if len(handled) > 0 {
		if err := s.markSeen(c, handled); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to mark messages as seen")
		}
	}

	return submitted, nil
}

// attachmentDocuments walks the MIME parts of a fetched message and returns
// the attachments the scan pipeline can process
func (s *Service) attachmentDocuments(msg *imap.Message, section *imap.BodySectionName) ([]models.ScanDocumentInput, error) {
	r := msg.GetBody(section)
	if r == nil {
		return nil, fmt.Errorf("no body section")
	}
	return collectAttachments(r, s.logger)
}

// collectAttachments extracts scan documents from a raw MIME message. Parts
// with unsupported extensions or oversized bodies are skipped, not fatal.
func collectAttachments(r io.Reader, logger arbor.ILogger) ([]models.ScanDocumentInput, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail reader: %w", err)
	}

	var docs []models.ScanDocumentInput
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read next part: %w", err)
		}

		var filename string
		switch h := p.Header.(type) {
		case *mail.AttachmentHeader:
			filename, _ = h.Filename()
		case *mail.InlineHeader:
			// Some clients send attachments with inline disposition
			filename, _ = h.Filename()
		}

		if filename == "" {
			continue
		}

		mediaType, err := models.MediaTypeForFile(filename)
		if err != nil {
			logger.Debug().Str("filename", filename).Msg("Skipping unsupported attachment")
			continue
		}

		content, err := io.ReadAll(io.LimitReader(p.Body, maxAttachmentBytes+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment %s: %w", filename, err)
		}
		if len(content) > maxAttachmentBytes {
			logger.Warn().Str("filename", filename).Msg("Skipping oversized attachment")
			continue
		}

		docs = append(docs, models.ScanDocumentInput{
			Name:      filename,
			MediaType: mediaType,
			Content:   content,
		})
	}

	return docs, nil
}

// companyName derives the scan's company name from the message, preferring
// the subject line
func (s *Service) companyName(msg *imap.Message) string {
	if msg.Envelope == nil {
		return "Unknown Company"
	}
	if subject := strings.TrimSpace(msg.Envelope.Subject); subject != "" {
		return subject
	}
	if len(msg.Envelope.From) > 0 {
		if from := msg.Envelope.From[0].Address(); from != "" {
			return from
		}
	}
	return "Unknown Company"
}

// markSeen flags the given messages as seen so they are not fetched again
func (s *Service) markSeen(c *client.Client, seqNums []uint32) error {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}

	if err := c.Store(seqSet, item, flags, nil); err != nil {
		return fmt.Errorf("failed to mark messages as seen: %w", err)
	}

	s.logger.Debug().Int("count", len(seqNums)).Msg("Marked messages as seen")
	return nil
}

func (s *Service) port() int {
	if s.cfg.Port > 0 {
		return s.cfg.Port
	}
	return 993
}

func (s *Service) folder() string {
	if s.cfg.Folder != "" {
		return s.cfg.Folder
	}
	return "INBOX"
}
