package poller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	authdomain "mailminder-backend/internal/auth/domain"
	authrepo "mailminder-backend/internal/auth/repository"
	ledgerdomain "mailminder-backend/internal/ledger/domain"
	ledgerrepo "mailminder-backend/internal/ledger/repository"
	monitordomain "mailminder-backend/internal/monitor/domain"
	monitorrepo "mailminder-backend/internal/monitor/repository"
	"mailminder-backend/internal/monitor/schedule"
	"mailminder-backend/pkg/ai"

	"golang.org/x/oauth2"
)

const (
	excerptLimit      = 200
	calendarDaysAhead = 7
)

// Poller drives the periodic check cycle: every tick it walks all users with
// an active service, evaluates their monitors against the current time, and
// runs due checks end to end (mail fetch, AI reply, send, ledger accounting).
type Poller struct {
	settingsRepo  monitorrepo.SettingsRepository
	monitorRepo   monitorrepo.MonitorRepository
	accountRepo   authrepo.AccountRepository
	counterRepo   ledgerrepo.CheckCounterRepository
	respondedRepo ledgerrepo.RespondedEmailRepository
	activityRepo  ledgerrepo.ActivityLogRepository

	providers map[string]monitordomain.MailProvider // keyed by account provider kind
	calendar  monitordomain.CalendarProvider
	responder ai.Responder

	interval    time.Duration
	concurrency int

	// now is swappable in tests
	now func() time.Time

	tickMu   sync.Mutex // guards against overlapping cycles
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewPoller(
	settingsRepo monitorrepo.SettingsRepository,
	monitorRepo monitorrepo.MonitorRepository,
	accountRepo authrepo.AccountRepository,
	counterRepo ledgerrepo.CheckCounterRepository,
	respondedRepo ledgerrepo.RespondedEmailRepository,
	activityRepo ledgerrepo.ActivityLogRepository,
	providers map[string]monitordomain.MailProvider,
	calendar monitordomain.CalendarProvider,
	responder ai.Responder,
	interval time.Duration,
	concurrency int,
) *Poller {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Poller{
		settingsRepo:  settingsRepo,
		monitorRepo:   monitorRepo,
		accountRepo:   accountRepo,
		counterRepo:   counterRepo,
		respondedRepo: respondedRepo,
		activityRepo:  activityRepo,
		providers:     providers,
		calendar:      calendar,
		responder:     responder,
		interval:      interval,
		concurrency:   concurrency,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
}

// Start launches the poll loop in a background goroutine
func (p *Poller) Start() {
	log.Printf("[Poller] Starting with interval %v", p.interval)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.RunCycle(context.Background())
			case <-p.stopChan:
				return
			}
		}
	}()
}

// Stop halts the poll loop and waits for an in-flight cycle to finish
func (p *Poller) Stop() {
	close(p.stopChan)
	p.wg.Wait()
	log.Println("[Poller] Stopped")
}

// RunCycle executes one full poll cycle. If the previous cycle is still
// running the tick is skipped rather than stacked.
func (p *Poller) RunCycle(ctx context.Context) {
	if !p.tickMu.TryLock() {
		log.Println("[Poller] Previous cycle still running, skipping tick")
		return
	}
	defer p.tickMu.Unlock()

	userIDs, err := p.settingsRepo.ListUserIDs()
	if err != nil {
		log.Printf("[Poller] Failed to list users: %v", err)
		return
	}

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for _, userID := range userIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()
			p.pollUser(ctx, id)
		}(userID)
	}
	wg.Wait()
}

// pollUser runs every due monitor for one user. Settings and monitor flags
// are re-read here so a pause takes effect on the next tick at the latest.
func (p *Poller) pollUser(ctx context.Context, userID string) {
	settings, err := p.settingsRepo.Get(userID)
	if err != nil {
		log.Printf("[Poller] Failed to load settings for user %s: %v", userID, err)
		return
	}
	if settings == nil || !settings.ServiceActive {
		return
	}

	monitors, err := p.monitorRepo.FindActiveByUserID(userID)
	if err != nil {
		log.Printf("[Poller] Failed to load monitors for user %s: %v", userID, err)
		return
	}
	if len(monitors) == 0 {
		return
	}

	now := p.now().In(settings.Location())

	// One credential fetch per mailbox account, shared by its monitors
	byLabel := make(map[string][]*monitordomain.Monitor)
	for _, m := range monitors {
		byLabel[m.AccountLabel] = append(byLabel[m.AccountLabel], m)
	}

	for label, group := range byLabel {
		account, err := p.accountRepo.FindByLabel(userID, label)
		if err != nil || account == nil {
			for _, m := range group {
				p.logError(userID, m, fmt.Sprintf("no mailbox account for label %q", label))
			}
			continue
		}
		provider, ok := p.providers[account.Provider]
		if !ok {
			for _, m := range group {
				p.logError(userID, m, fmt.Sprintf("unsupported mail provider %q", account.Provider))
			}
			continue
		}
		for _, m := range group {
			if err := p.checkMonitor(ctx, settings, account, provider, m, now); err != nil {
				log.Printf("[Poller] Monitor %s (user %s): %v", m.ID, userID, err)
			}
		}
	}
}

// checkMonitor runs one monitor through the full decision chain:
// suppression, schedule, quota, then the actual mailbox check
func (p *Poller) checkMonitor(ctx context.Context, settings *monitordomain.UserSettings, account *authdomain.EmailAccount, provider monitordomain.MailProvider, m *monitordomain.Monitor, now time.Time) error {
	userID := m.UserID

	if m.SuppressedUntil != nil && now.Before(*m.SuppressedUntil) {
		return nil
	}
	if !schedule.IsDue(m.Schedule, now) {
		return nil
	}

	monitorID := schedule.MonitorID(m.SenderEmail, m.Schedule)
	periodID := schedule.PeriodFor(m.Schedule.Kind, now)
	maxChecks, unlimited := schedule.MaxChecks(m, periodID)

	used := 0
	if counter, err := p.counterRepo.Get(userID, monitorID, periodID); err != nil {
		return fmt.Errorf("counter lookup: %w", err)
	} else if counter != nil {
		used = counter.CurrentCount
	}

	var quota *int
	if !unlimited {
		quota = &maxChecks
	}

	if !unlimited && used >= maxChecks {
		p.appendLog(&ledgerdomain.ActivityLogEntry{
			UserID:       userID,
			SenderEmail:  m.SenderEmail,
			Status:       ledgerdomain.StatusLimitReached,
			CheckNumber:  used,
			TotalAllowed: quota,
		})
		return nil
	}

	creds := credentialsFor(account)
	onRefresh := p.tokenRefresher(userID, account.Label)

	messages, err := provider.ListUnread(ctx, creds, monitordomain.MailQuery{
		FromSender: m.SenderEmail,
		Keywords:   m.Keywords,
	}, onRefresh)
	if err != nil {
		p.logError(userID, m, fmt.Sprintf("mailbox check failed: %v", err))
		return err
	}

	// This attempt is check number used+1. The ledger increment happens only
	// after message processing finishes, so a crash mid-flight leaves a
	// logged attempt without a consumed check rather than the reverse.
	checkNumber := used + 1

	replied := false
	if len(messages) == 0 {
		p.appendLog(&ledgerdomain.ActivityLogEntry{
			UserID:       userID,
			SenderEmail:  m.SenderEmail,
			Status:       ledgerdomain.StatusNoEmail,
			CheckNumber:  checkNumber,
			TotalAllowed: quota,
		})
	} else {
		for _, msg := range messages {
			sent, err := p.respondToMessage(ctx, settings, creds, provider, m, msg, checkNumber, quota, now, onRefresh)
			if err != nil {
				p.logError(userID, m, err.Error())
				continue
			}
			if sent {
				replied = true
			}
		}
	}

	if _, err := p.counterRepo.Increment(userID, monitorID, periodID, quota); err != nil {
		return fmt.Errorf("counter increment: %w", err)
	}

	if replied && m.StopAfter != monitordomain.StopNever {
		until := p.suppressionBoundary(m, now)
		if err := p.monitorRepo.Suppress(userID, m.ID, &until); err != nil {
			log.Printf("[Poller] Failed to suppress monitor %s: %v", m.ID, err)
		}
	}
	return nil
}

// respondToMessage handles one inbound message: idempotency check, AI reply,
// optional calendar event, send, then the responded marker. The marker is
// written only after a successful send so a crash mid-flight retries the
// reply rather than dropping it.
func (p *Poller) respondToMessage(ctx context.Context, settings *monitordomain.UserSettings, creds monitordomain.MailCredentials, provider monitordomain.MailProvider, m *monitordomain.Monitor, msg *monitordomain.MailMessage, checkNumber int, quota *int, now time.Time, onRefresh monitordomain.TokenUpdateFunc) (bool, error) {
	userID := m.UserID

	responded, err := p.respondedRepo.IsResponded(userID, msg.ID)
	if err != nil {
		return false, fmt.Errorf("responded lookup: %w", err)
	}
	if responded {
		return false, nil
	}

	full := msg
	if full.Body == "" {
		full, err = provider.GetFull(ctx, creds, msg.ID, onRefresh)
		if err != nil {
			return false, fmt.Errorf("message fetch: %w", err)
		}
	}

	p.appendLog(&ledgerdomain.ActivityLogEntry{
		UserID:       userID,
		SenderEmail:  m.SenderEmail,
		Status:       ledgerdomain.StatusNewEmail,
		CheckNumber:  checkNumber,
		TotalAllowed: quota,
		Subject:      full.Subject,
		Excerpt:      excerpt(full.Body),
	})

	template := settings.PromptTemplate
	data := PromptData{
		SenderName:  full.FromName,
		SenderEmail: full.From,
		Subject:     full.Subject,
		Body:        full.Body,
		CurrentDate: currentDate(now, settings.Location()),
	}
	if WantsCalendar(template) && p.calendar != nil {
		events, err := p.calendar.ListUpcoming(ctx, creds, settings.CalendarID, calendarDaysAhead, onRefresh)
		if err != nil {
			log.Printf("[Poller] Calendar lookup failed for user %s: %v", userID, err)
		}
		data.CalendarEvents = FormatEvents(events)
	}
	prompt := BuildPrompt(template, data)

	raw, err := p.responder.GenerateReply(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("AI generation: %w", err)
	}
	result := ai.ParseReply(raw)

	if result.CreateEvent != nil && p.calendar != nil {
		if event := toCalendarEvent(result.CreateEvent); event != nil {
			if err := p.calendar.CreateEvent(ctx, creds, settings.CalendarID, event, onRefresh); err != nil {
				log.Printf("[Poller] Failed to create calendar event for user %s: %v", userID, err)
			}
		}
	}

	body := result.Response
	if settings.ReplySignature != "" {
		body += "\n\n" + settings.ReplySignature
	}

	if err := provider.SendReply(ctx, creds, full, body, onRefresh); err != nil {
		return false, fmt.Errorf("send failed: %w", err)
	}

	if err := provider.MarkRead(ctx, creds, full.ID, onRefresh); err != nil {
		log.Printf("[Poller] Failed to mark message %s read: %v", full.ID, err)
	}

	if _, err := p.respondedRepo.MarkResponded(userID, full.ID); err != nil {
		log.Printf("[Poller] Failed to record responded marker for %s: %v", full.ID, err)
	}

	p.appendLog(&ledgerdomain.ActivityLogEntry{
		UserID:       userID,
		SenderEmail:  m.SenderEmail,
		Status:       ledgerdomain.StatusSent,
		CheckNumber:  checkNumber,
		TotalAllowed: quota,
		Subject:      full.Subject,
		Excerpt:      excerpt(full.Body),
		AIResponse:   result.Response,
	})
	return true, nil
}

// suppressionBoundary maps the monitor's stop-after-response mode to the
// instant checks resume
func (p *Poller) suppressionBoundary(m *monitordomain.Monitor, now time.Time) time.Time {
	switch m.StopAfter {
	case monitordomain.StopRestOfDay:
		return schedule.NextMidnight(now)
	case monitordomain.StopRestOfWindow:
		return schedule.WindowEnd(m.Schedule, now)
	case monitordomain.StopNextPeriod:
		return schedule.NextPeriodStart(m.Schedule, now)
	}
	return now
}

func (p *Poller) tokenRefresher(userID, label string) monitordomain.TokenUpdateFunc {
	return func(t *oauth2.Token) error {
		expiry := t.Expiry
		return p.accountRepo.UpdateTokens(userID, label, t.AccessToken, t.RefreshToken, &expiry)
	}
}

func (p *Poller) logError(userID string, m *monitordomain.Monitor, message string) {
	log.Printf("[Poller] %s (monitor %s)", message, m.ID)
	p.appendLog(&ledgerdomain.ActivityLogEntry{
		UserID:       userID,
		SenderEmail:  m.SenderEmail,
		Status:       ledgerdomain.StatusError,
		ErrorMessage: message,
	})
}

func (p *Poller) appendLog(entry *ledgerdomain.ActivityLogEntry) {
	if err := p.activityRepo.Append(entry); err != nil {
		log.Printf("[Poller] Failed to append activity log: %v", err)
	}
}

func credentialsFor(account *authdomain.EmailAccount) monitordomain.MailCredentials {
	return monitordomain.MailCredentials{
		Address:      account.Address,
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
		IMAPHost:     account.IMAPHost,
		SMTPHost:     account.SMTPHost,
		Password:     account.IMAPPassword,
	}
}

func toCalendarEvent(in *ai.EventInstruction) *monitordomain.CalendarEvent {
	start, err := time.Parse(time.RFC3339, in.StartTime)
	if err != nil {
		return nil
	}
	end := start.Add(time.Hour)
	if in.EndTime != "" {
		if parsed, err := time.Parse(time.RFC3339, in.EndTime); err == nil {
			end = parsed
		}
	}
	return &monitordomain.CalendarEvent{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		StartTime:   start,
		EndTime:     end,
	}
}

func excerpt(body string) string {
	if len(body) <= excerptLimit {
		return body
	}
	return body[:excerptLimit] + "..."
}
