package poller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	authdomain "mailminder-backend/internal/auth/domain"
	ledgerdomain "mailminder-backend/internal/ledger/domain"
	monitordomain "mailminder-backend/internal/monitor/domain"
	"mailminder-backend/internal/monitor/schedule"
)

// In-memory fakes

type fakeSettings struct {
	mu       sync.Mutex
	settings map[string]*monitordomain.UserSettings
}

func (f *fakeSettings) Get(userID string) (*monitordomain.UserSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings[userID], nil
}

func (f *fakeSettings) Upsert(s *monitordomain.UserSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[s.UserID] = s
	return nil
}

func (f *fakeSettings) ListUserIDs() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.settings))
	for id := range f.settings {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeMonitors struct {
	mu       sync.Mutex
	monitors []*monitordomain.Monitor
}

func (f *fakeMonitors) Create(m *monitordomain.Monitor) error { f.monitors = append(f.monitors, m); return nil }
func (f *fakeMonitors) Update(m *monitordomain.Monitor) error { return nil }
func (f *fakeMonitors) Delete(userID, id string) error        { return nil }

func (f *fakeMonitors) FindByID(userID, id string) (*monitordomain.Monitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.monitors {
		if m.UserID == userID && m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMonitors) FindByUserID(userID string) ([]*monitordomain.Monitor, error) {
	return f.FindActiveByUserID(userID)
}

func (f *fakeMonitors) FindActiveByUserID(userID string) ([]*monitordomain.Monitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*monitordomain.Monitor
	for _, m := range f.monitors {
		if m.UserID == userID && m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMonitors) SetActive(userID, id string, active bool) error { return nil }

func (f *fakeMonitors) Suppress(userID, id string, until *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.monitors {
		if m.UserID == userID && m.ID == id {
			m.SuppressedUntil = until
		}
	}
	return nil
}

type fakeAccounts struct {
	accounts map[string]*authdomain.EmailAccount // keyed by label
	tokens   []string
}

func (f *fakeAccounts) Upsert(a *authdomain.EmailAccount) error { return nil }

func (f *fakeAccounts) FindByLabel(userID, label string) (*authdomain.EmailAccount, error) {
	return f.accounts[label], nil
}

func (f *fakeAccounts) FindByUserID(userID string) ([]*authdomain.EmailAccount, error) {
	return nil, nil
}

func (f *fakeAccounts) UpdateTokens(userID, label, accessToken, refreshToken string, expiry *time.Time) error {
	f.tokens = append(f.tokens, accessToken)
	return nil
}

func (f *fakeAccounts) Delete(userID, label string) error { return nil }

type fakeCounters struct {
	mu          sync.Mutex
	counters    map[string]*ledgerdomain.CheckCounter
	onIncrement func()
}

func counterKey(userID, monitorID, periodID string) string {
	return userID + "/" + monitorID + "/" + periodID
}

func (f *fakeCounters) Increment(userID, monitorID, periodID string, maxCount *int) (*ledgerdomain.CheckCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onIncrement != nil {
		f.onIncrement()
	}
	key := counterKey(userID, monitorID, periodID)
	c, ok := f.counters[key]
	if !ok {
		c = &ledgerdomain.CheckCounter{UserID: userID, MonitorID: monitorID, PeriodID: periodID, MaxCount: maxCount}
		f.counters[key] = c
	}
	c.CurrentCount++
	c.LastCheckAt = time.Now()
	return c, nil
}

func (f *fakeCounters) Get(userID, monitorID, periodID string) (*ledgerdomain.CheckCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counters[counterKey(userID, monitorID, periodID)], nil
}

func (f *fakeCounters) ResetAll(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.counters {
		if c.UserID == userID {
			c.CurrentCount = 0
		}
	}
	return nil
}

func (f *fakeCounters) ListByUser(userID string) ([]*ledgerdomain.CheckCounter, error) {
	return nil, nil
}

type fakeResponded struct {
	mu      sync.Mutex
	markers map[string]bool
}

func (f *fakeResponded) IsResponded(userID, emailID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markers[userID+"/"+emailID], nil
}

func (f *fakeResponded) MarkResponded(userID, emailID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userID + "/" + emailID
	if f.markers[key] {
		return true, nil
	}
	f.markers[key] = true
	return false, nil
}

type fakeActivity struct {
	mu      sync.Mutex
	entries []*ledgerdomain.ActivityLogEntry
}

func (f *fakeActivity) Append(e *ledgerdomain.ActivityLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeActivity) ListByUser(userID string, limit, offset int) ([]*ledgerdomain.ActivityLogEntry, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

func (f *fakeActivity) byStatus(status ledgerdomain.ActivityStatus) []*ledgerdomain.ActivityLogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*ledgerdomain.ActivityLogEntry
	for _, e := range f.entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

type fakeMail struct {
	mu         sync.Mutex
	unread     []*monitordomain.MailMessage
	listCalls  int
	sent       []*monitordomain.MailMessage
	sentBodies []string
	markedRead []string
	sendErr    error
	onSend     func()
}

func (f *fakeMail) ListUnread(ctx context.Context, creds monitordomain.MailCredentials, q monitordomain.MailQuery, _ monitordomain.TokenUpdateFunc) ([]*monitordomain.MailMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.unread, nil
}

func (f *fakeMail) GetFull(ctx context.Context, creds monitordomain.MailCredentials, messageID string, _ monitordomain.TokenUpdateFunc) (*monitordomain.MailMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.unread {
		if m.ID == messageID {
			full := *m
			if full.Body == "" {
				full.Body = "body of " + messageID
			}
			return &full, nil
		}
	}
	return nil, fmt.Errorf("message %s not found", messageID)
}

func (f *fakeMail) SendReply(ctx context.Context, creds monitordomain.MailCredentials, original *monitordomain.MailMessage, body string, _ monitordomain.TokenUpdateFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	if f.onSend != nil {
		f.onSend()
	}
	f.sent = append(f.sent, original)
	f.sentBodies = append(f.sentBodies, body)
	return nil
}

func (f *fakeMail) MarkRead(ctx context.Context, creds monitordomain.MailCredentials, messageID string, _ monitordomain.TokenUpdateFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedRead = append(f.markedRead, messageID)
	return nil
}

type fakeAI struct {
	reply string
	err   error
}

func (f *fakeAI) GenerateReply(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// Test harness

type harness struct {
	poller    *Poller
	settings  *fakeSettings
	monitors  *fakeMonitors
	counters  *fakeCounters
	responded *fakeResponded
	activity  *fakeActivity
	mail      *fakeMail
	ai        *fakeAI
	now       time.Time
}

func intPtrOf(n int) *int { return &n }

// tuesdayAt returns 2025-12-23 (a Tuesday) at the given clock time
func tuesdayAt(hour, min int) time.Time {
	return time.Date(2025, 12, 23, hour, min, 0, 0, time.UTC)
}

func newHarness(t *testing.T, m *monitordomain.Monitor) *harness {
	t.Helper()
	h := &harness{
		settings: &fakeSettings{settings: map[string]*monitordomain.UserSettings{
			"user1": {UserID: "user1", ServiceActive: true, PromptTemplate: "Reply to {{sender_email}} about {{subject}}: {{body}}", Timezone: "UTC"},
		}},
		monitors:  &fakeMonitors{monitors: []*monitordomain.Monitor{m}},
		counters:  &fakeCounters{counters: map[string]*ledgerdomain.CheckCounter{}},
		responded: &fakeResponded{markers: map[string]bool{}},
		activity:  &fakeActivity{},
		mail:      &fakeMail{},
		ai:        &fakeAI{reply: "Thanks, I will get back to you."},
		now:       tuesdayAt(10, 0),
	}
	accounts := &fakeAccounts{accounts: map[string]*authdomain.EmailAccount{
		"": {UserID: "user1", Address: "me@example.com", Provider: "gmail"},
	}}
	h.poller = NewPoller(
		h.settings, h.monitors, accounts,
		h.counters, h.responded, h.activity,
		map[string]monitordomain.MailProvider{"gmail": h.mail},
		nil, h.ai,
		time.Minute, 2,
	)
	h.poller.now = func() time.Time { return h.now }
	return h
}

func bossMonitor(cap *int) *monitordomain.Monitor {
	return &monitordomain.Monitor{
		ID:          "mon1",
		UserID:      "user1",
		SenderEmail: "boss@co.com",
		IsActive:    true,
		StopAfter:   monitordomain.StopNever,
		Schedule: monitordomain.Schedule{
			Kind: monitordomain.ScheduleRecurring,
			Recurring: &monitordomain.RecurringWindow{
				DaysOfWeek:      []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
				StartTime:       "09:00",
				EndTime:         "17:00",
				IntervalMinutes: 15,
				MaxChecksPerDay: cap,
			},
		},
	}
}

func TestCycleNoEmailLogsAndCounts(t *testing.T) {
	h := newHarness(t, bossMonitor(intPtrOf(30)))

	h.poller.RunCycle(context.Background())

	if h.mail.listCalls != 1 {
		t.Fatalf("listCalls = %d, want 1", h.mail.listCalls)
	}
	entries := h.activity.byStatus(ledgerdomain.StatusNoEmail)
	if len(entries) != 1 {
		t.Fatalf("no_email entries = %d, want 1", len(entries))
	}
	if entries[0].CheckNumber != 1 {
		t.Errorf("CheckNumber = %d, want 1", entries[0].CheckNumber)
	}
	if entries[0].TotalAllowed == nil || *entries[0].TotalAllowed != 30 {
		t.Errorf("TotalAllowed = %v, want 30", entries[0].TotalAllowed)
	}
}

func TestCycleRepliesAndMarksResponded(t *testing.T) {
	h := newHarness(t, bossMonitor(nil))
	h.mail.unread = []*monitordomain.MailMessage{
		{ID: "msg1", ThreadID: "t1", From: "boss@co.com", FromName: "Boss", Subject: "Report", Body: "Send it."},
	}

	h.poller.RunCycle(context.Background())

	if len(h.mail.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(h.mail.sent))
	}
	if !strings.Contains(h.mail.sentBodies[0], "Thanks, I will get back to you.") {
		t.Errorf("reply body = %q", h.mail.sentBodies[0])
	}
	if responded, _ := h.responded.IsResponded("user1", "msg1"); !responded {
		t.Error("message should carry responded marker after send")
	}
	if sent := h.activity.byStatus(ledgerdomain.StatusSent); len(sent) != 1 {
		t.Fatalf("sent entries = %d, want 1", len(sent))
	}

	// A second cycle sees the same unread message but must not reply again
	h.poller.RunCycle(context.Background())
	if len(h.mail.sent) != 1 {
		t.Errorf("sent after second cycle = %d, want 1", len(h.mail.sent))
	}
}

func TestCycleMarkerOnlyAfterSuccessfulSend(t *testing.T) {
	h := newHarness(t, bossMonitor(nil))
	h.mail.unread = []*monitordomain.MailMessage{
		{ID: "msg1", From: "boss@co.com", FromName: "Boss", Subject: "Report", Body: "Send it."},
	}
	h.mail.sendErr = errors.New("smtp unavailable")

	h.poller.RunCycle(context.Background())

	if responded, _ := h.responded.IsResponded("user1", "msg1"); responded {
		t.Error("failed send must not record a responded marker")
	}
	if errs := h.activity.byStatus(ledgerdomain.StatusError); len(errs) != 1 {
		t.Fatalf("error entries = %d, want 1", len(errs))
	}

	// Once sending recovers the reply goes out
	h.mail.sendErr = nil
	h.poller.RunCycle(context.Background())
	if len(h.mail.sent) != 1 {
		t.Errorf("sent after recovery = %d, want 1", len(h.mail.sent))
	}
}

func TestCycleQuotaBlocksCheck(t *testing.T) {
	h := newHarness(t, bossMonitor(intPtrOf(2)))

	for i := 0; i < 4; i++ {
		h.poller.RunCycle(context.Background())
	}

	if h.mail.listCalls != 2 {
		t.Errorf("listCalls = %d, want 2 (cap)", h.mail.listCalls)
	}
	limited := h.activity.byStatus(ledgerdomain.StatusLimitReached)
	if len(limited) != 2 {
		t.Fatalf("limit_reached entries = %d, want 2", len(limited))
	}
	if limited[0].CheckNumber != 2 {
		t.Errorf("blocked CheckNumber = %d, want 2", limited[0].CheckNumber)
	}
}

func TestThirtyCapStopsOnThirtyFirstAttempt(t *testing.T) {
	h := newHarness(t, bossMonitor(intPtrOf(30)))

	for i := 0; i < 31; i++ {
		h.poller.RunCycle(context.Background())
	}

	if h.mail.listCalls != 30 {
		t.Errorf("listCalls = %d, want 30", h.mail.listCalls)
	}
	if limited := h.activity.byStatus(ledgerdomain.StatusLimitReached); len(limited) != 1 {
		t.Errorf("limit_reached entries = %d, want 1", len(limited))
	}
}

func TestZeroCapNeverChecks(t *testing.T) {
	h := newHarness(t, bossMonitor(intPtrOf(0)))

	h.poller.RunCycle(context.Background())

	if h.mail.listCalls != 0 {
		t.Errorf("listCalls = %d, want 0", h.mail.listCalls)
	}
	if limited := h.activity.byStatus(ledgerdomain.StatusLimitReached); len(limited) != 1 {
		t.Errorf("limit_reached entries = %d, want 1", len(limited))
	}
}

func TestLedgerIncrementsAfterMessageProcessing(t *testing.T) {
	h := newHarness(t, bossMonitor(nil))
	h.mail.unread = []*monitordomain.MailMessage{
		{ID: "msg1", From: "boss@co.com", FromName: "Boss", Subject: "Report", Body: "Send it."},
	}

	var order []string
	h.mail.onSend = func() { order = append(order, "send") }
	h.counters.onIncrement = func() { order = append(order, "increment") }

	h.poller.RunCycle(context.Background())

	if len(order) != 2 || order[0] != "send" || order[1] != "increment" {
		t.Fatalf("call order = %v, want [send increment]", order)
	}
}

func TestMonitorDeactivatedBetweenTicks(t *testing.T) {
	m := bossMonitor(nil)
	h := newHarness(t, m)

	h.poller.RunCycle(context.Background())
	if h.mail.listCalls != 1 {
		t.Fatalf("listCalls = %d, want 1 after first cycle", h.mail.listCalls)
	}

	// The flag flips between ticks; the next cycle re-reads it from storage
	// and must skip the monitor
	m.IsActive = false
	h.poller.RunCycle(context.Background())
	if h.mail.listCalls != 1 {
		t.Errorf("listCalls = %d, want 1 after deactivation", h.mail.listCalls)
	}
}

func TestServiceInactiveSkipsUser(t *testing.T) {
	h := newHarness(t, bossMonitor(nil))
	h.settings.settings["user1"].ServiceActive = false

	h.poller.RunCycle(context.Background())

	if h.mail.listCalls != 0 {
		t.Errorf("listCalls = %d, want 0 when service paused", h.mail.listCalls)
	}
}

func TestOutsideWindowSkipsMonitor(t *testing.T) {
	h := newHarness(t, bossMonitor(nil))
	h.now = tuesdayAt(8, 0) // before the 09:00 window opens

	h.poller.RunCycle(context.Background())

	if h.mail.listCalls != 0 {
		t.Errorf("listCalls = %d, want 0 outside window", h.mail.listCalls)
	}
}

func TestStopAfterResponseSuppresses(t *testing.T) {
	m := bossMonitor(nil)
	m.StopAfter = monitordomain.StopRestOfDay
	h := newHarness(t, m)
	h.mail.unread = []*monitordomain.MailMessage{
		{ID: "msg1", From: "boss@co.com", FromName: "Boss", Subject: "Report", Body: "Send it."},
	}

	h.poller.RunCycle(context.Background())

	if m.SuppressedUntil == nil {
		t.Fatal("monitor should be suppressed after reply")
	}
	want := schedule.NextMidnight(h.now)
	if !m.SuppressedUntil.Equal(want) {
		t.Errorf("SuppressedUntil = %v, want %v", m.SuppressedUntil, want)
	}

	// Suppressed monitor does not check again today
	h.mail.unread = nil
	h.poller.RunCycle(context.Background())
	if h.mail.listCalls != 1 {
		t.Errorf("listCalls = %d, want 1 while suppressed", h.mail.listCalls)
	}

	// Suppression lapses at midnight
	h.now = want.Add(9*time.Hour + 30*time.Minute)
	h.poller.RunCycle(context.Background())
	if h.mail.listCalls != 2 {
		t.Errorf("listCalls = %d, want 2 after suppression lapsed", h.mail.listCalls)
	}
}

func TestEventInstructionCreatesCalendarEntry(t *testing.T) {
	m := bossMonitor(nil)
	h := newHarness(t, m)
	h.mail.unread = []*monitordomain.MailMessage{
		{ID: "msg1", From: "boss@co.com", FromName: "Boss", Subject: "Meeting", Body: "Tomorrow 3pm?"},
	}
	h.ai.reply = `{"response": "Confirmed, see you then.", "create_event": {"title": "Meeting with Boss", "start_time": "2025-12-24T15:00:00Z", "end_time": "2025-12-24T16:00:00Z"}}`

	cal := &fakeCalendar{}
	h.poller.calendar = cal

	h.poller.RunCycle(context.Background())

	if len(cal.created) != 1 {
		t.Fatalf("created events = %d, want 1", len(cal.created))
	}
	if cal.created[0].Title != "Meeting with Boss" {
		t.Errorf("event title = %q", cal.created[0].Title)
	}
	if len(h.mail.sentBodies) != 1 || !strings.Contains(h.mail.sentBodies[0], "Confirmed, see you then.") {
		t.Errorf("reply should carry only the response text, got %v", h.mail.sentBodies)
	}
}

type fakeCalendar struct {
	created []*monitordomain.CalendarEvent
}

func (f *fakeCalendar) ListUpcoming(ctx context.Context, creds monitordomain.MailCredentials, calendarID string, daysAhead int, _ monitordomain.TokenUpdateFunc) ([]*monitordomain.CalendarEvent, error) {
	return nil, nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, creds monitordomain.MailCredentials, calendarID string, event *monitordomain.CalendarEvent, _ monitordomain.TokenUpdateFunc) error {
	f.created = append(f.created, event)
	return nil
}
