package tui

import (
	"testing"
	"time"

	"github.com/sadopc/teamtrack/internal/analytics"
	"github.com/sadopc/teamtrack/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUserProject(t *testing.T, s *store.Store) (*store.User, *store.Project) {
	t.Helper()
	u, err := s.CreateUser("Alice", "developer")
	if err != nil {
		t.Fatal(err)
	}
	p, err := s.CreateProject("Apollo", "active", nil)
	if err != nil {
		t.Fatal(err)
	}
	return u, p
}

// ============================================================
// Timer model
// ============================================================

func TestTimerStartStop(t *testing.T) {
	s := newTestStore(t)
	u, p := seedUserProject(t, s)

	tm := newTimerModel(s)
	if tm.running() {
		t.Fatal("timer should start stopped")
	}

	err := tm.start(u.ID, "Alice", p.ID, "Apollo", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if !tm.running() {
		t.Fatal("timer should be running after start")
	}
	if tm.paused() {
		t.Fatal("timer should not be paused")
	}
	if tm.userID != u.ID || tm.projectID != p.ID {
		t.Fatal("user/project info not set")
	}
	if tm.intervalID == 0 {
		t.Fatal("interval ID should be set")
	}

	// Stopping almost immediately falls under the minimum duration,
	// so the interval is discarded rather than persisted.
	iv, discarded, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if !discarded {
		t.Fatal("sub-minute interval should be discarded")
	}
	if iv != nil {
		t.Fatal("discarded stop should not return an interval")
	}
	if tm.running() {
		t.Fatal("timer should be stopped")
	}

	running, _ := s.GetRunningInterval(nil)
	if running != nil {
		t.Fatal("discarded interval should be gone from the DB")
	}
}

func TestTimerStopWhenStopped(t *testing.T) {
	s := newTestStore(t)
	tm := newTimerModel(s)

	iv, discarded, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if iv != nil || discarded {
		t.Fatal("stop on stopped timer should be a no-op")
	}
}

func TestTimerPauseResume(t *testing.T) {
	s := newTestStore(t)
	u, p := seedUserProject(t, s)

	tm := newTimerModel(s)
	tm.start(u.ID, "Alice", p.ID, "Apollo", nil, "")

	tm.pause()
	if !tm.paused() {
		t.Fatal("timer should be paused")
	}
	if !tm.running() {
		t.Fatal("paused timer is still 'running' (not stopped)")
	}

	tm.resume()
	if tm.paused() {
		t.Fatal("timer should not be paused after resume")
	}
	if !tm.running() {
		t.Fatal("timer should be running after resume")
	}

	tm.stop()
}

func TestTimerPauseWhenNotRunning(t *testing.T) {
	s := newTestStore(t)
	tm := newTimerModel(s)

	// Pause when stopped — should be a no-op
	tm.pause()
	if tm.paused() {
		t.Fatal("should not be paused when stopped")
	}
}

func TestTimerToggle(t *testing.T) {
	s := newTestStore(t)
	u, p := seedUserProject(t, s)

	tm := newTimerModel(s)
	tm.start(u.ID, "Alice", p.ID, "Apollo", nil, "")

	tm.toggle() // running -> paused
	if !tm.paused() {
		t.Fatal("toggle should pause")
	}

	tm.toggle() // paused -> running
	if tm.paused() {
		t.Fatal("toggle should resume")
	}

	tm.stop()
}

func TestTimerToggleWhenStopped(t *testing.T) {
	s := newTestStore(t)
	tm := newTimerModel(s)

	// Toggle when stopped — should be a no-op
	tm.toggle()
	if tm.running() {
		t.Fatal("toggle should not start the timer")
	}
}

func TestTimerElapsed(t *testing.T) {
	s := newTestStore(t)
	u, p := seedUserProject(t, s)

	tm := newTimerModel(s)

	// Stopped timer should return 0
	if tm.currentElapsed() != 0 {
		t.Fatal("stopped timer should have 0 elapsed")
	}

	tm.start(u.ID, "Alice", p.ID, "Apollo", nil, "")
	time.Sleep(50 * time.Millisecond)

	elapsed := tm.currentElapsed()
	if elapsed < 40*time.Millisecond {
		t.Fatalf("elapsed too small: %v", elapsed)
	}

	tm.stop()
}

func TestTimerElapsedWhilePaused(t *testing.T) {
	s := newTestStore(t)
	u, p := seedUserProject(t, s)

	tm := newTimerModel(s)
	tm.start(u.ID, "Alice", p.ID, "Apollo", nil, "")

	time.Sleep(50 * time.Millisecond)
	tm.pause()
	pausedElapsed := tm.currentElapsed()

	time.Sleep(50 * time.Millisecond)
	// While paused, elapsed should not grow significantly
	stillPaused := tm.currentElapsed()
	diff := stillPaused - pausedElapsed
	if diff > 10*time.Millisecond {
		t.Fatalf("elapsed grew %v while paused", diff)
	}

	tm.stop()
}

func TestTimerIdleDetection(t *testing.T) {
	s := newTestStore(t)
	u, p := seedUserProject(t, s)

	tm := newTimerModel(s)
	tm.idleTimeout = 50 * time.Millisecond // very short for testing
	tm.start(u.ID, "Alice", p.ID, "Apollo", nil, "")

	time.Sleep(100 * time.Millisecond)
	tm.tick()

	if !tm.isIdle {
		t.Fatal("timer should detect idle")
	}
	if !tm.paused() {
		t.Fatal("timer should auto-pause on idle")
	}

	tm.stop()
}

func TestTimerIdleRecovery(t *testing.T) {
	s := newTestStore(t)
	u, p := seedUserProject(t, s)

	tm := newTimerModel(s)
	tm.idleTimeout = 50 * time.Millisecond
	tm.start(u.ID, "Alice", p.ID, "Apollo", nil, "")

	time.Sleep(100 * time.Millisecond)
	tm.tick() // triggers idle

	if !tm.isIdle || !tm.paused() {
		t.Fatal("should be idle and paused")
	}

	// Activity should resume
	tm.recordActivity()
	if tm.isIdle {
		t.Fatal("should no longer be idle after activity")
	}
	if tm.paused() {
		t.Fatal("should have resumed after activity")
	}

	tm.stop()
}

func TestTimerStartCreatesRunningInterval(t *testing.T) {
	s := newTestStore(t)
	u, p := seedUserProject(t, s)

	tm := newTimerModel(s)
	tm.start(u.ID, "Alice", p.ID, "Apollo", nil, "")

	running, _ := s.GetRunningInterval(nil)
	if running == nil {
		t.Fatal("start should create a DB interval")
	}
	if running.ID != tm.intervalID {
		t.Fatal("interval ID mismatch")
	}

	tm.stop()
}

func TestTimerStartWithTask(t *testing.T) {
	s := newTestStore(t)
	u, p := seedUserProject(t, s)
	task, err := s.CreateTask(p.ID, nil, "Feature", nil)
	if err != nil {
		t.Fatal(err)
	}

	tm := newTimerModel(s)
	tid := task.ID
	if err := tm.start(u.ID, "Alice", p.ID, "Apollo", &tid, "Feature"); err != nil {
		t.Fatal(err)
	}
	if tm.taskID == nil || *tm.taskID != tid {
		t.Fatal("task ID not set")
	}
	if tm.taskName != "Feature" {
		t.Fatal("task name not set")
	}

	tm.stop()
}

// ============================================================
// Helper functions
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Minute, "00:01:00"},
		{time.Hour, "01:00:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		got := formatDuration(tt.d)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{61, "00:01:01"},
		{3600, "01:00:00"},
		{86400, "24:00:00"},
	}
	for _, tt := range tests {
		got := formatSeconds(tt.secs)
		if got != tt.want {
			t.Errorf("formatSeconds(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatHoursF(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0.0h"},
		{1, "1.0h"},
		{1.5, "1.5h"},
		{12.25, "12.2h"},
	}
	for _, tt := range tests {
		got := formatHoursF(tt.hours)
		if got != tt.want {
			t.Errorf("formatHoursF(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	if len(viewNames) != 5 {
		t.Fatalf("expected 5 view names, got %d", len(viewNames))
	}
	expected := []string{"Dashboard", "Reports", "Projects", "Team", "Settings"}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
}

func TestViewStateConstants(t *testing.T) {
	if viewDashboard != 0 || viewReports != 1 || viewProjects != 2 || viewTeam != 3 || viewSettings != 4 {
		t.Fatal("view state constants out of order")
	}
}

// ============================================================
// Dashboard model
// ============================================================

func TestDashboardInit(t *testing.T) {
	s := newTestStore(t)
	d := newDashboardModel(s)

	if d.isRunning() {
		t.Fatal("dashboard timer should not be running initially")
	}
	if d.isPaused() {
		t.Fatal("dashboard timer should not be paused initially")
	}
	if d.elapsed() != 0 {
		t.Fatal("dashboard should have 0 elapsed initially")
	}
}

func TestDashboardStartStop(t *testing.T) {
	s := newTestStore(t)
	u, p := seedUserProject(t, s)

	d := newDashboardModel(s)
	d.users = []store.User{*u}
	d.projects = []store.Project{*p}

	d, _ = d.startTimer(0, 0)
	if !d.isRunning() {
		t.Fatal("timer should be running")
	}

	d, _ = d.stopTimer()
	if d.isRunning() {
		t.Fatal("timer should be stopped")
	}
}

// ============================================================
// Reports model
// ============================================================

func newTestReports(t *testing.T) (*store.Store, reportsModel) {
	t.Helper()
	s := newTestStore(t)
	engine := analytics.NewEngine(s.Analytics(), time.UTC)
	r := newReportsModel(engine, time.UTC)
	r.setSize(100, 40)
	return s, r
}

func TestReportsRefreshIncrementsGeneration(t *testing.T) {
	_, r := newTestReports(t)

	before := r.gen
	r.refresh()
	if r.gen != before+1 {
		t.Fatalf("gen = %d, want %d", r.gen, before+1)
	}
	if !r.loading {
		t.Fatal("refresh should mark the model loading")
	}
}

func TestReportsStaleDataDropped(t *testing.T) {
	_, r := newTestReports(t)

	cmd := r.refresh()
	stale := cmd().(reportsDataMsg)

	// A second refresh supersedes the first before its data lands.
	r.refresh()

	r, _ = r.update(stale)
	if !r.loading {
		t.Fatal("stale data should not clear the loading state")
	}
	if r.summary != nil {
		t.Fatal("stale summary should not be stored")
	}
}

func TestReportsLatestDataApplied(t *testing.T) {
	s, r := newTestReports(t)
	u, p := seedUserProject(t, s)

	start := time.Now().UTC().Add(-2 * time.Hour)
	end := start.Add(90 * time.Minute)
	if _, err := s.AddInterval(&u.ID, &p.ID, nil, start, end, ""); err != nil {
		t.Fatal(err)
	}

	r.rngIdx = 4 // year, so the interval is inside the window
	cmd := r.refresh()
	msg := cmd().(reportsDataMsg)
	if msg.err != nil {
		t.Fatalf("refresh failed: %v", msg.err)
	}

	r, _ = r.update(msg)
	if r.loading {
		t.Fatal("current data should clear loading")
	}
	if r.summary == nil {
		t.Fatal("summary should be stored")
	}
	if r.summary.TotalHours != 1.5 {
		t.Fatalf("total hours = %v, want 1.5", r.summary.TotalHours)
	}
}

func TestReportsKindCycles(t *testing.T) {
	_, r := newTestReports(t)

	if r.kind != reportSummary {
		t.Fatal("should start on summary")
	}
	r.kind = (r.kind + 1) % 4
	if r.kind != reportProjects {
		t.Fatal("next kind should be projects")
	}
	r.kind = (r.kind + 3) % 4
	if r.kind != reportSummary {
		t.Fatal("previous kind should wrap back to summary")
	}
}

func TestReportsWindowFollowsRange(t *testing.T) {
	_, r := newTestReports(t)

	r.rngIdx = 0 // day
	w := r.window()
	if err := w.Validate(); err != nil {
		t.Fatalf("window invalid: %v", err)
	}
	if w.End.Sub(w.Start) > 24*time.Hour {
		t.Fatal("day window should span at most a day")
	}

	r.rngIdx = 4 // year
	w = r.window()
	if w.Start.Month() != time.January || w.Start.Day() != 1 {
		t.Fatal("year window should start on Jan 1")
	}
}

// ============================================================
// Settings helpers
// ============================================================

func TestSecsToHours(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"28800", "8.0"},
		{"3600", "1.0"},
		{"0", "0.0"},
		{"invalid", "invalid"},
	}
	for _, tt := range tests {
		got := secsToHours(tt.in)
		if got != tt.want {
			t.Errorf("secsToHours(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHoursToSecs(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"8.0", "28800"},
		{"1.0", "3600"},
		{"0.0", "0"},
		{"invalid", "invalid"},
	}
	for _, tt := range tests {
		got := hoursToSecs(tt.in)
		if got != tt.want {
			t.Errorf("hoursToSecs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		key, val, want string
	}{
		{"daily_goal", "28800", "8.0 hours"},
		{"week_start", "monday", "monday"},
		{"timezone", "UTC", "UTC"},
		{"daily_goal", "bogus", "bogus"},
	}
	for _, tt := range tests {
		got := formatSettingValue(tt.key, tt.val)
		if got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.key, tt.val, got, tt.want)
		}
	}
}
