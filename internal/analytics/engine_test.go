package analytics

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"
)

func i64(v int64) *int64       { return &v }
func f64(v float64) *float64   { return &v }
func ts(day, hour, min int) time.Time {
	return time.Date(2025, 1, day, hour, min, 0, 0, time.UTC)
}

type fakeSource struct {
	intervals []Interval
	tasks     []Task
	projects  []Project
	users     []User
}

func (f *fakeSource) Intervals(_ context.Context, _ Window, _ Filters) ([]Interval, error) {
	return f.intervals, nil
}
func (f *fakeSource) Tasks(_ context.Context, _ *int64) ([]Task, error)  { return f.tasks, nil }
func (f *fakeSource) Projects(_ context.Context) ([]Project, error)      { return f.projects, nil }
func (f *fakeSource) Users(_ context.Context) ([]User, error)            { return f.users, nil }

// testFixture is the shared scenario: two users, two projects, four tasks,
// six intervals spread over three days in January 2025.
func testFixture() *fakeSource {
	return &fakeSource{
		users: []User{
			{ID: 1, Name: "Alice", Role: "developer"},
			{ID: 2, Name: "Bob", Role: "developer"},
		},
		projects: []Project{
			{ID: 1, Name: "Apollo"},
			{ID: 2, Name: "Borealis"},
		},
		tasks: []Task{
			{ID: 1, ProjectID: 1, Name: "Design schema", Status: StatusCompleted, EstimateHours: f64(2)},
			{ID: 2, ProjectID: 1, Name: "Build API", Status: StatusCompleted, EstimateHours: f64(3)},
			{ID: 3, ProjectID: 1, Name: "Write docs", Status: StatusInProgress, EstimateHours: f64(5)},
			{ID: 4, ProjectID: 2, Name: "Spike", Status: StatusCompleted},
		},
		intervals: []Interval{
			{ID: 1, UserID: i64(1), ProjectID: i64(1), TaskID: i64(1), Start: ts(6, 9, 0), End: ts(6, 11, 30)},
			{ID: 2, UserID: i64(1), ProjectID: i64(1), TaskID: i64(1), Start: ts(7, 9, 0), End: ts(7, 10, 0)},
			{ID: 3, UserID: i64(1), ProjectID: i64(1), TaskID: i64(2), Start: ts(7, 14, 0), End: ts(7, 16, 0)},
			{ID: 4, UserID: i64(2), ProjectID: i64(1), TaskID: i64(3), Start: ts(6, 10, 0), End: ts(6, 14, 0)},
			{ID: 5, UserID: i64(2), ProjectID: i64(2), TaskID: i64(4), Start: ts(8, 9, 0), End: ts(8, 10, 30)},
			{ID: 6, UserID: i64(1), ProjectID: i64(2), Start: ts(8, 20, 0), End: ts(8, 21, 0)},
		},
	}
}

func testWindow() Window {
	return Window{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestEngine(src Source) *Engine {
	return NewEngine(src, time.UTC)
}

// ============================================================
// Summary report
// ============================================================

func TestSummaryReport(t *testing.T) {
	eng := newTestEngine(testFixture())
	rep, err := eng.Summary(context.Background(), testWindow(), Filters{})
	if err != nil {
		t.Fatal(err)
	}

	if rep.TotalHours != 12 {
		t.Fatalf("expected 12 total hours, got %v", rep.TotalHours)
	}
	if rep.AvgHoursPerDay != 4 {
		t.Fatalf("expected 4 avg hours/day, got %v", rep.AvgHoursPerDay)
	}
	if rep.PeakDay != "2025-01-06" || rep.PeakDayHours != 6.5 {
		t.Fatalf("expected peak day 2025-01-06 at 6.5h, got %s at %v", rep.PeakDay, rep.PeakDayHours)
	}

	if len(rep.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(rep.Days))
	}
	// Ascending by date.
	if rep.Days[0].Date != "2025-01-06" || rep.Days[2].Date != "2025-01-08" {
		t.Fatalf("days not sorted ascending: %s .. %s", rep.Days[0].Date, rep.Days[2].Date)
	}
	d6 := rep.Days[0]
	if d6.Hours != 6.5 || d6.Users != 2 || d6.Projects != 1 || d6.Tasks != 2 {
		t.Fatalf("unexpected Jan 6 summary: %+v", d6)
	}

	// Projects descending by hours.
	if len(rep.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(rep.Projects))
	}
	if rep.Projects[0].Name != "Apollo" || rep.Projects[0].Hours != 9.5 {
		t.Fatalf("expected Apollo with 9.5h first, got %+v", rep.Projects[0])
	}
	if rep.Projects[0].Tasks != 3 || rep.Projects[0].CompletedTasks != 2 {
		t.Fatalf("unexpected Apollo task counts: %+v", rep.Projects[0])
	}
	if rep.Projects[0].Completion != 66.67 {
		t.Fatalf("expected Apollo completion 66.67, got %v", rep.Projects[0].Completion)
	}
}

// A task logged in several intervals contributes once to every completion
// counter that sees it.
func TestCompletionDedup(t *testing.T) {
	src := testFixture()
	// Task 1 already has two intervals; add three more, all completed.
	for i := range 3 {
		src.intervals = append(src.intervals, Interval{
			ID: int64(10 + i), UserID: i64(1), ProjectID: i64(1), TaskID: i64(1),
			Start: ts(9+i, 9, 0), End: ts(9+i, 10, 0),
		})
	}
	eng := newTestEngine(src)

	rep, err := eng.Projects(context.Background(), testWindow(), Filters{}, SortHours)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Rows[0].Name != "Apollo" || rep.Rows[0].CompletedTasks != 2 {
		t.Fatalf("expected Apollo to keep 2 completed tasks, got %+v", rep.Rows[0])
	}

	users, err := eng.Users(context.Background(), testWindow(), Filters{}, SortHours)
	if err != nil {
		t.Fatal(err)
	}
	if users.Rows[0].Name != "Alice" || users.Rows[0].CompletedTasks != 2 {
		t.Fatalf("expected Alice to keep 2 completed tasks, got %+v", users.Rows[0])
	}
}

// ============================================================
// Project report
// ============================================================

func TestProjectReport(t *testing.T) {
	eng := newTestEngine(testFixture())
	rep, err := eng.Projects(context.Background(), testWindow(), Filters{}, SortHours)
	if err != nil {
		t.Fatal(err)
	}

	apollo := rep.Rows[0]
	if apollo.Name != "Apollo" {
		t.Fatalf("expected Apollo first by hours, got %s", apollo.Name)
	}
	if apollo.Hours != 9.5 || apollo.EstimatedHours != 10 {
		t.Fatalf("unexpected Apollo hours: %+v", apollo)
	}
	if apollo.Efficiency != 95 {
		t.Fatalf("expected Apollo efficiency 95, got %v", apollo.Efficiency)
	}
	if apollo.Users != 2 {
		t.Fatalf("expected 2 users on Apollo, got %d", apollo.Users)
	}

	borealis := rep.Rows[1]
	if borealis.EstimatedHours != 0 || borealis.Efficiency != 0 {
		t.Fatalf("expected zero-safe efficiency without estimates, got %+v", borealis)
	}
	if borealis.Completion != 100 {
		t.Fatalf("expected Borealis completion 100, got %v", borealis.Completion)
	}
}

func TestProjectReportSortKeys(t *testing.T) {
	eng := newTestEngine(testFixture())
	ctx := context.Background()
	w := testWindow()

	byName, err := eng.Projects(ctx, w, Filters{}, SortName)
	if err != nil {
		t.Fatal(err)
	}
	if byName.Rows[0].Name != "Apollo" || byName.Rows[1].Name != "Borealis" {
		t.Fatalf("name sort should be ascending: %s, %s", byName.Rows[0].Name, byName.Rows[1].Name)
	}

	byCompletion, err := eng.Projects(ctx, w, Filters{}, SortCompletion)
	if err != nil {
		t.Fatal(err)
	}
	if byCompletion.Rows[0].Name != "Borealis" {
		t.Fatalf("completion sort should put Borealis (100%%) first, got %s", byCompletion.Rows[0].Name)
	}
}

func TestProjectOverdueFlag(t *testing.T) {
	src := testFixture()
	past := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	future := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	src.projects[0].Deadline = &past
	src.projects[1].Deadline = &future
	eng := newTestEngine(src)

	rep, err := eng.Projects(context.Background(), testWindow(), Filters{}, SortName)
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Rows[0].Overdue {
		t.Fatal("Apollo deadline is before window end, should be overdue")
	}
	if rep.Rows[1].Overdue {
		t.Fatal("Borealis deadline is in the future, should not be overdue")
	}
}

func TestProjectDetail(t *testing.T) {
	eng := newTestEngine(testFixture())
	detail, err := eng.ProjectDetail(context.Background(), testWindow(), 1)
	if err != nil {
		t.Fatal(err)
	}

	if len(detail.UserBreakdown) != 2 {
		t.Fatalf("expected 2 users in breakdown, got %d", len(detail.UserBreakdown))
	}
	alice := detail.UserBreakdown[0]
	if alice.Name != "Alice" || alice.Hours != 5.5 {
		t.Fatalf("expected Alice first with 5.5h, got %+v", alice)
	}
	if alice.Tasks != 2 || alice.CompletedTasks != 2 || alice.Efficiency != 110 {
		t.Fatalf("unexpected Alice breakdown: %+v", alice)
	}
	bob := detail.UserBreakdown[1]
	if bob.Hours != 4 || bob.CompletedTasks != 0 || bob.Efficiency != 80 {
		t.Fatalf("unexpected Bob breakdown: %+v", bob)
	}
}

func TestProjectDetailNotFound(t *testing.T) {
	eng := newTestEngine(testFixture())
	_, err := eng.ProjectDetail(context.Background(), testWindow(), 99)
	if err == nil {
		t.Fatal("expected error for unknown project")
	}
}

// ============================================================
// User report
// ============================================================

func TestUserReport(t *testing.T) {
	eng := newTestEngine(testFixture())
	rep, err := eng.Users(context.Background(), testWindow(), Filters{}, SortHours)
	if err != nil {
		t.Fatal(err)
	}

	if len(rep.Rows) != 2 {
		t.Fatalf("expected 2 users, got %d", len(rep.Rows))
	}
	alice := rep.Rows[0]
	if alice.Name != "Alice" || alice.Hours != 6.5 {
		t.Fatalf("expected Alice first with 6.5h, got %+v", alice)
	}
	if alice.Projects != 2 || alice.Tasks != 2 || alice.CompletedTasks != 2 {
		t.Fatalf("unexpected Alice counts: %+v", alice)
	}
	if alice.Efficiency != 130 {
		t.Fatalf("expected Alice efficiency 130, got %v", alice.Efficiency)
	}
	if alice.Productivity != 0.31 {
		t.Fatalf("expected Alice productivity 0.31, got %v", alice.Productivity)
	}
	if alice.Consistency != 60.78 {
		t.Fatalf("expected Alice consistency 60.78, got %v", alice.Consistency)
	}

	bob := rep.Rows[1]
	if bob.Efficiency != 110 || bob.Consistency != 54.55 {
		t.Fatalf("unexpected Bob metrics: %+v", bob)
	}
}

func TestUserWorkPattern(t *testing.T) {
	eng := newTestEngine(testFixture())
	rep, err := eng.Users(context.Background(), testWindow(), Filters{}, SortHours)
	if err != nil {
		t.Fatal(err)
	}

	p := rep.Rows[0].Pattern // Alice
	if p.PeakHour != 9 {
		t.Fatalf("expected peak hour 9, got %d", p.PeakHour)
	}
	if p.PeakDay != "2025-01-07" {
		t.Fatalf("expected peak day 2025-01-07, got %s", p.PeakDay)
	}
	if p.Sessions != 4 {
		t.Fatalf("expected 4 sessions, got %d", p.Sessions)
	}
	if p.AvgSessionHours != 1.63 {
		t.Fatalf("expected avg session 1.63h, got %v", p.AvgSessionHours)
	}
}

func TestUserDetail(t *testing.T) {
	eng := newTestEngine(testFixture())
	detail, err := eng.UserDetail(context.Background(), testWindow(), 1)
	if err != nil {
		t.Fatal(err)
	}

	if len(detail.ProjectBreakdown) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(detail.ProjectBreakdown))
	}
	first := detail.ProjectBreakdown[0]
	if first.Name != "Apollo" || first.Hours != 5.5 {
		t.Fatalf("expected Apollo first with 5.5h, got %+v", first)
	}
	if first.Tasks != 2 || first.CompletedTasks != 2 {
		t.Fatalf("unexpected Apollo breakdown: %+v", first)
	}
	second := detail.ProjectBreakdown[1]
	if second.Name != "Borealis" || second.Hours != 1 || second.Tasks != 0 {
		t.Fatalf("unexpected Borealis breakdown: %+v", second)
	}
}

// ============================================================
// Work-pattern report
// ============================================================

func TestPatternReport(t *testing.T) {
	eng := newTestEngine(testFixture())
	rep, err := eng.Patterns(context.Background(), testWindow(), Filters{})
	if err != nil {
		t.Fatal(err)
	}

	if len(rep.Hourly) != 24 {
		t.Fatalf("expected 24 hour buckets, got %d", len(rep.Hourly))
	}
	h9 := rep.Hourly[9]
	if h9.Hours != 5 || h9.Users != 2 {
		t.Fatalf("unexpected hour 9 bucket: %+v", h9)
	}
	// Estimates sum per log: task 1 twice (2+2), task 4 has none.
	if h9.Efficiency != 125 {
		t.Fatalf("expected hour 9 efficiency 125, got %v", h9.Efficiency)
	}
	if rep.Hourly[3].Hours != 0 || rep.Hourly[3].Efficiency != 0 {
		t.Fatalf("idle hour should be zero-valued: %+v", rep.Hourly[3])
	}

	if rep.PeakHour != 9 {
		t.Fatalf("expected team peak hour 9, got %d", rep.PeakHour)
	}
	if rep.PeakDay != "2025-01-06" {
		t.Fatalf("expected team peak day 2025-01-06, got %s", rep.PeakDay)
	}
	if rep.TopUser != "Alice" || rep.TopProject != "Apollo" {
		t.Fatalf("unexpected top user/project: %s / %s", rep.TopUser, rep.TopProject)
	}
	if rep.TeamEfficiency != 67.92 {
		t.Fatalf("expected team efficiency 67.92, got %v", rep.TeamEfficiency)
	}
	if rep.TeamConsistency != 55.51 {
		t.Fatalf("expected team consistency 55.51, got %v", rep.TeamConsistency)
	}

	if len(rep.Daily) != 3 {
		t.Fatalf("expected 3 daily entries, got %d", len(rep.Daily))
	}
	if rep.Daily[0].Weekday != "Monday" {
		t.Fatalf("Jan 6 2025 is a Monday, got %s", rep.Daily[0].Weekday)
	}
}

func TestPatternInsights(t *testing.T) {
	eng := newTestEngine(testFixture())
	rep, err := eng.Patterns(context.Background(), testWindow(), Filters{})
	if err != nil {
		t.Fatal(err)
	}

	if len(rep.Insights) != 4 {
		t.Fatalf("expected 4 insights, got %d", len(rep.Insights))
	}
	tones := map[string]Tone{}
	for _, ins := range rep.Insights {
		tones[ins.Kind] = ins.Tone
	}
	if tones["peak_hour"] != ToneNeutral || tones["peak_day"] != ToneNeutral {
		t.Fatalf("peak insights should be neutral: %v", tones)
	}
	// Team efficiency 67.92 sits in the neutral band, consistency 55.51
	// below it.
	if tones["efficiency"] != ToneNeutral {
		t.Fatalf("expected neutral efficiency insight, got %s", tones["efficiency"])
	}
	if tones["consistency"] != ToneNegative {
		t.Fatalf("expected negative consistency insight, got %s", tones["consistency"])
	}
}

// ============================================================
// Attribution and windowing properties
// ============================================================

// A 2.5 hour session starting at 09:00 lands wholly in hour bucket 9.
func TestIntervalAttributedToStartHour(t *testing.T) {
	src := &fakeSource{
		users: []User{{ID: 1, Name: "Alice"}},
		intervals: []Interval{
			{ID: 1, UserID: i64(1), Start: ts(1, 9, 0), End: ts(1, 11, 30)},
		},
	}
	eng := newTestEngine(src)
	rep, err := eng.Patterns(context.Background(), testWindow(), Filters{})
	if err != nil {
		t.Fatal(err)
	}

	if rep.Hourly[9].Hours != 2.5 {
		t.Fatalf("expected 2.5h in bucket 9, got %v", rep.Hourly[9].Hours)
	}
	for _, h := range []int{10, 11} {
		if rep.Hourly[h].Hours != 0 {
			t.Fatalf("hour %d should be empty, interval is not split", h)
		}
	}
}

// An interval straddling the window start is dropped entirely.
func TestStraddlingIntervalExcluded(t *testing.T) {
	w := testWindow()
	src := testFixture()
	src.intervals = append(src.intervals, Interval{
		ID: 50, UserID: i64(1), ProjectID: i64(1),
		Start: w.Start.Add(-time.Hour), End: w.Start.Add(time.Hour),
	})
	eng := newTestEngine(src)

	rep, err := eng.Summary(context.Background(), w, Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.TotalHours != 12 {
		t.Fatalf("straddling interval leaked into aggregates: %v", rep.TotalHours)
	}
}

func TestEmptyWindow(t *testing.T) {
	eng := newTestEngine(&fakeSource{})
	ctx := context.Background()
	w := testWindow()

	sum, err := eng.Summary(ctx, w, Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalHours != 0 || sum.AvgHoursPerDay != 0 || len(sum.Days) != 0 || len(sum.Projects) != 0 {
		t.Fatalf("expected empty summary, got %+v", sum)
	}

	users, err := eng.Users(ctx, w, Filters{}, SortHours)
	if err != nil {
		t.Fatal(err)
	}
	if len(users.Rows) != 0 {
		t.Fatalf("expected no user rows, got %d", len(users.Rows))
	}

	pat, err := eng.Patterns(ctx, w, Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if pat.TotalHours != 0 || len(pat.Insights) != 0 {
		t.Fatalf("expected empty pattern report, got %+v", pat)
	}
	for _, h := range pat.Hourly {
		if math.IsNaN(h.Efficiency) || math.IsInf(h.Efficiency, 0) {
			t.Fatalf("non-finite efficiency in empty report: %+v", h)
		}
	}
}

// The same interval set in any order produces byte-identical reports.
func TestReportsDeterministic(t *testing.T) {
	ctx := context.Background()
	w := testWindow()

	forward := testFixture()
	reversed := testFixture()
	for i, j := 0, len(reversed.intervals)-1; i < j; i, j = i+1, j-1 {
		reversed.intervals[i], reversed.intervals[j] = reversed.intervals[j], reversed.intervals[i]
	}

	for _, key := range []SortKey{SortHours, SortName, SortEfficiency} {
		a := marshalAllReports(t, newTestEngine(forward), ctx, w, key)
		b := marshalAllReports(t, newTestEngine(reversed), ctx, w, key)
		if a != b {
			t.Fatalf("reports differ for input order with sort %s:\n%s\n----\n%s", key, a, b)
		}
	}
}

func marshalAllReports(t *testing.T, eng *Engine, ctx context.Context, w Window, key SortKey) string {
	t.Helper()
	sum, err := eng.Summary(ctx, w, Filters{})
	if err != nil {
		t.Fatal(err)
	}
	proj, err := eng.Projects(ctx, w, Filters{}, key)
	if err != nil {
		t.Fatal(err)
	}
	users, err := eng.Users(ctx, w, Filters{}, key)
	if err != nil {
		t.Fatal(err)
	}
	pat, err := eng.Patterns(ctx, w, Filters{})
	if err != nil {
		t.Fatal(err)
	}

	var out []byte
	for _, v := range []any{sum, proj, users, pat} {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, b...)
		out = append(out, '\n')
	}
	return string(out)
}
