package analytics

import (
	"fmt"
	"time"
)

type HourPattern struct {
	Hour            int     `json:"hour"`
	Hours           float64 `json:"hours"`
	Users           int     `json:"users"`
	AvgHoursPerUser float64 `json:"avg_hours_per_user"`
	Efficiency      float64 `json:"efficiency"`
}

type DayPattern struct {
	Date     string  `json:"date"`
	Weekday  string  `json:"weekday"`
	Hours    float64 `json:"hours"`
	Users    int     `json:"users"`
	Projects int     `json:"projects"`
}

// Insight is one qualitative observation over the window, toned for
// display: positive, neutral or negative.
type Insight struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Tone    Tone   `json:"tone"`
}

type PatternReport struct {
	Window          Window        `json:"window"`
	TotalHours      float64       `json:"total_hours"`
	AvgHoursPerDay  float64       `json:"avg_hours_per_day"`
	PeakHour        int           `json:"peak_hour"`
	PeakDay         string        `json:"peak_day,omitempty"`
	TopUser         string        `json:"top_user,omitempty"`
	TopProject      string        `json:"top_project,omitempty"`
	TeamEfficiency  float64       `json:"team_efficiency"`
	TeamConsistency float64       `json:"team_consistency"`
	Hourly          []HourPattern `json:"hourly"`
	Daily           []DayPattern  `json:"daily"`
	Insights        []Insight     `json:"insights"`
}

// buildPattern assembles the team-wide work-pattern view: all 24 hour
// buckets (including empty ones, so charts line up), the per-date series,
// and the whole-team scalars. Team efficiency averages the hourly
// efficiencies of hours that saw any work; team consistency applies the
// same stddev formula used per user to the team's daily series.
func buildPattern(agg *aggregate, snap *Snapshot, w Window) *PatternReport {
	rep := &PatternReport{
		Window:   w,
		Hourly:   make([]HourPattern, 24),
		Daily:    []DayPattern{},
		Insights: []Insight{},
	}

	var peakHourVal float64
	var effSum float64
	var effCount int
	for h := range 24 {
		hb := agg.hours[h]
		hp := HourPattern{
			Hour:  h,
			Hours: Round2(hb.hours),
			Users: len(hb.users),
		}
		if len(hb.users) > 0 {
			hp.AvgHoursPerUser = Round2(hb.hours / float64(len(hb.users)))
		}
		eff := Efficiency(hb.hours, hb.estimateHours)
		hp.Efficiency = Round2(eff)
		if hb.hours > 0 {
			effSum += eff
			effCount++
		}
		rep.Hourly[h] = hp

		if hb.hours > peakHourVal {
			peakHourVal = hb.hours
			rep.PeakHour = h
		}
	}

	dates := agg.sortedDates()
	teamDaily := make([]float64, 0, len(dates))
	var peakDayVal float64
	for _, date := range dates {
		db := agg.days[date]
		t, _ := time.Parse("2006-01-02", date)
		rep.Daily = append(rep.Daily, DayPattern{
			Date:     date,
			Weekday:  t.Weekday().String(),
			Hours:    Round2(db.hours),
			Users:    len(db.users),
			Projects: len(db.projects),
		})
		teamDaily = append(teamDaily, db.hours)
		if db.hours > peakDayVal {
			peakDayVal = db.hours
			rep.PeakDay = date
		}
	}

	rep.TotalHours = Round2(agg.totalHours)
	if len(dates) > 0 {
		rep.AvgHoursPerDay = Round2(agg.totalHours / float64(len(dates)))
	}
	if effCount > 0 {
		rep.TeamEfficiency = Round2(effSum / float64(effCount))
	}
	rep.TeamConsistency = Round2(Consistency(teamDaily))

	rep.TopUser = topByHours(sortedUserIDs(agg), func(id int64) float64 { return agg.users[id].hours }, snap.userName)
	rep.TopProject = topByHours(sortedProjectIDs(agg), func(id int64) float64 { return agg.projects[id].hours }, snap.projectName)

	rep.Insights = patternInsights(rep)
	return rep
}

// topByHours walks ids in ascending order and keeps the first strict
// maximum, so ties resolve to the lowest id.
func topByHours(ids []int64, hours func(int64) float64, name func(int64) string) string {
	var best float64
	var top string
	for _, id := range ids {
		if h := hours(id); h > best {
			best = h
			top = name(id)
		}
	}
	return top
}

func patternInsights(rep *PatternReport) []Insight {
	if rep.TotalHours == 0 {
		return []Insight{}
	}
	insights := []Insight{
		{
			Kind:    "peak_hour",
			Message: fmt.Sprintf("Most work happens around %02d:00", rep.PeakHour),
			Tone:    ToneNeutral,
		},
	}
	if rep.PeakDay != "" {
		insights = append(insights, Insight{
			Kind:    "peak_day",
			Message: fmt.Sprintf("The busiest day was %s", rep.PeakDay),
			Tone:    ToneNeutral,
		})
	}
	insights = append(insights,
		Insight{
			Kind: "efficiency",
			Message: fmt.Sprintf("Team efficiency is %.0f%% (%s)",
				rep.TeamEfficiency, EfficiencyBand(rep.TeamEfficiency)),
			Tone: scoreTone(rep.TeamEfficiency),
		},
		Insight{
			Kind:    "consistency",
			Message: fmt.Sprintf("Daily workload consistency scores %.0f out of 100", rep.TeamConsistency),
			Tone:    scoreTone(rep.TeamConsistency),
		},
	)
	return insights
}
