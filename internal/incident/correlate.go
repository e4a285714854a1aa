package incident

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

// incidentLabel marks an issue as an incident at all; issues without
// it are never considered, whatever else they carry.
const incidentLabel = "incident"

const (
	labelDown        = "incident-down"
	labelDegraded    = "incident-degraded"
	labelIdentified  = "identified"
	labelResolved    = "resolved"
	labelMaintenance = "maintenance"
)

var (
	startMarkerPattern = regexp.MustCompile(`\[start_datetime:(\d+)\]`)
	endMarkerPattern   = regexp.MustCompile(`\[end_datetime:(\d+)\]`)
)

// Reporter receives non-fatal correlation problems.
type Reporter interface {
	ReportInternalError(scope, message string)
}

// Correlator fetches a monitor's incidents from the issue store and
// reshapes them for the page. It holds no cache; every call hits the
// tracker.
type Correlator struct {
	Issues   IssueStore
	Markdown MarkdownRenderer
	Reporter Reporter

	// Now is replaceable for tests. Nil means time.Now.
	Now func() time.Time
}

func (c *Correlator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Correlator) report(scope, message string) {
	if c.Reporter != nil {
		c.Reporter.ReportInternalError(scope, message)
	}
}

// IncidentsForMonitor lists the monitor's recent incidents, split into
// still-open and resolved.
//
// A tracker failure is degraded, not fatal: the error is reported and
// an empty set returned, so the page still renders.
func (c *Correlator) IncidentsForMonitor(ctx context.Context, tag string, sinceHours int) (api.IncidentSet, error) {
	now := c.now()
	since := now.Add(-time.Duration(sinceHours) * time.Hour)

	issues, err := c.Issues.ListIssues(ctx, IssueQuery{
		Labels: []string{tag, incidentLabel},
		State:  "all",
		Since:  since,
	})
	if err != nil {
		c.report("incident:list", err.Error())
		return api.IncidentSet{Active: []api.Incident{}, Past: []api.Incident{}}, err
	}

	set := api.IncidentSet{Active: []api.Incident{}, Past: []api.Incident{}}
	for _, issue := range issues {
		inc := c.build(ctx, issue, now)
		if issue.State == "open" {
			set.Active = append(set.Active, inc)
		} else {
			set.Past = append(set.Past, inc)
		}
	}

	byStartDesc := func(xs []api.Incident) {
		sort.Slice(xs, func(i, j int) bool {
			return xs[i].IncidentStartTime > xs[j].IncidentStartTime
		})
	}
	byStartDesc(set.Active)
	byStartDesc(set.Past)

	return set, nil
}

func (c *Correlator) build(ctx context.Context, issue Issue, now time.Time) api.Incident {
	inc := api.Incident{
		Number:   issue.Number,
		Title:    issue.Title,
		Labels:   issue.Labels,
		State:    issue.State,
		Body:     stripMarkers(c.Markdown.Render(issue.Body)),
		Comments: []api.IncidentComment{},
	}

	// Markers in the raw body override the issue's own timestamps.
	inc.IncidentStartTime = issue.CreatedAt.Unix()
	if ts, ok := marker(startMarkerPattern, issue.Body); ok {
		inc.IncidentStartTime = ts
	}
	if ts, ok := marker(endMarkerPattern, issue.Body); ok {
		inc.IncidentEndTime = &ts
	} else if issue.ClosedAt != nil {
		closed := issue.ClosedAt.Unix()
		inc.IncidentEndTime = &closed
	}

	for _, label := range issue.Labels {
		switch label {
		case labelDown:
			inc.Priority = api.StatusDown
		case labelDegraded:
			if inc.Priority != api.StatusDown {
				inc.Priority = api.StatusDegraded
			}
		case labelIdentified:
			inc.Identified = true
		case labelResolved:
			inc.Resolved = true
		case labelMaintenance:
			inc.Maintenance = true
		}
	}

	inc.DurationMessage = durationMessage(inc, now)

	comments, err := c.Issues.ListComments(ctx, issue.Number)
	if err != nil {
		c.report("incident:comments", err.Error())
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	for _, comment := range comments {
		inc.Comments = append(inc.Comments, api.IncidentComment{
			Body:         stripMarkers(c.Markdown.Render(comment.Body)),
			CreatedAt:    comment.CreatedAt.Unix(),
			RelativeTime: humanize.Time(comment.CreatedAt),
		})
	}

	return inc
}

func marker(pattern *regexp.Regexp, body string) (int64, bool) {
	m := pattern.FindStringSubmatch(body)
	if m == nil {
		return 0, false
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

func stripMarkers(s string) string {
	s = startMarkerPattern.ReplaceAllString(s, "")
	return endMarkerPattern.ReplaceAllString(s, "")
}

// durationMessage phrases how long the incident lasted, or has lasted
// so far. An unknown or non-positive duration yields no message.
func durationMessage(inc api.Incident, now time.Time) string {
	word := "DOWN"
	if inc.Priority == api.StatusDegraded {
		word = "DEGRADED"
	}

	if inc.IncidentEndTime != nil {
		minutes := (*inc.IncidentEndTime - inc.IncidentStartTime) / 60
		if minutes > 0 {
			return fmt.Sprintf("Was %s for %d minutes", word, minutes)
		}
		return ""
	}

	minutes := (now.Unix() - inc.IncidentStartTime) / 60
	if minutes > 0 {
		return fmt.Sprintf("Has been %s for %d minutes", word, minutes)
	}
	return ""
}
