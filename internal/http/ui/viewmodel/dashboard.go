package viewmodel

import (
	"time"

	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	"github.com/target/control-panel-ui/internal/domain/model"
)

// Dashboard is the signed-in landing page.
type Dashboard struct {
	Layout
	Welcome   string
	Role      string
	Stats     []StatCard
	Decisions []BoardDecision
	Status    StatusWidget
	Activity  ActivityFeed
	// CanOverride gates rendering of the override panel. It is a display convenience only;
	// the override routes authorize independently.
	CanOverride bool
	Override    OverridePanel
}

// StatCard is one tile in the dashboard header row.
type StatCard struct {
	Label string
	Value string
	Tone  string
}

// BoardDecision is one entry in the board decisions list.
type BoardDecision struct {
	Outcome string
	Summary string
}

// Approved reports whether the decision passed.
func (d BoardDecision) Approved() bool { return d.Outcome == "Approved" }

// StatusWidget renders the live platform status or its unavailable state.
type StatusWidget struct {
	Available bool
	Status    string
	Version   string
	Uptime    time.Duration
	Halted    bool
	Services  []model.ServiceHealth
}

// ActivityFeed lists recent audited actions. Enabled is false when no audit store is configured.
type ActivityFeed struct {
	Enabled     bool
	Unavailable bool
	Entries     []ActivityItem
}

// ActivityItem is one row of the activity feed.
type ActivityItem struct {
	Label   string
	Actor   string
	Outcome string
	At      time.Time
}

// DefaultBoardDecisions is the static board decisions list.
func DefaultBoardDecisions() []BoardDecision {
	return []BoardDecision{
		{Outcome: "Approved", Summary: "Deploy new security protocol"},
		{Outcome: "Rejected", Summary: "Invest in experimental technology"},
	}
}

// NewStatCards builds the header tiles; the System Status tile follows the widget.
func NewStatCards(status StatusWidget) []StatCard {
	systemValue, tone := "UNKNOWN", "neutral"
	switch {
	case !status.Available:
	case status.Halted:
		systemValue, tone = "HALTED", "critical"
	default:
		systemValue, tone = "ACTIVE", "ok"
	}
	return []StatCard{
		{Label: "System Status", Value: systemValue, Tone: tone},
		{Label: "Board Members", Value: "11/11", Tone: "info"},
		{Label: "Active Users", Value: "3", Tone: "accent"},
		{Label: "Security Level", Value: "MAXIMUM", Tone: "warn"},
	}
}

// NewStatusWidget builds the widget from a status read. A nil status renders as unavailable.
func NewStatusWidget(status *model.SystemStatus) StatusWidget {
	if status == nil {
		return StatusWidget{}
	}
	return StatusWidget{
		Available: true,
		Status:    status.Status,
		Version:   status.Version,
		Uptime:    status.UptimeDuration(),
		Halted:    status.Halted(),
		Services:  status.SortedServices(),
	}
}

// NewActivityFeed builds the feed from audit entries.
func NewActivityFeed(enabled bool, entries []*model.AuditEntry, err error) ActivityFeed {
	feed := ActivityFeed{Enabled: enabled, Unavailable: err != nil}
	for _, e := range entries {
		if e == nil {
			continue
		}
		actor := e.ActorEmail
		if actor == "" {
			actor = e.ActorID
		}
		feed.Entries = append(feed.Entries, ActivityItem{
			Label:   e.Action.Label(),
			Actor:   actor,
			Outcome: e.Outcome,
			At:      e.CreatedAt,
		})
	}
	return feed
}

// NewDashboard assembles the dashboard for a session.
func NewDashboard(layout Layout, sess *domainauth.Session, status StatusWidget, activity ActivityFeed) Dashboard {
	d := Dashboard{
		Layout:    layout,
		Stats:     NewStatCards(status),
		Decisions: DefaultBoardDecisions(),
		Status:    status,
		Activity:  activity,
	}
	if sess != nil {
		d.Welcome = sess.Name
		if d.Welcome == "" {
			d.Welcome = sess.Email
		}
		d.Role = string(sess.Role)
		d.CanOverride = sess.IsAdmin()
	}
	if d.CanOverride {
		d.Override = NewOverridePanel(layout.CSRFToken)
	}
	return d
}
