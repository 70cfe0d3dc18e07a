package notification

import "time"

// Type is the kind of a Notification.
type Type string

const (
	TypeUpcoming          Type = "upcoming"
	TypeNext              Type = "next"
	TypeTomorrow          Type = "tomorrow"
	TypeNewTopic          Type = "new_topic"
	TypeScheduleEdit      Type = "schedule_edit"
	TypeDailySummary      Type = "daily_summary"
	TypeMultiChildSummary Type = "multi_child_summary"
)

// Types lists every notification type.
var Types = []Type{
	TypeUpcoming,
	TypeNext,
	TypeTomorrow,
	TypeNewTopic,
	TypeScheduleEdit,
	TypeDailySummary,
	TypeMultiChildSummary,
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityRanks = map[Priority]int{
	PriorityHigh:   3,
	PriorityMedium: 2,
	PriorityLow:    1,
}

// Rank orders priorities: high=3, medium=2, low=1 (0 if unknown).
func (p Priority) Rank() int { return priorityRanks[p] }

// Key identifies a Notification by what produced it.
type Key struct {
	Type     Type   `json:"type"`
	SourceID string `json:"source_id"`
}

type Notification struct {
	ID          Key       `json:"id"`
	Type        Type      `json:"type"`
	Priority    Priority  `json:"priority"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	EntityID    string    `json:"entity_id"`
	SubjectName string    `json:"subject_name,omitempty"`
	Location    string    `json:"location,omitempty"`
	HasContent  bool      `json:"has_content,omitempty"`
}

// identity is what two notifications of a feed are de-duplicated on.
type identity struct {
	Key
	EntityID string
}

func (n Notification) identity() identity { return identity{Key: n.ID, EntityID: n.EntityID} }

// Summary counts the notifications of a feed before it is capped.
type Summary struct {
	Total             int `json:"total"`
	Upcoming          int `json:"upcoming"`
	Next              int `json:"next"`
	Tomorrow          int `json:"tomorrow"`
	NewTopic          int `json:"new_topic"`
	ScheduleEdit      int `json:"schedule_edit"`
	DailySummary      int `json:"daily_summary"`
	MultiChildSummary int `json:"multi_child_summary"`
	High              int `json:"high"`
	Medium            int `json:"medium"`
	Low               int `json:"low"`
}

func (s *Summary) typeCounter(t Type) *int {
	switch t {
	case TypeUpcoming:
		return &s.Upcoming
	case TypeNext:
		return &s.Next
	case TypeTomorrow:
		return &s.Tomorrow
	case TypeNewTopic:
		return &s.NewTopic
	case TypeScheduleEdit:
		return &s.ScheduleEdit
	case TypeDailySummary:
		return &s.DailySummary
	case TypeMultiChildSummary:
		return &s.MultiChildSummary
	}
	return nil
}

func (s *Summary) priorityCounter(p Priority) *int {
	switch p {
	case PriorityHigh:
		return &s.High
	case PriorityMedium:
		return &s.Medium
	case PriorityLow:
		return &s.Low
	}
	return nil
}

func (s *Summary) add(n Notification) {
	s.Total++
	if c := s.typeCounter(n.Type); c != nil {
		*c++
	}
	if c := s.priorityCounter(n.Priority); c != nil {
		*c++
	}
}

func (s Summary) Count(t Type) int {
	if c := s.typeCounter(t); c != nil {
		return *c
	}
	return 0
}

func (s Summary) CountPriority(p Priority) int {
	if c := s.priorityCounter(p); c != nil {
		return *c
	}
	return 0
}

// Feed is what a student or parent is told right now.
type Feed struct {
	EntityID    string         `json:"entity_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Items       []Notification `json:"feed"`
	Summary     Summary        `json:"summary"`
}
