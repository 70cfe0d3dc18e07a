package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/trezcool/masomo-notify/core"
	"github.com/trezcool/masomo-notify/core/schedule"
)

const (
	maxNameLen  = 60
	maxTitleLen = 80

	dayFormat  = "Mon 2 Jan"
	timeFormat = "15:04"
)

// ChildCount is the number of lessons a child has today.
type ChildCount struct {
	Name    string
	Lessons int
}

// Builder maps records to notifications, rendering times in its location.
type Builder struct {
	loc *time.Location
}

func NewBuilder(loc *time.Location) Builder {
	if loc == nil {
		loc = time.UTC
	}
	return Builder{loc: loc}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// formatDelta renders d rounded down to the minute, e.g. "1 hour 15 minutes".
func formatDelta(d time.Duration) string {
	mins := int(d / time.Minute)
	h, m := mins/60, mins%60
	switch {
	case h == 0:
		return plural(m, "minute", "minutes")
	case m == 0:
		return plural(h, "hour", "hours")
	default:
		return plural(h, "hour", "hours") + " " + plural(m, "minute", "minutes")
	}
}

func subjectOf(o schedule.LessonOccurrence) string {
	if s := core.Clip(o.SubjectName, maxNameLen); s != "" {
		return s
	}
	return "Class"
}

// lessonLabel renders "Math with Mr. X".
func lessonLabel(subject, teacher string) string {
	if t := core.Clip(teacher, maxNameLen); t != "" {
		return subject + " with " + t
	}
	return subject
}

func withLocation(msg, location string) string {
	if l := core.Clip(location, maxNameLen); l != "" {
		return msg + " (" + l + ")"
	}
	return msg
}

func (b Builder) lesson(typ Type, prio Priority, entityID string, o schedule.LessonOccurrence) Notification {
	return Notification{
		ID:          Key{Type: typ, SourceID: o.ID},
		Type:        typ,
		Priority:    prio,
		Timestamp:   o.StartAt.In(b.loc),
		EntityID:    entityID,
		SubjectName: core.Clip(o.SubjectName, maxNameLen),
		Location:    core.Clip(o.Location, maxNameLen),
		HasContent:  o.HasContent(),
	}
}

// Upcoming reports a lesson starting within the next minutes.
func (b Builder) Upcoming(entityID string, o schedule.LessonOccurrence, now time.Time) Notification {
	n := b.lesson(TypeUpcoming, PriorityHigh, entityID, o)
	subject := subjectOf(o)

	starts := "starts now"
	if d := o.StartAt.Sub(now); d >= time.Minute {
		starts = "starts in " + formatDelta(d)
	}
	n.Title = subject + " starts soon"
	n.Message = withLocation(lessonLabel(subject, o.TeacherName)+" "+starts, o.Location) + "."
	return n
}

// Next reports a lesson starting in the next couple of hours.
func (b Builder) Next(entityID string, o schedule.LessonOccurrence, now time.Time) Notification {
	n := b.lesson(TypeNext, PriorityMedium, entityID, o)
	subject := subjectOf(o)

	n.Title = "Next: " + subject
	n.Message = withLocation(fmt.Sprintf("%s starts in %s at %s",
		lessonLabel(subject, o.TeacherName), formatDelta(o.StartAt.Sub(now)), o.StartAt.In(b.loc).Format(timeFormat),
	), o.Location) + "."
	return n
}

// Tomorrow reports a lesson of tomorrow.
func (b Builder) Tomorrow(entityID string, o schedule.LessonOccurrence) Notification {
	n := b.lesson(TypeTomorrow, PriorityLow, entityID, o)
	subject := subjectOf(o)

	n.Title = "Tomorrow: " + subject
	n.Message = withLocation(fmt.Sprintf("%s tomorrow at %s",
		lessonLabel(subject, o.TeacherName), o.StartAt.In(b.loc).Format(timeFormat),
	), o.Location) + "."
	return n
}

func ended(o schedule.LessonOccurrence, now time.Time) bool {
	end := o.EndAt
	if end.IsZero() {
		end = o.StartAt
	}
	return !end.After(now)
}

// DailySummary counts today's lessons once at least one of them is over.
// ok is false when none is.
func (b Builder) DailySummary(entityID string, today []schedule.LessonOccurrence, now time.Time) (n Notification, ok bool) {
	var done int
	var latest time.Time
	for _, o := range today {
		if ended(o, now) {
			done++
			if o.StartAt.After(latest) {
				latest = o.StartAt
			}
		}
	}
	if done == 0 {
		return Notification{}, false
	}

	remaining := len(today) - done
	prio := PriorityLow
	msg := fmt.Sprintf("All %s done for today.", plural(len(today), "class", "classes"))
	if remaining > 0 {
		prio = PriorityMedium
		msg = fmt.Sprintf("%d of %s done today, %d remaining.", done, plural(len(today), "class", "classes"), remaining)
	}

	return Notification{
		ID:        Key{Type: TypeDailySummary, SourceID: now.In(b.loc).Format("2006-01-02")},
		Type:      TypeDailySummary,
		Priority:  prio,
		Title:     "Today's classes",
		Message:   msg,
		Timestamp: latest.In(b.loc),
		EntityID:  entityID,
	}, true
}

// NewTopic reports a topic recently added to (or updated in) a lesson.
func (b Builder) NewTopic(entityID string, c schedule.ContentChange) Notification {
	subject := subjectOf(c.Occurrence)
	if s := core.Clip(c.SubjectName, maxNameLen); s != "" {
		subject = s
	}
	title := core.Clip(c.Title, maxTitleLen)
	teacher := core.Clip(c.TeacherName, maxNameLen)
	if teacher == "" {
		teacher = core.Clip(c.Occurrence.TeacherName, maxNameLen)
	}

	verb := "added"
	if c.UpdatedAt.After(c.CreatedAt) {
		verb = "updated"
	}
	var msg strings.Builder
	if teacher != "" {
		msg.WriteString(teacher + " " + verb)
	} else {
		msg.WriteString(strings.ToUpper(verb[:1]) + verb[1:])
	}
	fmt.Fprintf(&msg, " the topic %q in %s", title, subject)
	if !c.Occurrence.StartAt.IsZero() {
		msg.WriteString(" for " + c.Occurrence.StartAt.In(b.loc).Format(dayFormat))
	}
	msg.WriteString(".")

	return Notification{
		ID:          Key{Type: TypeNewTopic, SourceID: c.ID},
		Type:        TypeNewTopic,
		Priority:    PriorityMedium,
		Title:       "New topic in " + subject,
		Message:     msg.String(),
		Timestamp:   c.Timestamp().In(b.loc),
		EntityID:    entityID,
		SubjectName: subject,
		Location:    core.Clip(c.Occurrence.Location, maxNameLen),
		HasContent:  true,
	}
}

// ScheduleEdit reports a change made to a future lesson. It is always high priority.
func (b Builder) ScheduleEdit(entityID string, c schedule.ContentChange) Notification {
	o := c.Occurrence
	subject := subjectOf(o)
	when := o.StartAt.In(b.loc)

	var msg string
	if o.IsCancelled() {
		msg = fmt.Sprintf("%s on %s at %s has been cancelled.", subject, when.Format(dayFormat), when.Format(timeFormat))
	} else {
		msg = withLocation(fmt.Sprintf("%s on %s now starts at %s",
			lessonLabel(subject, o.TeacherName), when.Format(dayFormat), when.Format(timeFormat),
		), o.Location) + "."
	}

	return Notification{
		ID:          Key{Type: TypeScheduleEdit, SourceID: c.ID},
		Type:        TypeScheduleEdit,
		Priority:    PriorityHigh,
		Title:       "Schedule change: " + subject,
		Message:     msg,
		Timestamp:   c.UpdatedAt.In(b.loc),
		EntityID:    entityID,
		SubjectName: core.Clip(o.SubjectName, maxNameLen),
		Location:    core.Clip(o.Location, maxNameLen),
		HasContent:  o.HasContent(),
	}
}

// MultiChildSummary totals today's lessons of every child, e.g. "3 total classes today: A (3), B (0)".
func (b Builder) MultiChildSummary(parentID string, counts []ChildCount, now time.Time) Notification {
	var total int
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		total += c.Lessons
		name := core.Clip(c.Name, maxNameLen)
		if name == "" {
			name = "Child"
		}
		parts = append(parts, fmt.Sprintf("%s (%d)", name, c.Lessons))
	}

	return Notification{
		ID:        Key{Type: TypeMultiChildSummary, SourceID: now.In(b.loc).Format("2006-01-02")},
		Type:      TypeMultiChildSummary,
		Priority:  PriorityMedium,
		Title:     "Today's classes",
		Message:   fmt.Sprintf("%s today: %s", plural(total, "total class", "total classes"), strings.Join(parts, ", ")),
		Timestamp: now.In(b.loc),
		EntityID:  parentID,
	}
}
