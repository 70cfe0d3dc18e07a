package notification

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-notify/core"
	"github.com/trezcool/masomo-notify/core/schedule"
)

var ErrInvalidLimit = errors.New("invalid feed limit")

// Options override the feed defaults; zero values keep them.
type Options struct {
	UpcomingMinutes int    // "upcoming" bucket: now to now+UpcomingMinutes (default 30)
	NextMinutes     int    // "next" bucket: up to now+NextMinutes (default 120)
	LookbackDays    int    // content changes lookback (default 1 for students, 3 for parents)
	Limit           int    // feed cap (default 8 for students, 20 for parents)
	AcademicYearID  string // default: the student's, then the current one
	SubjectID       string // optional
}

// Settings are the defaults every feed is built with.
type Settings struct {
	Location            *time.Location
	UpcomingMinutes     int
	NextMinutes         int
	StudentLookbackDays int
	ParentLookbackDays  int
	StudentLimit        int
	ParentLimit         int
	EditGuard           time.Duration
	QueryTimeout        time.Duration
	MaxConcurrency      int
}

func DefaultSettings() Settings {
	return Settings{
		Location:            time.UTC,
		UpcomingMinutes:     30,
		NextMinutes:         120,
		StudentLookbackDays: 1,
		ParentLookbackDays:  3,
		StudentLimit:        8,
		ParentLimit:         20,
		EditGuard:           schedule.MinEditGuard,
		QueryTimeout:        3 * time.Second,
		MaxConcurrency:      4,
	}
}

// SettingsFromConfig overrides the default settings with the non-zero values of conf.
func SettingsFromConfig(conf core.FeedConfig) (Settings, error) {
	s := DefaultSettings()
	if conf.Timezone != "" {
		loc, err := time.LoadLocation(conf.Timezone)
		if err != nil {
			return Settings{}, errors.Wrap(err, "loading feed timezone")
		}
		s.Location = loc
	}
	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	setInt(&s.UpcomingMinutes, conf.UpcomingMinutes)
	setInt(&s.NextMinutes, conf.NextMinutes)
	setInt(&s.StudentLookbackDays, conf.StudentLookbackDays)
	setInt(&s.ParentLookbackDays, conf.ParentLookbackDays)
	setInt(&s.StudentLimit, conf.StudentLimit)
	setInt(&s.ParentLimit, conf.ParentLimit)
	setInt(&s.MaxConcurrency, conf.MaxConcurrency)
	if conf.EditGuard > 0 {
		s.EditGuard = conf.EditGuard
	}
	if conf.QueryTimeout > 0 {
		s.QueryTimeout = conf.QueryTimeout
	}
	return s, nil
}

// FeedBuilder builds the feeds of students and parents.
type FeedBuilder interface {
	BuildStudentFeed(ctx context.Context, studentID string, now time.Time, opts Options) (Feed, error)
	BuildParentFeed(ctx context.Context, parentID string, now time.Time, opts Options) (Feed, error)
	ParentDigest(ctx context.Context, parentID string, now time.Time, opts Options) (*core.EmailMessage, Feed, error)
}

type Service struct {
	directory *schedule.DirectorySource
	agg       *aggregator
	settings  Settings
	logger    core.Logger
}

var _ FeedBuilder = (*Service)(nil)

func NewService(dir schedule.Directory, repo schedule.Repository, settings Settings, logger core.Logger) *Service {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &Service{
		directory: schedule.NewDirectorySource(dir, settings.QueryTimeout),
		agg: &aggregator{
			schedule:       schedule.NewScheduleSource(repo, settings.QueryTimeout),
			changes:        schedule.NewChangeSource(repo, settings.QueryTimeout, settings.EditGuard),
			builder:        NewBuilder(settings.Location),
			maxConcurrency: settings.MaxConcurrency,
		},
		settings: settings,
		logger:   logger,
	}
}

func (svc *Service) Settings() Settings { return svc.settings }

// prepare applies the defaults to opts and computes the windows of the feed.
func (svc *Service) prepare(now time.Time, opts Options, lookbackDays, limit int) (Options, windows, error) {
	if opts.UpcomingMinutes == 0 {
		opts.UpcomingMinutes = svc.settings.UpcomingMinutes
	}
	if opts.NextMinutes == 0 {
		opts.NextMinutes = svc.settings.NextMinutes
		// a defaulted "next" bucket never ends before the "upcoming" one, it is just empty
		if opts.UpcomingMinutes > opts.NextMinutes {
			opts.NextMinutes = opts.UpcomingMinutes
		}
	}
	if opts.LookbackDays == 0 {
		opts.LookbackDays = lookbackDays
	}
	if opts.Limit == 0 {
		opts.Limit = limit
	}
	if opts.Limit < 0 {
		return opts, windows{}, errors.Wrapf(ErrInvalidLimit, "limit(%d)", opts.Limit)
	}
	w, err := newWindows(now, opts.UpcomingMinutes, opts.NextMinutes, opts.LookbackDays)
	return opts, w, err
}

func (svc *Service) resolveYear(ctx context.Context, now time.Time, ids ...string) (string, error) {
	for _, id := range ids {
		if id != "" {
			return id, nil
		}
	}
	id, err := svc.directory.CurrentAcademicYear(ctx, now)
	return id, errors.Wrap(err, "resolving current academic year")
}

func (svc *Service) debug(kind, id string, feed Feed, started time.Time) {
	if svc.logger == nil {
		return
	}
	svc.logger.Debug(fmt.Sprintf("%s feed %s: %d of %d notifications in %v",
		kind, id, len(feed.Items), feed.Summary.Total, time.Since(started)))
}

// BuildStudentFeed returns what the student should be told at now.
func (svc *Service) BuildStudentFeed(ctx context.Context, studentID string, now time.Time, opts Options) (Feed, error) {
	started := time.Now()
	now = now.In(svc.settings.Location)

	opts, w, err := svc.prepare(now, opts, svc.settings.StudentLookbackDays, svc.settings.StudentLimit)
	if err != nil {
		return Feed{}, err
	}

	st, err := svc.directory.Student(ctx, studentID)
	if err != nil {
		return Feed{}, errors.Wrap(err, "getting student")
	}
	yearID, err := svc.resolveYear(ctx, now, opts.AcademicYearID, st.AcademicYearID)
	if err != nil {
		return Feed{}, err
	}

	ef, err := svc.agg.collect(ctx, target{student: st, yearID: yearID}, now, w, opts.SubjectID)
	if err != nil {
		return Feed{}, errors.Wrap(err, "collecting student notifications")
	}

	items, summary := Rank(ef.items, opts.Limit)
	feed := Feed{EntityID: studentID, GeneratedAt: now, Items: items, Summary: summary}
	svc.debug("student", studentID, feed, started)
	return feed, nil
}

// BuildParentFeed returns what the parent should be told at now about all of their children.
func (svc *Service) BuildParentFeed(ctx context.Context, parentID string, now time.Time, opts Options) (Feed, error) {
	started := time.Now()
	now = now.In(svc.settings.Location)

	opts, w, err := svc.prepare(now, opts, svc.settings.ParentLookbackDays, svc.settings.ParentLimit)
	if err != nil {
		return Feed{}, err
	}

	children, err := svc.directory.Children(ctx, parentID)
	if err != nil {
		return Feed{}, errors.Wrap(err, "getting children")
	}
	children = append([]schedule.Student(nil), children...)
	sort.SliceStable(children, func(i, j int) bool {
		if children[i].DisplayName != children[j].DisplayName {
			return children[i].DisplayName < children[j].DisplayName
		}
		return children[i].ID < children[j].ID
	})

	var currentYear string
	targets := make([]target, 0, len(children))
	for _, child := range children {
		yearID := opts.AcademicYearID
		if yearID == "" {
			yearID = child.AcademicYearID
		}
		if yearID == "" {
			if currentYear == "" {
				if currentYear, err = svc.resolveYear(ctx, now); err != nil {
					return Feed{}, err
				}
			}
			yearID = currentYear
		}
		targets = append(targets, target{student: child, yearID: yearID})
	}

	feeds, err := svc.agg.collectAll(ctx, targets, now, w, opts.SubjectID)
	if err != nil {
		return Feed{}, errors.Wrap(err, "collecting children notifications")
	}

	var all []Notification
	counts := make([]ChildCount, 0, len(children))
	for i, ef := range feeds {
		all = append(all, ef.items...)
		counts = append(counts, ChildCount{Name: children[i].DisplayName, Lessons: ef.todayCount})
	}
	if len(children) > 1 {
		all = append(all, svc.agg.builder.MultiChildSummary(parentID, counts, now))
	}

	items, summary := Rank(all, opts.Limit)
	feed := Feed{EntityID: parentID, GeneratedAt: now, Items: items, Summary: summary}
	svc.debug("parent", parentID, feed, started)
	return feed, nil
}
