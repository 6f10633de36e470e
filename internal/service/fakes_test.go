package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

var errBoom = errors.New("boom")

type fakeChannels struct {
	mu       sync.Mutex
	channels map[string]domain.Channel
	failing  map[string]error
}

func newFakeChannels(channels ...domain.Channel) *fakeChannels {
	f := &fakeChannels{channels: map[string]domain.Channel{}, failing: map[string]error{}}
	for _, ch := range channels {
		f.channels[ch.ID] = ch
	}
	return f
}

func (f *fakeChannels) GetByID(_ context.Context, id string) (*domain.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failing[id]; ok {
		return nil, err
	}
	ch, ok := f.channels[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ch, nil
}

func (f *fakeChannels) ListActive(context.Context) ([]domain.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Channel
	for _, ch := range f.channels {
		if ch.Active {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeHistory returns a constant sample set per hour unless told otherwise.
type fakeHistory struct {
	samples  []domain.VolumeSample
	failHour map[int]bool
	slowHour map[int]bool
}

func (f *fakeHistory) ListVolumes(ctx context.Context, q repository.HistoryQuery) ([]domain.VolumeSample, error) {
	if f.slowHour[q.Hour] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.failHour[q.Hour] {
		return nil, errBoom
	}
	return f.samples, nil
}

func flatHistory(volumes ...int) *fakeHistory {
	h := &fakeHistory{failHour: map[int]bool{}, slowHour: map[int]bool{}}
	for i, v := range volumes {
		h.samples = append(h.samples, domain.VolumeSample{Date: monday.AddDate(0, 0, -7*(i+1)), Volume: v})
	}
	return h
}

type fakeForecasts struct {
	mu        sync.Mutex
	records   map[string]domain.ForecastRecord
	failHour  map[int]error
	onUpsert  func(domain.ForecastRecord)
	listErr   error
	upsertLog []string
}

func newFakeForecasts(records ...domain.ForecastRecord) *fakeForecasts {
	f := &fakeForecasts{records: map[string]domain.ForecastRecord{}, failHour: map[int]error{}}
	for _, r := range records {
		r.ID = uuid.NewString()
		f.records[slotKey(r)] = r
	}
	return f
}

func slotKey(r domain.ForecastRecord) string {
	return fmt.Sprintf("%s|%s|%s|%02d", r.ChannelID, r.SkillKey(), domain.DateKey(r.Date), r.Hour)
}

func (f *fakeForecasts) Upsert(_ context.Context, r *domain.ForecastRecord) error {
	f.mu.Lock()
	if err, ok := f.failHour[r.Hour]; ok {
		f.mu.Unlock()
		return err
	}
	key := slotKey(*r)
	if existing, ok := f.records[key]; ok && existing.Status != domain.ForecastStatusGenerated {
		f.mu.Unlock()
		return apperrors.NewConflict("forecast slot is no longer editable", nil)
	}
	r.ID = uuid.NewString()
	f.records[key] = *r
	f.upsertLog = append(f.upsertLog, key)
	hook := f.onUpsert
	f.mu.Unlock()

	if hook != nil {
		hook(*r)
	}
	return nil
}

func (f *fakeForecasts) List(_ context.Context, filter repository.ForecastFilter) ([]domain.ForecastRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	channels := map[string]bool{}
	for _, id := range filter.ChannelIDs {
		channels[id] = true
	}
	var out []domain.ForecastRecord
	for _, r := range f.records {
		if len(channels) > 0 && !channels[r.ChannelID] {
			continue
		}
		d := domain.DateOnly(r.Date)
		if filter.Date != nil && !d.Equal(domain.DateOnly(*filter.Date)) {
			continue
		}
		if filter.From != nil && d.Before(domain.DateOnly(*filter.From)) {
			continue
		}
		if filter.To != nil && d.After(domain.DateOnly(*filter.To)) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return slotKey(out[i]) < slotKey(out[j]) })
	return out, nil
}

func (f *fakeForecasts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeAgents struct {
	agents []domain.Agent
	err    error
}

func (f *fakeAgents) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	for _, a := range f.agents {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAgents) ListActive(_ context.Context, ids []string) ([]domain.Agent, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Agent
	for _, a := range f.agents {
		if a.Status != domain.AgentStatusActive {
			continue
		}
		if len(want) > 0 && !want[a.ID] {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type fakeTimeOff struct {
	records []domain.TimeOff
}

func (f *fakeTimeOff) ListApproved(_ context.Context, agentIDs []string, from, to time.Time) ([]domain.TimeOff, error) {
	want := map[string]bool{}
	for _, id := range agentIDs {
		want[id] = true
	}
	var out []domain.TimeOff
	for _, r := range f.records {
		if r.Status == domain.TimeOffApproved && want[r.AgentID] && !r.StartDate.After(to) && !r.EndDate.Before(from) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeSchedules struct {
	mu        sync.Mutex
	schedules map[string]domain.Schedule
	failing   map[string]error
}

func newFakeSchedules(schedules ...domain.Schedule) *fakeSchedules {
	f := &fakeSchedules{schedules: map[string]domain.Schedule{}, failing: map[string]error{}}
	for _, s := range schedules {
		f.schedules[s.ID] = s
	}
	return f
}

func (f *fakeSchedules) Create(_ context.Context, s *domain.Schedule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.NewString()
	f.schedules[s.ID] = *s
	return nil
}

func (f *fakeSchedules) Update(_ context.Context, s *domain.Schedule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.schedules[s.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.schedules[s.ID] = *s
	return nil
}

func (f *fakeSchedules) GetByID(_ context.Context, id string) (*domain.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failing[id]; ok {
		return nil, err
	}
	s, ok := f.schedules[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

func (f *fakeSchedules) ListActive(_ context.Context, on time.Time) ([]domain.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Schedule
	for _, s := range f.schedules {
		if (s.Status == domain.ScheduleStatusActive || s.Status == domain.ScheduleStatusPublished) && s.Includes(on) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeShifts struct {
	mu        sync.Mutex
	shifts    []domain.Shift
	createErr error
	updateErr error
	updates   int
}

func (f *fakeShifts) Create(_ context.Context, s *domain.Shift) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	s.ID = uuid.NewString()
	f.shifts = append(f.shifts, *s)
	return nil
}

func (f *fakeShifts) Update(_ context.Context, s *domain.Shift) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.shifts {
		if f.shifts[i].ID == s.ID {
			f.shifts[i] = *s
			f.updates++
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeShifts) ListBySchedule(_ context.Context, scheduleID string, date *time.Time) ([]domain.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Shift
	for _, s := range f.shifts {
		if s.ScheduleID != scheduleID {
			continue
		}
		if date != nil && domain.DateKey(s.Date) != domain.DateKey(*date) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func recordEvents(d events.Dispatcher, types ...events.EventType) *eventRecorder {
	r := &eventRecorder{}
	for _, t := range types {
		d.Subscribe(t, func(_ context.Context, e events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		})
	}
	return r
}

func (r *eventRecorder) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

type fakePublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.messages == nil {
		p.messages = map[string][][]byte{}
	}
	p.messages[channel] = append(p.messages[channel], payload)
	return nil
}
