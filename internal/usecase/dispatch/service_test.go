package dispatch

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/usecase/delivery"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobRepo struct {
	jobs     map[string]*entity.NotificationJob
	statuses map[string]string
}

func newFakeJobRepo(jobs ...*entity.NotificationJob) *fakeJobRepo {
	f := &fakeJobRepo{jobs: map[string]*entity.NotificationJob{}, statuses: map[string]string{}}
	for _, j := range jobs {
		f.jobs[j.ID] = j
	}
	return f
}

func (f *fakeJobRepo) Create(ctx context.Context, job *entity.NotificationJob) error {
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) Get(ctx context.Context, id string) (*entity.NotificationJob, error) {
	if j, ok := f.jobs[id]; ok {
		return j, nil
	}
	return nil, entity.ErrNotFound
}

func (f *fakeJobRepo) UpdateStatus(ctx context.Context, id, status string) error {
	f.statuses[id] = status
	return nil
}

type fakePrefsRepo struct {
	mu      sync.Mutex
	records map[string]*entity.Preferences
	upserts int
}

func (f *fakePrefsRepo) Get(ctx context.Context, uid string) (*entity.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.records[uid]; ok {
		return p, nil
	}
	return nil, entity.ErrNotFound
}

func (f *fakePrefsRepo) Upsert(ctx context.Context, p *entity.Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[p.UID] = p
	f.upserts++
	return nil
}

// fakeWorker records which channels were invoked and the state of the
// delivery context at call time.
type fakeWorker struct {
	mu       sync.Mutex
	channels []entity.Channel
	inputs   []delivery.Input
	ctxErrs  []error
}

func (f *fakeWorker) Deliver(ctx context.Context, ch entity.Channel, in delivery.Input) (*delivery.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, ch)
	f.inputs = append(f.inputs, in)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return &delivery.Output{
		OK:         true,
		DeliveryID: entity.DeliveryID(in.JobID, ch, in.UID, ""),
	}, nil
}

func (f *fakeWorker) ApplyReceipt(ctx context.Context, providerMessageID, event string) error {
	return nil
}

func (f *fakeWorker) invoked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.channels))
	for _, ch := range f.channels {
		out = append(out, string(ch))
	}
	sort.Strings(out)
	return out
}

func testJob(topic string, required ...entity.Channel) *entity.NotificationJob {
	return &entity.NotificationJob{
		ID:               "job-1",
		TemplateID:       "booking.confirmed",
		Audience:         entity.Audience{Type: entity.AudienceTypeUser, UID: "u1"},
		Data:             map[string]string{"title": "Booking confirmed", "body": "See you Friday"},
		RequiredChannels: required,
		Topic:            topic,
		Status:           entity.JobStatusQueued,
		CreatedAt:        time.Now(),
	}
}

func TestDispatch_FanOutRespectsOptOut(t *testing.T) {
	jobs := newFakeJobRepo(testJob("booking", entity.ChannelInApp, entity.ChannelSMS))
	prefs := &fakePrefsRepo{records: map[string]*entity.Preferences{}}
	p := entity.DefaultPreferences("u1")
	p.ChannelOptIn[entity.ChannelSMS] = false
	prefs.records["u1"] = p

	worker := &fakeWorker{}
	svc := NewService(jobs, prefs, worker, 4)

	require.NoError(t, svc.Dispatch(context.Background(), "job-1"))

	assert.Equal(t, []string{"inapp"}, worker.invoked())
	assert.Equal(t, entity.JobStatusProcessed, jobs.statuses["job-1"])

	want := []delivery.Input{{
		JobID: "job-1",
		UID:   "u1",
		Topic: "booking",
		Payload: delivery.Payload{
			Title: "Booking confirmed",
			Body:  "See you Friday",
		},
	}}
	if diff := cmp.Diff(want, worker.inputs); diff != "" {
		t.Errorf("delivery inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatch_TopicOptOutSuppressesAll(t *testing.T) {
	jobs := newFakeJobRepo(testJob("marketing"))
	prefs := &fakePrefsRepo{records: map[string]*entity.Preferences{}}
	p := entity.DefaultPreferences("u1")
	p.TopicOptIn["marketing"] = false
	prefs.records["u1"] = p

	worker := &fakeWorker{}
	svc := NewService(jobs, prefs, worker, 4)

	require.NoError(t, svc.Dispatch(context.Background(), "job-1"))

	assert.Empty(t, worker.invoked())
	assert.Equal(t, entity.JobStatusProcessed, jobs.statuses["job-1"])
}

func TestDispatch_QuietHours(t *testing.T) {
	quietAll := entity.DefaultPreferences("u1")
	// 00:00-23:59 makes the window cover any wall clock the test runs at
	quietAll.QuietHours = entity.QuietHours{Start: "00:00", End: "23:59"}

	t.Run("marketing job inside the window reaches only inapp", func(t *testing.T) {
		jobs := newFakeJobRepo(testJob("marketing", entity.ChannelInApp, entity.ChannelEmail, entity.ChannelPush))
		prefs := &fakePrefsRepo{records: map[string]*entity.Preferences{"u1": quietAll}}

		worker := &fakeWorker{}
		svc := NewService(jobs, prefs, worker, 4)

		require.NoError(t, svc.Dispatch(context.Background(), "job-1"))
		assert.Equal(t, []string{"inapp"}, worker.invoked())
	})

	t.Run("system topic bypasses the window", func(t *testing.T) {
		jobs := newFakeJobRepo(testJob("system", entity.ChannelInApp, entity.ChannelEmail))
		prefs := &fakePrefsRepo{records: map[string]*entity.Preferences{"u1": quietAll}}

		worker := &fakeWorker{}
		svc := NewService(jobs, prefs, worker, 4)

		require.NoError(t, svc.Dispatch(context.Background(), "job-1"))
		assert.Equal(t, []string{"email", "inapp"}, worker.invoked())
	})
}

func TestDispatch_LazyDefaultPreferences(t *testing.T) {
	jobs := newFakeJobRepo(testJob("booking", entity.ChannelInApp))
	prefs := &fakePrefsRepo{records: map[string]*entity.Preferences{}}

	worker := &fakeWorker{}
	svc := NewService(jobs, prefs, worker, 4)

	require.NoError(t, svc.Dispatch(context.Background(), "job-1"))

	assert.Equal(t, []string{"inapp"}, worker.invoked())
	assert.Equal(t, 1, prefs.upserts, "defaults should be persisted on first read")
}

func TestDispatch_NoRequiredChannelsMeansAllSix(t *testing.T) {
	jobs := newFakeJobRepo(testJob("booking"))
	prefs := &fakePrefsRepo{records: map[string]*entity.Preferences{}}

	worker := &fakeWorker{}
	svc := NewService(jobs, prefs, worker, 8)

	require.NoError(t, svc.Dispatch(context.Background(), "job-1"))

	assert.Equal(t, []string{"email", "inapp", "line", "push", "sms", "telegram"}, worker.invoked())
}

func TestDispatch_CancellationReachesDeliveries(t *testing.T) {
	jobs := newFakeJobRepo(testJob("booking", entity.ChannelInApp, entity.ChannelEmail))
	prefs := &fakePrefsRepo{records: map[string]*entity.Preferences{"u1": entity.DefaultPreferences("u1")}}

	worker := &fakeWorker{}
	svc := NewService(jobs, prefs, worker, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, svc.Dispatch(ctx, "job-1"))

	require.Len(t, worker.ctxErrs, 2)
	for _, err := range worker.ctxErrs {
		assert.ErrorIs(t, err, context.Canceled,
			"the delivery context must inherit cancellation from the dispatch context")
	}
}

func TestDispatch_UnknownJob(t *testing.T) {
	svc := NewService(newFakeJobRepo(), &fakePrefsRepo{records: map[string]*entity.Preferences{}}, &fakeWorker{}, 4)

	err := svc.Dispatch(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRenderPayload(t *testing.T) {
	t.Run("uses data fields when present", func(t *testing.T) {
		job := testJob("booking")
		job.Data["actionUrl"] = "https://app.example.com/bookings/1"

		p := renderPayload(job)
		assert.Equal(t, "Booking confirmed", p.Title)
		assert.Equal(t, "See you Friday", p.Body)
		assert.Equal(t, "https://app.example.com/bookings/1", p.ActionURL)
	})

	t.Run("falls back to humanized template id", func(t *testing.T) {
		job := testJob("booking")
		job.Data = nil

		p := renderPayload(job)
		assert.Equal(t, "Booking confirmed", p.Title)
		assert.Equal(t, "Booking confirmed", p.Body)
		assert.Empty(t, p.ActionURL)
	})
}
