package lifecycle

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"carematch/internal/app/config"
	"carematch/internal/app/ds"
	"carematch/internal/app/dto"
	"carematch/internal/app/events"
	"carematch/internal/app/repository"
	"carematch/internal/app/role"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fakeSigner struct{}

func (fakeSigner) AvatarURL(_ context.Context, key string) (string, error) {
	return "https://avatars.test/" + key, nil
}

type fixture struct {
	engine *Engine
	repo   *repository.Repository
	events *recordingPublisher
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	db := config.DatabaseConfig{
		Driver:     repository.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "lifecycle.db"),
	}
	return newFixtureFor(t, db, opts...)
}

// newFixtureFor opens the store exactly as the server would for db.
func newFixtureFor(t *testing.T, db config.DatabaseConfig, opts ...Option) *fixture {
	t.Helper()

	repo, err := repository.Open(db.Driver, db.ConnString())
	require.NoError(t, err)
	require.NoError(t, repo.Migrate())
	t.Cleanup(func() { _ = repo.Close() })

	pub := &recordingPublisher{}
	base := []Option{
		WithPublisher(pub),
		WithAvatarSigner(fakeSigner{}),
		WithClock(func() time.Time { return testNow }),
		WithLocation(time.UTC),
	}
	f := &fixture{
		engine: New(repo, append(base, opts...)...),
		repo:   repo,
		events: pub,
	}
	f.seedUsers(t)
	return f
}

func (f *fixture) seedUsers(t *testing.T) {
	t.Helper()

	birthday := time.Date(1958, 6, 15, 0, 0, 0, 0, time.UTC)
	center := uint(3)
	avatar := "users/u1.png"
	users := []ds.User{
		{
			ID: "u1", Role: role.Requester,
			FamilyName: "Sato", FirstName: "Hana", FamilyNameKana: "サトウ", FirstNameKana: "ハナ",
			Gender: "female", Birthday: &birthday, PhoneNumber: "090-0000-0001",
			Address1: "Chuo-ku, Tokyo", Address2: "1-2-3", ProfileImageKey: &avatar,
			Bio: "Lives with a cat", CenterID: &center,
		},
		{ID: "u2", Role: role.Requester, FamilyName: "Kato", Address1: "Minato-ku, Tokyo"},
		{ID: "s1", Role: role.Supporter, FamilyNameKana: "イトウ", FirstNameKana: "ケン", PhoneNumber: "080-1111-2222", Bio: "Weekends"},
		{ID: "s2", Role: role.Supporter, FamilyName: "Mori", FirstName: "Jun"},
	}
	for i := range users {
		require.NoError(t, f.repo.CreateUser(&users[i]))
	}
}

func requester(id string) Caller { return Caller{Subject: id, Role: role.Requester} }
func supporter(id string) Caller { return Caller{Subject: id, Role: role.Supporter} }

func validInput() dto.CreateRequestRequest {
	return dto.CreateRequestRequest{
		ScheduledDate:      "2030-01-05",
		ScheduledStartTime: "10:00",
		ScheduledEndTime:   "11:30",
		Location1:          "Corner supermarket",
		Description:        "Milk and bread",
	}
}

// openRequest posts a fresh request for u1.
func (f *fixture) openRequest(t *testing.T) *ds.Request {
	t.Helper()
	req, err := f.engine.CreateRequest(context.Background(), requester("u1"), validInput())
	require.NoError(t, err)
	return req
}

func (f *fixture) reload(t *testing.T, id uint) *ds.Request {
	t.Helper()
	req, err := f.repo.GetRequestByID(id)
	require.NoError(t, err)
	return req
}

func strPtr(s string) *string { return &s }

func listIDs(views []dto.RequestResponse) []uint {
	out := make([]uint, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return out
}
