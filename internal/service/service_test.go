package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wardrobe-client/internal/lifetime"
	"wardrobe-client/internal/model"
	"wardrobe-client/internal/options"
	"wardrobe-client/internal/session"
	"wardrobe-client/internal/storage"
	"wardrobe-client/pkg/apierror"
	"wardrobe-client/pkg/logging"
)

// fakeBackend records calls and returns canned results.
type fakeBackend struct {
	saveCalls   int32
	listCalls   int32
	browseCalls int32
	assignCalls int32
	deleteCalls int32
	loginCalls  int32

	mu          sync.Mutex
	saved       []string
	assignments []model.CategoryAssignment
	deleted     []string

	saveFn   func(ctx context.Context, url string) (*model.Item, error)
	listFn   func()
	items    []model.Item
	assignFn func(model.CategoryAssignment) error
	deleteFn func(string) error
	authRes  *model.AuthResult
	authErr  error
}

func (f *fakeBackend) SaveItem(ctx context.Context, rawURL, userID string) (*model.Item, error) {
	atomic.AddInt32(&f.saveCalls, 1)
	f.mu.Lock()
	f.saved = append(f.saved, rawURL)
	f.mu.Unlock()
	if f.saveFn != nil {
		return f.saveFn(ctx, rawURL)
	}
	return &model.Item{ID: "1", Title: "Shoe", SourceURL: rawURL}, nil
}

func (f *fakeBackend) ListItems(ctx context.Context, userID string) ([]model.Item, error) {
	atomic.AddInt32(&f.listCalls, 1)
	if f.listFn != nil {
		f.listFn()
	}
	return f.items, nil
}

func (f *fakeBackend) ListItemsByOwnership(ctx context.Context, userID string, o model.Ownership) ([]model.Item, error) {
	atomic.AddInt32(&f.browseCalls, 1)
	out := []model.Item{}
	for _, item := range f.items {
		if item.Ownership == o {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeBackend) AssignCategory(ctx context.Context, a model.CategoryAssignment) error {
	atomic.AddInt32(&f.assignCalls, 1)
	f.mu.Lock()
	f.assignments = append(f.assignments, a)
	f.mu.Unlock()
	if f.assignFn != nil {
		return f.assignFn(a)
	}
	return nil
}

func (f *fakeBackend) DeleteItem(ctx context.Context, itemID string) error {
	atomic.AddInt32(&f.deleteCalls, 1)
	f.mu.Lock()
	f.deleted = append(f.deleted, itemID)
	f.mu.Unlock()
	if f.deleteFn != nil {
		return f.deleteFn(itemID)
	}
	return nil
}

func (f *fakeBackend) Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error) {
	atomic.AddInt32(&f.loginCalls, 1)
	return f.authRes, f.authErr
}

func (f *fakeBackend) Register(ctx context.Context, reg model.Registration) (*model.AuthResult, error) {
	atomic.AddInt32(&f.loginCalls, 1)
	return f.authRes, f.authErr
}

func (f *fakeBackend) SocialLogin(ctx context.Context, profile model.SocialProfile) (*model.AuthResult, error) {
	atomic.AddInt32(&f.loginCalls, 1)
	if f.authRes != nil && f.authRes.FirstName == "" {
		res := *f.authRes
		res.FirstName = profile.FirstName
		return &res, f.authErr
	}
	return f.authRes, f.authErr
}

type fixture struct {
	kv       *storage.MemoryStore
	sessions *session.Store
	options  *options.Cache
	backend  *fakeBackend
}

func newFixture(t *testing.T, signedIn bool) *fixture {
	t.Helper()
	kv := storage.NewMemoryStore()
	log := logging.Discard()
	f := &fixture{
		kv:       kv,
		sessions: session.NewStore(kv, log),
		options:  options.NewCache(kv, log),
		backend:  &fakeBackend{},
	}
	if signedIn {
		if err := f.sessions.Save(context.Background(), model.Session{UserID: "u-1", Username: "ada", DisplayName: "Ada"}); err != nil {
			t.Fatalf("save session: %v", err)
		}
	}
	return f
}

func TestCaptureRejectsInvalidLinks(t *testing.T) {
	f := newFixture(t, true)
	p := NewCapturePipeline(f.backend, f.sessions, logging.Discard())

	for _, input := range []string{"shoes", "ftp://a.test/x", "http://", "https://a.test/ x", "www.a.test"} {
		t.Run(input, func(t *testing.T) {
			_, err := p.Submit(context.Background(), input)
			if apierror.KindOf(err) != apierror.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if apierror.MessageOf(err) != MsgInvalidLink {
				t.Errorf("unexpected message %q", apierror.MessageOf(err))
			}
			if p.Input() != input {
				t.Errorf("expected input preserved, got %q", p.Input())
			}
			if p.State() != StateIdle {
				t.Errorf("expected idle, got %s", p.State())
			}
		})
	}

	if got := atomic.LoadInt32(&f.backend.saveCalls); got != 0 {
		t.Errorf("expected no network calls, got %d", got)
	}
}

func TestCaptureScenario(t *testing.T) {
	f := newFixture(t, true)
	p := NewCapturePipeline(f.backend, f.sessions, logging.Discard())
	ctx := context.Background()

	if _, err := p.Submit(ctx, "shoes"); err == nil {
		t.Fatal("expected shoes to be rejected")
	}
	if got := atomic.LoadInt32(&f.backend.saveCalls); got != 0 {
		t.Fatalf("expected no call for invalid link, got %d", got)
	}

	res, err := p.Submit(ctx, "http://a.test/x")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if res.Duplicate || res.Item == nil || res.Item.ID != "1" {
		t.Errorf("unexpected result %+v", res)
	}
	if got := atomic.LoadInt32(&f.backend.saveCalls); got != 1 {
		t.Fatalf("expected one save call, got %d", got)
	}
	items := p.Items()
	if len(items) != 1 || items[0].ID != "1" || items[0].SourceURL != "http://a.test/x" {
		t.Fatalf("unexpected items %+v", items)
	}
	if p.Input() != "" {
		t.Errorf("expected input cleared, got %q", p.Input())
	}

	p.SetInput("http://a.test/x")
	res, err = p.Submit(ctx, p.Input())
	if err != nil {
		t.Fatalf("duplicate submit should not fail: %v", err)
	}
	if !res.Duplicate {
		t.Error("expected duplicate result")
	}
	if got := atomic.LoadInt32(&f.backend.saveCalls); got != 1 {
		t.Errorf("expected no call for duplicate, got %d calls", got)
	}
	if p.Input() != "" {
		t.Errorf("expected input cleared after duplicate, got %q", p.Input())
	}
	if len(p.Items()) != 1 {
		t.Errorf("expected list unchanged, got %d items", len(p.Items()))
	}
}

func TestCaptureTrimsBeforeDuplicateCheck(t *testing.T) {
	f := newFixture(t, true)
	f.backend.items = []model.Item{{ID: "9", SourceURL: "https://shop.test/a"}}
	p := NewCapturePipeline(f.backend, f.sessions, logging.Discard())
	if _, err := p.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	res, err := p.Submit(context.Background(), "  https://shop.test/a \n")
	if err != nil || !res.Duplicate {
		t.Fatalf("expected duplicate, got %+v (%v)", res, err)
	}
	if got := atomic.LoadInt32(&f.backend.saveCalls); got != 0 {
		t.Errorf("expected no call, got %d", got)
	}
}

func TestCapturePrependsNewest(t *testing.T) {
	f := newFixture(t, true)
	n := 0
	f.backend.saveFn = func(_ context.Context, url string) (*model.Item, error) {
		n++
		return &model.Item{ID: string(rune('a' + n)), SourceURL: url}, nil
	}
	p := NewCapturePipeline(f.backend, f.sessions, logging.Discard())
	ctx := context.Background()

	for _, link := range []string{"http://a.test/1", "http://a.test/2", "http://a.test/3"} {
		if _, err := p.Submit(ctx, link); err != nil {
			t.Fatalf("Submit %s failed: %v", link, err)
		}
		if first := p.Items()[0]; first.SourceURL != link {
			t.Errorf("expected %s first, got %s", link, first.SourceURL)
		}
	}
	if len(p.Items()) != 3 {
		t.Errorf("expected 3 items, got %d", len(p.Items()))
	}
}

func TestCaptureFailurePreservesInput(t *testing.T) {
	f := newFixture(t, true)
	f.backend.saveFn = func(context.Context, string) (*model.Item, error) {
		return nil, apierror.Application(400, "Unsupported site", "Could not save item.")
	}
	p := NewCapturePipeline(f.backend, f.sessions, logging.Discard())

	_, err := p.Submit(context.Background(), "http://a.test/x")
	if apierror.MessageOf(err) != "Unsupported site" {
		t.Fatalf("expected server message, got %v", err)
	}
	if p.Input() != "http://a.test/x" {
		t.Errorf("expected input preserved, got %q", p.Input())
	}
	if len(p.Items()) != 0 {
		t.Errorf("expected no items, got %d", len(p.Items()))
	}
	if p.State() != StateIdle {
		t.Errorf("expected idle, got %s", p.State())
	}
}

func TestCaptureRequiresSession(t *testing.T) {
	f := newFixture(t, false)
	p := NewCapturePipeline(f.backend, f.sessions, logging.Discard())

	_, err := p.Submit(context.Background(), "http://a.test/x")
	if apierror.KindOf(err) != apierror.KindAuth {
		t.Fatalf("expected auth error, got %v", err)
	}
	if _, err := p.Submit(context.Background(), "   "); apierror.KindOf(err) != apierror.KindValidation {
		t.Errorf("expected validation error for empty input, got %v", err)
	}
	if got := atomic.LoadInt32(&f.backend.saveCalls); got != 0 {
		t.Errorf("expected no call, got %d", got)
	}
}

func TestCaptureRejectsConcurrentSubmit(t *testing.T) {
	f := newFixture(t, true)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.backend.saveFn = func(_ context.Context, url string) (*model.Item, error) {
		close(entered)
		<-release
		return &model.Item{ID: "1", SourceURL: url}, nil
	}
	p := NewCapturePipeline(f.backend, f.sessions, logging.Discard())

	done := make(chan error, 1)
	go func() {
		_, err := p.Submit(context.Background(), "http://a.test/1")
		done <- err
	}()

	<-entered
	if p.State() != StateSubmitting {
		t.Errorf("expected submitting, got %s", p.State())
	}
	if _, err := p.Submit(context.Background(), "http://a.test/2"); apierror.MessageOf(err) != MsgCaptureInFlight {
		t.Errorf("expected in-flight rejection, got %v", err)
	}
	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first submit failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("first submit did not finish")
	}
}

func TestCaptureDiscardsResultForClosedView(t *testing.T) {
	f := newFixture(t, true)
	scope := lifetime.New(context.Background())
	f.backend.saveFn = func(ctx context.Context, url string) (*model.Item, error) {
		scope.Close()
		<-ctx.Done()
		return &model.Item{ID: "1", SourceURL: url}, nil
	}
	p := NewCapturePipeline(f.backend, f.sessions, logging.Discard())

	_, err := lifetime.Run(context.Background(), scope, func(ctx context.Context) (*CaptureResult, error) {
		return p.Submit(ctx, "http://a.test/x")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected discarded result, got %v", err)
	}
	if len(p.Items()) != 0 {
		t.Errorf("expected list untouched, got %+v", p.Items())
	}
	if p.State() != StateIdle {
		t.Errorf("expected idle, got %s", p.State())
	}
}

func TestCaptureDropsResultAfterReset(t *testing.T) {
	f := newFixture(t, true)
	var p *CapturePipeline
	f.backend.saveFn = func(_ context.Context, url string) (*model.Item, error) {
		p.Reset()
		return &model.Item{ID: "1", SourceURL: url}, nil
	}
	p = NewCapturePipeline(f.backend, f.sessions, logging.Discard())

	res, err := p.Submit(context.Background(), "http://a.test/x")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if res.Item == nil || res.Item.ID != "1" {
		t.Errorf("expected saved item in result, got %+v", res)
	}
	if len(p.Items()) != 0 {
		t.Errorf("expected previous session's item dropped, got %+v", p.Items())
	}
	if p.State() != StateIdle {
		t.Errorf("expected idle, got %s", p.State())
	}

	f.backend.items = []model.Item{{ID: "9", SourceURL: "http://a.test/9"}}
	f.backend.listFn = func() { p.Reset() }
	if _, err := p.Refresh(context.Background()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected refresh dropped after reset, got %v", err)
	}
	if len(p.Items()) != 0 {
		t.Errorf("expected empty list, got %+v", p.Items())
	}
}

func TestCaptureRefreshAndRemove(t *testing.T) {
	f := newFixture(t, true)
	f.backend.items = []model.Item{{ID: "1", SourceURL: "http://a.test/1"}, {ID: "2", SourceURL: "http://a.test/2"}}
	p := NewCapturePipeline(f.backend, f.sessions, logging.Discard())

	items, err := p.Refresh(context.Background())
	if err != nil || len(items) != 2 {
		t.Fatalf("unexpected refresh %+v (%v)", items, err)
	}
	if !p.Remove("1") || p.Remove("1") {
		t.Error("expected Remove to succeed once")
	}
	if got := p.Items(); len(got) != 1 || got[0].ID != "2" {
		t.Errorf("unexpected items after remove %+v", got)
	}
	if f.backend.items[0].ID != "1" {
		t.Error("Remove must not alias the refreshed slice")
	}
}

func TestCategorizeValidation(t *testing.T) {
	tests := []struct {
		name string
		c    model.Categorization
		msg  string
	}{
		{"empty ownership", model.Categorization{Category: "Shoes", Subcategory: "Heels"}, MsgFillAllFields},
		{"empty category", model.Categorization{Ownership: model.OwnershipOwn, Subcategory: "Heels"}, MsgFillAllFields},
		{"blank subcategory", model.Categorization{Ownership: model.OwnershipOwn, Category: "Shoes", Subcategory: "  "}, MsgFillAllFields},
		{"unknown ownership", model.Categorization{Ownership: "borrowed", Category: "Shoes", Subcategory: "Heels"}, MsgInvalidOwnership},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			flow := NewCategorizeFlow(f.backend, f.sessions, f.options, logging.Discard())

			err := flow.Submit(context.Background(), "1", tt.c)
			if apierror.KindOf(err) != apierror.KindValidation || apierror.MessageOf(err) != tt.msg {
				t.Fatalf("expected %q validation error, got %v", tt.msg, err)
			}
			if got := atomic.LoadInt32(&f.backend.assignCalls); got != 0 {
				t.Errorf("expected no call, got %d", got)
			}
		})
	}
}

func TestCategorizeScenario(t *testing.T) {
	f := newFixture(t, true)
	flow := NewCategorizeFlow(f.backend, f.sessions, f.options, logging.Discard())
	ctx := context.Background()

	if err := flow.Submit(ctx, "1", model.Categorization{Ownership: "", Category: "Shoes", Subcategory: "Heels"}); err == nil {
		t.Fatal("expected empty ownership to be rejected")
	}

	c := model.Categorization{Ownership: model.OwnershipOwn, Category: "Shoes", Subcategory: "Heels"}
	if err := flow.Submit(ctx, "1", c); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := atomic.LoadInt32(&f.backend.assignCalls); got != 1 {
		t.Fatalf("expected one assign call, got %d", got)
	}
	a := f.backend.assignments[0]
	if a.ItemID != "1" || a.UserID != "u-1" || a.Ownership != model.OwnershipOwn {
		t.Errorf("unexpected assignment %+v", a)
	}

	if err := flow.Submit(ctx, "1", c); err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}
	cats, _ := f.options.Load(ctx, options.Categories)
	if len(cats) != 1 || cats[0] != "Shoes" {
		t.Errorf("expected Shoes exactly once, got %v", cats)
	}
	subs, _ := f.options.Load(ctx, options.Subcategories)
	if len(subs) != 1 || subs[0] != "Heels" {
		t.Errorf("expected Heels exactly once, got %v", subs)
	}
}

func TestCategorizeFailureSkipsRemember(t *testing.T) {
	f := newFixture(t, true)
	f.backend.assignFn = func(model.CategoryAssignment) error {
		return apierror.Application(500, "", "Failed to save.")
	}
	flow := NewCategorizeFlow(f.backend, f.sessions, f.options, logging.Discard())
	ctx := context.Background()

	err := flow.Submit(ctx, "1", model.Categorization{Ownership: "wishlist", Category: "Bags", Subcategory: "Tote"})
	if apierror.MessageOf(err) != "Failed to save." {
		t.Fatalf("expected fallback message, got %v", err)
	}
	if cats, _ := f.options.Load(ctx, options.Categories); len(cats) != 0 {
		t.Errorf("expected nothing remembered, got %v", cats)
	}
}

func TestCategorizeRequiresSession(t *testing.T) {
	f := newFixture(t, false)
	flow := NewCategorizeFlow(f.backend, f.sessions, f.options, logging.Discard())

	err := flow.Submit(context.Background(), "1", model.Categorization{Ownership: "own", Category: "Shoes", Subcategory: "Heels"})
	if apierror.KindOf(err) != apierror.KindAuth {
		t.Fatalf("expected auth error, got %v", err)
	}
	if got := atomic.LoadInt32(&f.backend.assignCalls); got != 0 {
		t.Errorf("expected no call, got %d", got)
	}
}

func TestDeleteFlow(t *testing.T) {
	t.Run("no call before confirm", func(t *testing.T) {
		f := newFixture(t, true)
		flow := NewDeleteFlow(f.backend, logging.Discard())

		c := flow.Request("1")
		if c.ItemID != "1" || c.Token == "" {
			t.Fatalf("unexpected confirmation %+v", c)
		}
		if got := atomic.LoadInt32(&f.backend.deleteCalls); got != 0 {
			t.Fatalf("expected no call before confirm, got %d", got)
		}

		id, err := flow.Confirm(context.Background(), c.Token)
		if err != nil || id != "1" {
			t.Fatalf("Confirm failed: %s (%v)", id, err)
		}
		if got := atomic.LoadInt32(&f.backend.deleteCalls); got != 1 {
			t.Errorf("expected one delete call, got %d", got)
		}

		if _, err := flow.Confirm(context.Background(), c.Token); apierror.MessageOf(err) != MsgConfirmationInvalid {
			t.Errorf("expected token to be single use, got %v", err)
		}
	})

	t.Run("cancel", func(t *testing.T) {
		f := newFixture(t, true)
		flow := NewDeleteFlow(f.backend, logging.Discard())

		c := flow.Request("1")
		if !flow.Cancel(c.Token) {
			t.Fatal("expected Cancel to find the token")
		}
		if _, err := flow.Confirm(context.Background(), c.Token); err == nil {
			t.Error("expected cancelled token to be rejected")
		}
		if got := atomic.LoadInt32(&f.backend.deleteCalls); got != 0 {
			t.Errorf("expected no call, got %d", got)
		}
	})

	t.Run("failure keeps token", func(t *testing.T) {
		f := newFixture(t, true)
		fail := true
		f.backend.deleteFn = func(string) error {
			if fail {
				return apierror.Network(errors.New("connection reset"))
			}
			return nil
		}
		flow := NewDeleteFlow(f.backend, logging.Discard())

		c := flow.Request("1")
		if _, err := flow.Confirm(context.Background(), c.Token); apierror.KindOf(err) != apierror.KindNetwork {
			t.Fatalf("expected network error, got %v", err)
		}
		fail = false
		if _, err := flow.Confirm(context.Background(), c.Token); err != nil {
			t.Errorf("expected retry with same token to succeed, got %v", err)
		}
	})

	t.Run("expiry and purge", func(t *testing.T) {
		f := newFixture(t, true)
		flow := NewDeleteFlow(f.backend, logging.Discard())
		now := time.Now()
		flow.now = func() time.Time { return now }

		expired := flow.Request("1")
		now = now.Add(ConfirmationTTL + time.Second)
		live := flow.Request("2")

		sweeper := NewConfirmationSweeper(flow, time.Hour, logging.Discard())
		if removed := sweeper.RunNow(); removed != 1 {
			t.Errorf("expected 1 purged, got %d", removed)
		}
		if flow.Pending() != 1 {
			t.Errorf("expected 1 pending, got %d", flow.Pending())
		}
		if _, err := flow.Confirm(context.Background(), expired.Token); err == nil {
			t.Error("expected expired token to be rejected")
		}
		if _, err := flow.Confirm(context.Background(), live.Token); err != nil {
			t.Errorf("expected live token to work, got %v", err)
		}
	})

	t.Run("token bound to item", func(t *testing.T) {
		f := newFixture(t, true)
		flow := NewDeleteFlow(f.backend, logging.Discard())

		c := flow.Request("1")
		if _, err := flow.ConfirmItem(context.Background(), "2", c.Token); err == nil {
			t.Fatal("expected token for another item to be rejected")
		}
		if flow.Pending() != 1 {
			t.Errorf("expected mismatched token to stay pending, got %d", flow.Pending())
		}
		if _, err := flow.ConfirmItem(context.Background(), "1", c.Token); err != nil {
			t.Errorf("ConfirmItem failed: %v", err)
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		f := newFixture(t, true)
		flow := NewDeleteFlow(f.backend, logging.Discard())
		if _, err := flow.Confirm(context.Background(), "not-a-token"); apierror.KindOf(err) != apierror.KindValidation {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestSweeperStartStop(t *testing.T) {
	f := newFixture(t, true)
	flow := NewDeleteFlow(f.backend, logging.Discard())
	s := NewConfirmationSweeper(flow, 10*time.Millisecond, logging.Discard())
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestAuthLoginValidation(t *testing.T) {
	tests := []struct {
		name  string
		creds model.Credentials
		msg   string
	}{
		{"missing user", model.Credentials{Password: "secret1"}, MsgLoginFieldsRequired},
		{"missing password", model.Credentials{EmailOrUsername: "ada"}, MsgLoginFieldsRequired},
		{"short password", model.Credentials{EmailOrUsername: "ada", Password: "12345"}, MsgPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			svc := NewAuthService(f.backend, f.sessions, logging.Discard())
			if _, err := svc.Login(context.Background(), tt.creds); apierror.MessageOf(err) != tt.msg {
				t.Errorf("expected %q, got %v", tt.msg, err)
			}
			if got := atomic.LoadInt32(&f.backend.loginCalls); got != 0 {
				t.Errorf("expected no call, got %d", got)
			}
		})
	}
}

func TestAuthLoginPersistsSession(t *testing.T) {
	f := newFixture(t, false)
	f.backend.authRes = &model.AuthResult{UserID: "u-7", Username: "ada", FirstName: "Ada"}
	svc := NewAuthService(f.backend, f.sessions, logging.Discard())
	ctx := context.Background()

	sess, err := svc.Login(ctx, model.Credentials{EmailOrUsername: " ada ", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if sess.UserID != "u-7" || sess.Greeting() != "Ada" {
		t.Errorf("unexpected session %+v", sess)
	}

	cur, err := svc.Current(ctx)
	if err != nil || cur.UserID != "u-7" || cur.Username != "ada" {
		t.Fatalf("unexpected current session %+v (%v)", cur, err)
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.Current(ctx); apierror.KindOf(err) != apierror.KindAuth {
		t.Errorf("expected auth error after logout, got %v", err)
	}
}

func TestAuthSignupAndSocial(t *testing.T) {
	ctx := context.Background()

	t.Run("signup requires fields", func(t *testing.T) {
		f := newFixture(t, false)
		svc := NewAuthService(f.backend, f.sessions, logging.Discard())
		_, err := svc.Signup(ctx, model.Registration{Email: "a@x.test", Password: "secret1"})
		if apierror.MessageOf(err) != MsgSignupFieldsRequired {
			t.Errorf("expected %q, got %v", MsgSignupFieldsRequired, err)
		}
	})

	t.Run("social defaults first name", func(t *testing.T) {
		f := newFixture(t, false)
		f.backend.authRes = &model.AuthResult{UserID: "u-9", Username: "a@x.test"}
		svc := NewAuthService(f.backend, f.sessions, logging.Discard())

		sess, err := svc.SocialLogin(ctx, model.SocialProfile{Email: "a@x.test"})
		if err != nil {
			t.Fatalf("SocialLogin failed: %v", err)
		}
		if sess.DisplayName != model.DefaultDisplayName {
			t.Errorf("expected default first name, got %q", sess.DisplayName)
		}
	})

	t.Run("missing user id", func(t *testing.T) {
		f := newFixture(t, false)
		f.backend.authRes = &model.AuthResult{}
		svc := NewAuthService(f.backend, f.sessions, logging.Discard())

		_, err := svc.Signup(ctx, model.Registration{Email: "a@x.test", Username: "ada", Password: "secret1"})
		if apierror.KindOf(err) != apierror.KindApplication {
			t.Errorf("expected application error, got %v", err)
		}
		if _, err := f.sessions.UserID(ctx); err == nil {
			t.Error("expected no session to be saved")
		}
	})
}

func TestWardrobeBrowse(t *testing.T) {
	f := newFixture(t, true)
	f.backend.items = []model.Item{
		{ID: "1", Title: "Red Heels", Ownership: model.OwnershipOwn, Category: "Shoes"},
		{ID: "2", Title: "Tote", Ownership: model.OwnershipWishlist, SiteName: "Shop"},
		{ID: "3", Title: "Boots", Ownership: model.OwnershipOwn, Subcategory: "Winter"},
	}
	svc := NewWardrobeService(f.backend, f.sessions, logging.Discard())
	ctx := context.Background()

	own, err := svc.Browse(ctx, model.OwnershipUnset)
	if err != nil || len(own) != 2 {
		t.Fatalf("expected 2 owned items, got %+v (%v)", own, err)
	}
	wish, err := svc.Browse(ctx, model.OwnershipWishlist)
	if err != nil || len(wish) != 1 || wish[0].ID != "2" {
		t.Fatalf("unexpected wishlist %+v (%v)", wish, err)
	}
	if _, err := svc.Browse(ctx, "borrowed"); apierror.KindOf(err) != apierror.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
	if svc.Greeting(ctx) != "Ada" {
		t.Errorf("unexpected greeting %q", svc.Greeting(ctx))
	}

	if got := Filter(f.backend.items, "shoes"); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("unexpected category filter %+v", got)
	}
	if got := Filter(f.backend.items, " WINTER "); len(got) != 1 || got[0].ID != "3" {
		t.Errorf("unexpected subcategory filter %+v", got)
	}
	if got := Filter(f.backend.items, ""); len(got) != 3 {
		t.Errorf("expected empty query to keep all, got %d", len(got))
	}
}
