package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/target/control-panel-ui/internal/adapters/devapi"
)

// Paths of the Control API endpoints served by FakeControlAPI.
const (
	TokenPath   = "/control/auth/token"
	ProfilePath = "/control/users/me"
	HaltPath    = "/control/system/override/halt"
	ResumePath  = "/control/system/override/resume"
	StatusPath  = "/control/system/status"
)

// ConfirmationCode is the halt confirmation code the fake accepts.
const ConfirmationCode = "EDWARD-ALPHA-OVERRIDE"

// AdminAccount is the canonical signed-in admin used across tests.
func AdminAccount() devapi.Account {
	return devapi.Account{
		Email:    "user@example.com",
		Password: "correct",
		Token:    "tok123",
		Profile: map[string]any{
			"id":        "1",
			"email":     "user@example.com",
			"full_name": "User One",
			"role":      "admin",
		},
	}
}

// OperatorAccount is a signed-in non-admin user.
func OperatorAccount() devapi.Account {
	return devapi.Account{
		Email:    "ops@example.com",
		Password: "hunter2",
		Token:    "tok-ops",
		Profile: map[string]any{
			"id":        "2",
			"email":     "ops@example.com",
			"full_name": "Op Erator",
			"role":      "operator",
		},
	}
}

// FakeControlAPI serves the devapi stand-in over httptest and records calls per path.
// Individual paths can be forced to fail with a status code or delayed.
type FakeControlAPI struct {
	*httptest.Server

	mu     sync.Mutex
	calls  map[string]int
	fail   map[string]fakeFailure
	delays map[string]time.Duration
}

type fakeFailure struct {
	status int
	body   string
}

// NewFakeControlAPI starts a fake Control API with the given accounts
// (AdminAccount and OperatorAccount when none are given). It is closed on test cleanup.
func NewFakeControlAPI(t testing.TB, accounts ...devapi.Account) *FakeControlAPI {
	t.Helper()
	if len(accounts) == 0 {
		accounts = []devapi.Account{AdminAccount(), OperatorAccount()}
	}
	api, err := devapi.New(devapi.Config{Accounts: accounts, ConfirmationCode: ConfirmationCode})
	if err != nil {
		t.Fatalf("fake control api: %v", err)
	}

	f := &FakeControlAPI{
		calls:  make(map[string]int),
		fail:   make(map[string]fakeFailure),
		delays: make(map[string]time.Duration),
	}
	inner := api.Handler()
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.URL.Path]++
		failure, failing := f.fail[r.URL.Path]
		delay := f.delays[r.URL.Path]
		f.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(failure.status)
			_, _ = w.Write([]byte(failure.body))
			return
		}
		inner.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

// Fail makes every request to path answer status with body.
func (f *FakeControlAPI) Fail(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[path] = fakeFailure{status: status, body: body}
}

// Delay holds every request to path for d before answering.
func (f *FakeControlAPI) Delay(path string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[path] = d
}

// Calls returns how many requests reached path.
func (f *FakeControlAPI) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

// TotalCalls returns how many requests reached the fake on any path.
func (f *FakeControlAPI) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}
