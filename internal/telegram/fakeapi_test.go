// ABOUTME: In-process fake of the Bot API for transport tests
// ABOUTME: Records form-encoded calls and replies with canned JSON

package telegram

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const testToken = "123:test-token"

type apiCall struct {
	Method string
	Form   url.Values
}

type fakeAPI struct {
	server *httptest.Server

	mu    sync.Mutex
	calls []apiCall
	// fail maps a method to an error description returned with ok=false
	fail map[string]string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{fail: map[string]string{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

// endpoint returns a tgbotapi endpoint format string pointing at the fake.
func (f *fakeAPI) endpoint() string {
	return f.server.URL + "/bot%s/%s"
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	prefix := "/bot" + testToken + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.Error(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	method := strings.TrimPrefix(r.URL.Path, prefix)
	_ = r.ParseForm()

	f.mu.Lock()
	if method != "getMe" {
		f.calls = append(f.calls, apiCall{Method: method, Form: r.PostForm})
	}
	failure := f.fail[method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failure != "" {
		fmt.Fprintf(w, `{"ok":false,"error_code":400,"description":%q}`, failure)
		return
	}

	switch method {
	case "getMe":
		fmt.Fprint(w, `{"ok":true,"result":{"id":99,"is_bot":true,"first_name":"Relay","username":"relay_bot"}}`)
	case "sendMessage", "editMessageText":
		fmt.Fprintf(w, `{"ok":true,"result":{"message_id":5,"date":0,"chat":{"id":%s,"type":"private"},"text":"ok"}}`,
			r.PostForm.Get("chat_id"))
	case "answerCallbackQuery":
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	case "getUpdates":
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	default:
		fmt.Fprintf(w, `{"ok":false,"error_code":404,"description":"unknown method %s"}`, method)
	}
}

func (f *fakeAPI) callsTo(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func newTestBot(t *testing.T, f *fakeAPI) *Bot {
	t.Helper()
	b, err := New(Options{Token: testToken, APIEndpoint: f.endpoint()}, nil)
	require.NoError(t, err)
	return b
}
