package cart

import (
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionName is the cookie session shared with the CSRF middleware
const SessionName = "session"

// SessionBackend persists the cart in the signed cookie session of one request
type SessionBackend struct {
	session *sessions.Session
	r       *http.Request
	w       http.ResponseWriter
}

// NewSessionBackend loads the request's session. A cookie that fails to
// decode (rotated secret, tampered value) yields the fresh session the store
// returns with the error, shared with anything else reading it this request.
func NewSessionBackend(store sessions.Store, w http.ResponseWriter, r *http.Request) *SessionBackend {
	session, _ := store.Get(r, SessionName)
	if session == nil {
		session = sessions.NewSession(store, SessionName)
	}
	return &SessionBackend{session: session, r: r, w: w}
}

// ForRequest builds a cart store bound to the request's cookie session
func ForRequest(store sessions.Store, w http.ResponseWriter, r *http.Request) *Store {
	return NewStore(NewSessionBackend(store, w, r))
}

func (b *SessionBackend) Load(key string) (string, bool) {
	value, ok := b.session.Values[key].(string)
	return value, ok
}

func (b *SessionBackend) Save(key, value string) error {
	b.session.Values[key] = value
	return b.session.Save(b.r, b.w)
}

func (b *SessionBackend) Delete(key string) error {
	delete(b.session.Values, key)
	return b.session.Save(b.r, b.w)
}

// MemoryBackend keeps values in process memory
type MemoryBackend struct {
	values map[string]string
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (b *MemoryBackend) Load(key string) (string, bool) {
	value, ok := b.values[key]
	return value, ok
}

func (b *MemoryBackend) Save(key, value string) error {
	b.values[key] = value
	return nil
}

func (b *MemoryBackend) Delete(key string) error {
	delete(b.values, key)
	return nil
}
