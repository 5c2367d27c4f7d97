package dashboard

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/harborline/ledgerdeck/internal/ledger"
)

const sessionCookieName = "ld_session"

// session holds data for an authenticated dashboard session. The expiry
// mirrors the ledger token expiry so a session never outlives its token.
type session struct {
	token     string
	party     string
	ledgerID  string
	packageID string
	expiresAt time.Time
}

// sessionStore is a thread-safe in-memory session store.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// newSessionStore creates an empty session store.
func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

// create stores a new session from minted credentials and returns its ID.
func (s *sessionStore) create(creds ledger.Credentials, packageID string) string {
	id := randomHex(16)
	s.mu.Lock()
	s.sessions[id] = &session{
		token:     creds.Token,
		party:     creds.Party,
		ledgerID:  creds.LedgerID,
		packageID: packageID,
		expiresAt: creds.ExpiresAt,
	}
	s.mu.Unlock()
	return id
}

// get returns a snapshot of a session by ID, or nil if missing or expired.
// Returning a copy keeps readers off the stored value, which setPackageID
// mutates under the store mutex.
func (s *sessionStore) get(id string) *session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	var snapshot session
	if ok {
		snapshot = *sess
	}
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	if time.Now().After(snapshot.expiresAt) {
		s.delete(id)
		return nil
	}
	return &snapshot
}

// delete removes a session by ID.
func (s *sessionStore) delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// setPackageID records the resolved package ID on an existing session.
func (s *sessionStore) setPackageID(id, packageID string) {
	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok {
		sess.packageID = packageID
	}
	s.mu.Unlock()
}

// setSessionCookie writes the session cookie to the response.
func setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionFromRequest reads the session cookie and looks up the session.
func sessionFromRequest(r *http.Request, store *sessionStore) (string, *session) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", nil
	}
	return cookie.Value, store.get(cookie.Value)
}

// randomHex generates a cryptographically random hex string of n bytes.
func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
