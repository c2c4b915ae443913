package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// sessionStore persists the cookies a server handed this client so the next
// invocation starts with the same session. When a key is configured the
// file is age-encrypted with a scrypt passphrase and armored, since session
// cookies are credentials in practice.
type sessionStore struct {
	path string
	key  string
}

type sessionState struct {
	SavedAt time.Time       `json:"saved_at"`
	Cookies []sessionCookie `json:"cookies"`
}

type sessionCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Domain  string    `json:"domain,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
	Secure  bool      `json:"secure,omitempty"`
}

func newSessionStore(path, key string) *sessionStore {
	return &sessionStore{path: expandUser(path), key: key}
}

// restore loads the persisted cookies into the jar. A missing file is a
// fresh session, not an error.
func (s *sessionStore) restore(jar http.CookieJar, baseURL string) error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	data, err := s.decrypt(raw)
	if err != nil {
		return err
	}

	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("session file is not valid: %w", err)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return err
	}

	cookies := make([]*http.Cookie, 0, len(state.Cookies))
	for _, c := range state.Cookies {
		cookies = append(cookies, &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
			Secure:  c.Secure,
		})
	}
	jar.SetCookies(u, cookies)
	return nil
}

// persist writes the current cookies back to disk with owner-only
// permissions.
func (s *sessionStore) persist(cookies []*http.Cookie) error {
	state := sessionState{SavedAt: time.Now().UTC()}
	for _, c := range cookies {
		state.Cookies = append(state.Cookies, sessionCookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
			Secure:  c.Secure,
		})
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if s.key != "" {
		data, err = s.encrypt(data)
		if err != nil {
			return err
		}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating session directory: %w", err)
		}
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *sessionStore) encrypt(data []byte) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(s.key)
	if err != nil {
		return nil, fmt.Errorf("creating age recipient: %w", err)
	}

	var buf bytes.Buffer
	armorWriter := armor.NewWriter(&buf)
	w, err := age.Encrypt(armorWriter, recipient)
	if err != nil {
		return nil, fmt.Errorf("encrypting session: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("writing encrypted session: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encrypted session: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalizing armor: %w", err)
	}
	return buf.Bytes(), nil
}

// decrypt handles both armored encrypted files and plain JSON ones, so
// turning encryption on or off between runs never strands an old session.
func (s *sessionStore) decrypt(raw []byte) ([]byte, error) {
	if !bytes.HasPrefix(raw, []byte(armor.Header)) {
		return raw, nil
	}
	if s.key == "" {
		return nil, fmt.Errorf("session file %s is encrypted but no session key is set", s.path)
	}

	identity, err := age.NewScryptIdentity(s.key)
	if err != nil {
		return nil, fmt.Errorf("creating age identity: %w", err)
	}

	reader, err := age.Decrypt(armor.NewReader(bytes.NewReader(raw)), identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting session: %w", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted session: %w", err)
	}
	return data, nil
}

// expandUser resolves a leading ~/ against the home directory, matching how
// the original client treated its session_file setting.
func expandUser(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
