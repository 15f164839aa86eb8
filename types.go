package dashboard

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

// certTimeLayout is the layout produced by time.Time.String on the server.
const certTimeLayout = "2006-01-02 15:04:05.999999999 -0700 MST"

// Certificate describes the leaf TLS certificate served for a backend.
type Certificate struct {
	Issuer     string   `json:"issuer"`
	Subject    string   `json:"subject"`
	NotBefore  string   `json:"notBefore"`
	NotAfter   string   `json:"notAfter"`
	CommonName string   `json:"commonName"`
	DNSNames   []string `json:"dnsNames"`
}

// ValidAt reports whether t falls inside the certificate validity window.
// It returns false when either bound cannot be parsed.
func (c *Certificate) ValidAt(t time.Time) bool {
	notBefore, err := parseCertTime(c.NotBefore)
	if err != nil {
		return false
	}
	notAfter, err := parseCertTime(c.NotAfter)
	if err != nil {
		return false
	}
	return !t.Before(notBefore) && !t.After(notAfter)
}

func parseCertTime(s string) (time.Time, error) {
	if t, err := time.Parse(certTimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Backend is a proxied server entry managed by the load balancer.
type Backend struct {
	// Name is the host name the proxy routes from. The server keys its
	// configuration by it; it is filled from the key when the server
	// returns the name-keyed form.
	Name string `json:"name,omitempty"`

	// To is the URL requests are forwarded to.
	To string `json:"to"`

	// ForceSSL redirects plain HTTP requests to HTTPS.
	ForceSSL bool `json:"force_ssl"`

	// Enabled toggles the backend. Nil means enabled.
	Enabled *bool `json:"enabled,omitempty"`
}

// IsEnabled reports whether the backend accepts traffic.
func (b Backend) IsEnabled() bool {
	return b.Enabled == nil || *b.Enabled
}

// clone returns a copy that shares no memory with b.
func (b Backend) clone() Backend {
	if b.Enabled != nil {
		enabled := *b.Enabled
		b.Enabled = &enabled
	}
	return b
}

// Bool returns a pointer to v, for use with Backend.Enabled.
func Bool(v bool) *bool {
	return &v
}

// backendList decodes either a JSON array of backends or the name-keyed
// object the proxy serves from /servers.
type backendList []Backend

func (l *backendList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = backendList{}
		return nil
	}

	if trimmed[0] != '{' {
		var list []Backend
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}

	var byName map[string]*Backend
	if err := json.Unmarshal(trimmed, &byName); err != nil {
		return err
	}
	list := make([]Backend, 0, len(byName))
	for name, b := range byName {
		// A key with no body still names a backend.
		var entry Backend
		if b != nil {
			entry = *b
		}
		if entry.Name == "" {
			entry.Name = name
		}
		list = append(list, entry)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	*l = list
	return nil
}

// Hit is one statistics sample recorded by the proxy for a backend.
//
// The sample is kept verbatim: encoding a decoded Hit yields the original
// JSON. When the sample is an object, Path and Method are extracted from it.
type Hit struct {
	Path   string
	Method string

	raw json.RawMessage
}

// Raw returns the JSON the hit was decoded from.
func (h Hit) Raw() json.RawMessage {
	return h.raw
}

func (h *Hit) UnmarshalJSON(data []byte) error {
	h.raw = append(json.RawMessage(nil), data...)
	h.Path, h.Method = "", ""

	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	var fields struct {
		Path   string `json:"path"`
		Method string `json:"method"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	h.Path, h.Method = fields.Path, fields.Method
	return nil
}

func (h Hit) MarshalJSON() ([]byte, error) {
	if h.raw != nil {
		return h.raw, nil
	}
	return json.Marshal(struct {
		Path   string `json:"path"`
		Method string `json:"method"`
	}{h.Path, h.Method})
}

// Change is published on the global event stream after a backend update.
type Change struct {
	Name    string  `json:"name"`
	Backend Backend `json:"backend"`
}
