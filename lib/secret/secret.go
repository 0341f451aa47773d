/*
Copyright 2026 RustConn Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package secret provides a capability type for plaintext secrets that
// must never leak into Debug output, structured logs, or serialized
// snapshots unless explicitly unwrapped.
package secret

import (
	"crypto/subtle"
	"runtime"
)

// redacted is printed in place of any secret value by every formatting and
// serialization path that does not go through Reveal.
const redacted = "[REDACTED]"

// Text holds a plaintext secret (password, key passphrase, protected
// custom-property value). The zero value is an empty secret.
//
// Text is intentionally not comparable with ==; use Equal for constant-time
// comparison. Text must always be passed by value or via *Text; copying a
// *Text does not duplicate the underlying bytes, so Destroy on one copy
// invalidates all of them.
type Text struct {
	b []byte
}

// New wraps b as a secret. The caller must not retain b; New takes
// ownership of the backing array.
func New(b []byte) *Text {
	if len(b) == 0 {
		return &Text{}
	}
	t := &Text{b: b}
	runtime.SetFinalizer(t, func(t *Text) { t.Destroy() })
	return t
}

// NewString wraps s as a secret.
func NewString(s string) *Text {
	return New([]byte(s))
}

// Reveal returns the plaintext. Every caller of Reveal is a point where the
// secret leaves the capability boundary; callers must not log or persist
// the result outside of the encrypted settings file.
func (t *Text) Reveal() string {
	if t == nil {
		return ""
	}
	return string(t.b)
}

// IsEmpty reports whether the secret holds no bytes.
func (t *Text) IsEmpty() bool {
	return t == nil || len(t.b) == 0
}

// Equal performs a constant-time comparison against another secret, so
// that credential-matching logic does not leak timing information about
// the stored plaintext.
func (t *Text) Equal(other *Text) bool {
	a, b := t.bytes(), other.bytes()
	if len(a) != len(b) {
		// still compare to avoid a short-circuit timing signal based on length
		subtle.ConstantTimeCompare(a, a)
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

func (t *Text) bytes() []byte {
	if t == nil {
		return nil
	}
	return t.b
}

// Destroy overwrites the backing bytes with zeroes. It is safe to call
// Destroy more than once and on a nil receiver. Destroy is best-effort:
// Go does not guarantee the compiler won't have copied the backing array
// elsewhere (e.g. during a GC move), but it closes the common case of a
// secret outliving its useful lifetime in memory.
func (t *Text) Destroy() {
	if t == nil {
		return
	}
	for i := range t.b {
		t.b[i] = 0
	}
	t.b = nil
	runtime.SetFinalizer(t, nil)
}

// String implements fmt.Stringer. It never prints the plaintext, so that
// %v/%s formatting of a struct embedding a *Text is always safe to log.
func (t *Text) String() string {
	if t.IsEmpty() {
		return ""
	}
	return redacted
}

// GoString implements fmt.GoStringer so %#v formatting is also redacted.
func (t *Text) GoString() string {
	return t.String()
}

// MarshalJSON always redacts the secret. Code that must persist the
// plaintext (the encrypted store) calls Reveal and serializes its own
// record type instead.
func (t *Text) MarshalJSON() ([]byte, error) {
	if t.IsEmpty() {
		return []byte(`""`), nil
	}
	return []byte(`"` + redacted + `"`), nil
}

// UnmarshalJSON refuses to round-trip a redacted value back into plaintext;
// callers that need to persist secrets plaintext must use the encrypted
// settings store's own codec, not encoding/json on the domain type.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text{}
	return nil
}
