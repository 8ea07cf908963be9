// SPDX-License-Identifier: MPL-2.0

package cache

// Memory is an in-memory Cache used by tests as a substitute for the
// disk-backed store.
type Memory struct {
	entries map[string][]byte
	// writes counts the Put calls that actually stored bytes, letting tests
	// assert deduplication.
	writes int
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

// Path returns a synthetic location for digest.
func (m *Memory) Path(digest string) string {
	return "mem://" + digest
}

// Put stores data under its content digest.
func (m *Memory) Put(data []byte) (string, string, error) {
	digest := Digest(data)
	if !m.Verify(digest) {
		m.entries[digest] = append([]byte(nil), data...)
		m.writes++
	}
	return digest, m.Path(digest), nil
}

// Get returns the stored bytes for digest.
func (m *Memory) Get(digest string) ([]byte, bool, error) {
	data, ok := m.entries[digest]
	if !ok || Digest(data) != digest {
		return nil, false, nil
	}
	return data, true, nil
}

// Verify reports whether a valid entry for digest exists.
func (m *Memory) Verify(digest string) bool {
	data, ok := m.entries[digest]
	return ok && Digest(data) == digest
}

// Corrupt overwrites the stored bytes for digest without changing its key,
// simulating on-disk corruption.
func (m *Memory) Corrupt(digest string, data []byte) {
	m.entries[digest] = data
}

// Writes returns how many Put calls performed an actual store.
func (m *Memory) Writes() int {
	return m.writes
}
