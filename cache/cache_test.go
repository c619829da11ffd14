package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteThenRead(t *testing.T) {
	c := New(WithTTL(24 * time.Hour))

	c.Write("category/children?category_id=0", `{"categories":[]}`)

	got, ok := c.Read("category/children?category_id=0")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got != `{"categories":[]}` {
		t.Errorf("value = %q, want original payload", got)
	}
	if s := c.Stats(); s.Hits != 1 || s.Misses != 0 || s.Expired != 0 || s.Invalid != 0 {
		t.Errorf("stats = %+v, want exactly one hit", s)
	}
}

func TestReadUnknownKey(t *testing.T) {
	c := New()

	if _, ok := c.Read("never-written"); ok {
		t.Fatal("expected absent for unknown key")
	}
	if s := c.Stats(); s.Misses != 1 {
		t.Errorf("misses = %d, want 1", s.Misses)
	}
}

func TestReadExpired(t *testing.T) {
	c := New(WithTTL(24 * time.Hour))

	t0 := time.Date(2021, 1, 1, 9, 30, 0, 0, time.UTC)
	c.now = func() time.Time { return t0 }
	c.Write("X", "payload")

	// Just inside the TTL window.
	c.now = func() time.Time { return t0.Add(23*time.Hour + 59*time.Minute) }
	if got, ok := c.Read("X"); !ok || got != "payload" {
		t.Fatalf("read inside TTL = (%q, %v), want original value", got, ok)
	}

	// Just past the TTL window.
	c.now = func() time.Time { return t0.Add(24*time.Hour + time.Minute) }
	if _, ok := c.Read("X"); ok {
		t.Fatal("expected absent after TTL elapsed")
	}

	if s := c.Stats(); s.Hits != 1 || s.Expired != 1 {
		t.Errorf("stats = %+v, want one hit and one expired", s)
	}
}

func TestReadInvalidTimestamp(t *testing.T) {
	c := New()
	c.entries["bad"] = Entry{Timestamp: "not-a-time", Data: "x"}
	c.entries["empty"] = Entry{Data: "y"}

	if _, ok := c.Read("bad"); ok {
		t.Fatal("expected absent for unparsable timestamp")
	}
	if _, ok := c.Read("empty"); ok {
		t.Fatal("expected absent for missing timestamp")
	}
	if s := c.Stats(); s.Invalid != 2 || s.Hits != 0 || s.Misses != 0 || s.Expired != 0 {
		t.Errorf("stats = %+v, want exactly two invalid", s)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := New(WithPath(path))
	c.Write("a", "alpha")
	c.Write("b", "beta")
	c.Save()

	fresh := New(WithPath(path))
	fresh.Load()

	for key, want := range map[string]string{"a": "alpha", "b": "beta"} {
		got, ok := fresh.Read(key)
		if !ok || got != want {
			t.Errorf("Read(%q) = (%q, %v), want %q", key, got, ok, want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	c := New(WithPath(filepath.Join(t.TempDir(), "absent.json")))
	c.Load()

	if !c.Enabled() {
		t.Error("missing cache file must not disable the cache")
	}
}

func TestLoadMalformedFileDisablesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(WithPath(path))
	c.Load()

	if c.Enabled() {
		t.Fatal("malformed cache file must disable the cache")
	}
	c.Write("k", "v")
	if _, ok := c.Read("k"); ok {
		t.Error("disabled cache must not serve reads")
	}
	c.Save()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{not json" {
		t.Error("disabled cache must not overwrite the bad file")
	}
}

func TestDisabledCache(t *testing.T) {
	c := New(WithEnabled(false))
	c.Write("k", "v")

	if _, ok := c.Read("k"); ok {
		t.Fatal("disabled cache must always read absent")
	}
	if s := c.Stats(); s != (Stats{}) {
		t.Errorf("disabled cache must not count reads, got %+v", s)
	}
}

func TestWriteReplacesEntry(t *testing.T) {
	c := New()
	c.Write("k", "old")
	c.Write("k", "new")

	got, ok := c.Read("k")
	if !ok || got != "new" {
		t.Errorf("Read = (%q, %v), want replacement value", got, ok)
	}
}

func TestPersistedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := New(WithPath(path))
	c.Write("category/series?category_id=125&limit=100", `{"count":0}`)
	c.Save()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var store map[string]Entry
	if err := json.Unmarshal(data, &store); err != nil {
		t.Fatalf("cache file is not a key to entry mapping: %v", err)
	}
	entry, ok := store["category/series?category_id=125&limit=100"]
	if !ok {
		t.Fatal("key missing from persisted store")
	}
	if _, err := time.Parse(time.RFC3339Nano, entry.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC 3339: %v", entry.Timestamp, err)
	}
	if entry.Data != `{"count":0}` {
		t.Errorf("data = %q, want verbatim payload", entry.Data)
	}
}
