package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTranslationRecordJSON(t *testing.T) {
	rec := TranslationRecord{
		ID:             "rec-1",
		UserID:         "user-1",
		Text:           "Bonjour",
		TranslatedText: "Hello",
		Source:         "fr",
		Target:         "en",
		CreatedAt:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"id", "userId", "text", "translatedText", "source", "target", "createdAt", "timestamp"} {
		if _, ok := got[key]; !ok {
			t.Errorf("expected key %q in %s", key, data)
		}
	}
	if ts := got["timestamp"]; ts != float64(1704164645000) {
		t.Errorf("timestamp = %v, want unix millis", ts)
	}
}

func TestUserPublicHidesHash(t *testing.T) {
	u := User{ID: "u1", Username: "alice", PasswordHash: "$2a$10$secret"}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("password hash leaked: %s", data)
	}

	pub := u.Public()
	if pub.ID != "u1" || pub.Username != "alice" {
		t.Errorf("unexpected public user %+v", pub)
	}
}
