package doccache

import (
	"testing"
	"time"

	"resumelift/internal/errors"
	"resumelift/internal/types"
)

func testDoc(text string) *types.ExtractedDocument {
	return &types.ExtractedDocument{Text: text}
}

func TestPutGetRoundTrip(t *testing.T) {
	c := New(time.Minute, 0, nil)
	defer c.Close()

	id := c.Put(testDoc("resume text"))
	if id == "" {
		t.Fatal("Put returned empty session ID")
	}

	doc, err := c.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if doc.Text != "resume text" {
		t.Errorf("Text = %q", doc.Text)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	c := New(time.Minute, 0, nil)
	defer c.Close()

	idA := c.Put(testDoc("user A resume"))
	idB := c.Put(testDoc("user B resume"))

	if idA == idB {
		t.Fatal("two sessions received the same ID")
	}

	docA, err := c.Get(idA)
	if err != nil {
		t.Fatalf("Get(A) error = %v", err)
	}
	docB, err := c.Get(idB)
	if err != nil {
		t.Fatalf("Get(B) error = %v", err)
	}
	if docA.Text != "user A resume" || docB.Text != "user B resume" {
		t.Error("sessions cross-contaminated")
	}
}

func TestUnknownSession(t *testing.T) {
	c := New(time.Minute, 0, nil)
	defer c.Close()

	_, err := c.Get("no-such-session")
	if err == nil {
		t.Fatal("expected error for unknown session")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeSessionNotFound {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExpiredSession(t *testing.T) {
	c := New(10*time.Millisecond, 0, nil)
	defer c.Close()

	id := c.Put(testDoc("soon expired"))
	time.Sleep(25 * time.Millisecond)

	if _, err := c.Get(id); err == nil {
		t.Error("expected error for expired session")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not dropped on access, Len = %d", c.Len())
	}
}

func TestJanitorEvicts(t *testing.T) {
	c := New(5*time.Millisecond, 10*time.Millisecond, nil)
	defer c.Close()

	c.Put(testDoc("a"))
	c.Put(testDoc("b"))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Len() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("janitor did not evict expired entries, Len = %d", c.Len())
}

func TestDelete(t *testing.T) {
	c := New(time.Minute, 0, nil)
	defer c.Close()

	id := c.Put(testDoc("to delete"))
	c.Delete(id)

	if _, err := c.Get(id); err == nil {
		t.Error("expected error after delete")
	}
	// Deleting again is a no-op
	c.Delete(id)
}
