package cache

import (
	"testing"
	"time"

	"github.com/mkellner/newsdesk/internal/models"
)

func sample(id string) []models.Article {
	return []models.Article{{ID: id, Title: "Title " + id, Source: models.SourceNewsAPI, Category: "general"}}
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set("query1", sample("a"))

	got, ok := c.Get("query1")
	if !ok {
		t.Fatal("Get() returned false for existing key")
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Get() = %v", got)
	}
}

func TestMemoryCache_Get_NotFound(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	got, ok := c.Get("nonexistent")
	if ok {
		t.Error("Get() should return false for non-existent key")
	}
	if got != nil {
		t.Errorf("Get() should return nil for non-existent key, got %v", got)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.SetWithTTL("query1", sample("a"), -time.Second)

	if _, ok := c.Get("query1"); ok {
		t.Error("Get() should return false for expired entry")
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set("query1", sample("a"))
	c.Delete("query1")

	if _, ok := c.Get("query1"); ok {
		t.Error("Get() should return false after Delete")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set("query1", sample("a"))
	c.Set("query2", sample("b"))
	c.Clear()

	if _, ok := c.Get("query1"); ok {
		t.Error("query1 should be gone after Clear")
	}
	if _, ok := c.Get("query2"); ok {
		t.Error("query2 should be gone after Clear")
	}
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.SetWithTTL("stale", sample("a"), -time.Second)
	c.Set("fresh", sample("b"))

	c.removeExpired()

	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.items["stale"]; ok {
		t.Error("expired entry should be removed")
	}
	if _, ok := c.items["fresh"]; !ok {
		t.Error("fresh entry should survive")
	}
}
