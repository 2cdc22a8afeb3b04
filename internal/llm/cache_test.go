package llm

import (
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/hscode/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestPredictionCache(t *testing.T) {
	prediction := model.Prediction{
		Candidates: []model.ClassificationRecord{{Code: "8415.10", Description: "AC", Reasoning: "r"}},
		Clarification: &model.ClarificationRequest{
			Question: "Material?",
			Options:  []string{"Metal", "Plastic"},
		},
	}

	t.Run("basic operations", func(t *testing.T) {
		cache := newPredictionCache(5 * time.Minute)

		_, found := cache.get("non-existent")
		assert.False(t, found)

		cache.set("key1", prediction)
		retrieved, found := cache.get("key1")
		assert.True(t, found)
		assert.Equal(t, prediction, retrieved)
		assert.Equal(t, 1, cache.size())
	})

	t.Run("returns copies", func(t *testing.T) {
		cache := newPredictionCache(5 * time.Minute)
		cache.set("key1", prediction)

		first, _ := cache.get("key1")
		first.Candidates[0].Code = "changed"
		first.Clarification.Options[0] = "changed"

		second, _ := cache.get("key1")
		assert.Equal(t, "8415.10", second.Candidates[0].Code)
		assert.Equal(t, "Metal", second.Clarification.Options[0])
	})

	t.Run("expiration", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		cache := newPredictionCache(time.Minute)
		cache.now = func() time.Time { return now }

		cache.set("key1", prediction)
		now = now.Add(2 * time.Minute)

		_, found := cache.get("key1")
		assert.False(t, found)
		assert.Equal(t, 0, cache.size())
	})

	t.Run("disabled", func(t *testing.T) {
		cache := newPredictionCache(-1)
		cache.set("key1", prediction)
		_, found := cache.get("key1")
		assert.False(t, found)
	})

	t.Run("evicts when full", func(t *testing.T) {
		cache := newPredictionCache(time.Minute)
		cache.maxEntries = 3
		for i := 0; i < 5; i++ {
			cache.set(fmt.Sprintf("key%d", i), prediction)
		}
		assert.Equal(t, 3, cache.size())
	})
}

func TestCacheKeyIncludesLanguage(t *testing.T) {
	img := model.Image{MediaType: model.MediaTypePNG, Data: []byte{1, 2, 3}}
	assert.NotEqual(t, cacheKey(img, model.LanguageEnglish), cacheKey(img, model.LanguageIndonesian))
}
