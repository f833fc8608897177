package ingestion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash(t *testing.T) {
	hash1 := ContentHash("test content")
	hash2 := ContentHash("different content")

	assert.Len(t, hash1, 64)
	assert.NotEqual(t, hash1, hash2)
	assert.Equal(t, hash1, ContentHash("test content"))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHash(""))
}

func TestNewMetadata(t *testing.T) {
	before := time.Now().UTC()
	metadata := NewMetadata("Go développeur", "https://example.com/job")

	assert.Equal(t, SourceURL, metadata.Source)
	assert.Equal(t, "https://example.com/job", metadata.URL)
	assert.Equal(t, ContentHash("Go développeur"), metadata.Hash)
	assert.Equal(t, 14, metadata.Chars)
	assert.False(t, metadata.IngestedAt.Before(before))
	assert.False(t, metadata.FromCache)
}

func TestNewMetadata_EmptyURL(t *testing.T) {
	metadata := NewMetadata("test content", "")

	assert.Equal(t, SourceText, metadata.Source)
	assert.Empty(t, metadata.URL)
	assert.NotEmpty(t, metadata.Hash)
}

func TestMetadata_JSON(t *testing.T) {
	data, err := json.Marshal(NewMetadata("text", ""))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "text", decoded["source"])
	assert.NotContains(t, decoded, "url")
	assert.Equal(t, false, decoded["from_cache"])
}
