package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymbro/gymbro-api/internal/domain/entity"
)

// recordingStore records every call in order and can be told to fail the
// nth upload or any destroy.
type recordingStore struct {
	ops           []string
	uploads       int
	failUploadAt  int // 1-based; 0 = never
	failDestroy   bool
	destroyedIDs  []string
	uploadedSizes []int
}

func (s *recordingStore) Upload(_ context.Context, data []byte, contentType string) (entity.ImageAsset, error) {
	s.uploads++
	if s.failUploadAt > 0 && s.uploads == s.failUploadAt {
		s.ops = append(s.ops, "upload:fail")
		return entity.ImageAsset{}, errors.New("remote store unavailable")
	}
	id := fmt.Sprintf("asset-%d", s.uploads)
	s.ops = append(s.ops, "upload:"+id)
	s.uploadedSizes = append(s.uploadedSizes, len(data))
	return entity.ImageAsset{PublicID: id, URL: "https://cdn.example.com/" + id}, nil
}

func (s *recordingStore) Destroy(_ context.Context, publicID string) error {
	s.ops = append(s.ops, "destroy:"+publicID)
	s.destroyedIDs = append(s.destroyedIDs, publicID)
	if s.failDestroy {
		return errors.New("destroy failed")
	}
	return nil
}

// testImage returns PNG bytes for a wide solid image so the thumbnail resize
// has something to shrink.
func testImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestVariants(t *testing.T) {
	raw := testImage(t, 320, 240)
	p := NewPipeline(&recordingStore{}, nil, 80)

	original, thumbnail, err := p.Variants(raw)
	require.NoError(t, err)

	assert.Equal(t, raw, original, "original bytes must pass through unchanged")

	thumb, err := imaging.Decode(bytes.NewReader(thumbnail))
	require.NoError(t, err)
	assert.Equal(t, 80, thumb.Bounds().Dx())
	assert.Equal(t, 60, thumb.Bounds().Dy(), "aspect ratio preserved")
}

func TestVariantsRejectsGarbage(t *testing.T) {
	p := NewPipeline(&recordingStore{}, nil, 80)
	_, _, err := p.Variants([]byte("not an image"))
	assert.Error(t, err)
}

func TestUploadProducesTwoDistinctAssets(t *testing.T) {
	store := &recordingStore{}
	p := NewPipeline(store, nil, 80)

	set, err := p.Upload(context.Background(), testImage(t, 160, 160), "image/png")
	require.NoError(t, err)

	assert.NotEmpty(t, set.Original.PublicID)
	assert.NotEmpty(t, set.Thumbnail.PublicID)
	assert.NotEqual(t, set.Original.PublicID, set.Thumbnail.PublicID)
	assert.NotEmpty(t, set.Original.URL)
	assert.NotEmpty(t, set.Thumbnail.URL)
	assert.Equal(t, 2, store.uploads)
	assert.Empty(t, store.destroyedIDs)
}

func TestUploadThumbnailFailure(t *testing.T) {
	store := &recordingStore{failUploadAt: 2}
	p := NewPipeline(store, nil, 80)

	_, err := p.Upload(context.Background(), testImage(t, 160, 160), "image/png")
	assert.ErrorIs(t, err, ErrUpload)
	// The orphaned first upload is accepted; no destroy is attempted.
	assert.Empty(t, store.destroyedIDs)
}

func TestReplaceUploadsBeforeDestroy(t *testing.T) {
	store := &recordingStore{}
	p := NewPipeline(store, nil, 80)
	old := entity.ImageSet{
		Original:  entity.ImageAsset{PublicID: "old-original"},
		Thumbnail: entity.ImageAsset{PublicID: "old-thumbnail"},
	}

	set, err := p.Replace(context.Background(), old, testImage(t, 160, 160), "image/png")
	require.NoError(t, err)
	assert.False(t, set.Empty())

	require.Len(t, store.ops, 4)
	assert.Equal(t, "upload:asset-1", store.ops[0])
	assert.Equal(t, "upload:asset-2", store.ops[1])
	assert.Equal(t, "destroy:old-original", store.ops[2])
	assert.Equal(t, "destroy:old-thumbnail", store.ops[3])
}

func TestReplaceFailedUploadLeavesOldAssets(t *testing.T) {
	store := &recordingStore{failUploadAt: 2}
	p := NewPipeline(store, nil, 80)
	old := entity.ImageSet{
		Original:  entity.ImageAsset{PublicID: "old-original"},
		Thumbnail: entity.ImageAsset{PublicID: "old-thumbnail"},
	}

	_, err := p.Replace(context.Background(), old, testImage(t, 160, 160), "image/png")
	assert.ErrorIs(t, err, ErrUpload)
	assert.Empty(t, store.destroyedIDs, "old assets must not be destroyed when the new upload fails")
}

func TestReplaceDestroyFailureDoesNotFail(t *testing.T) {
	store := &recordingStore{failDestroy: true}
	p := NewPipeline(store, nil, 80)
	old := entity.ImageSet{
		Original:  entity.ImageAsset{PublicID: "old-original"},
		Thumbnail: entity.ImageAsset{PublicID: "old-thumbnail"},
	}

	set, err := p.Replace(context.Background(), old, testImage(t, 160, 160), "image/png")
	require.NoError(t, err, "delete failures are swallowed")
	assert.False(t, set.Empty())
	assert.Equal(t, []string{"old-original", "old-thumbnail"}, store.destroyedIDs)
}

func TestRemoveIssuesBothDestroys(t *testing.T) {
	store := &recordingStore{failDestroy: true}
	p := NewPipeline(store, nil, 80)

	p.Remove(context.Background(), entity.ImageSet{
		Original:  entity.ImageAsset{PublicID: "a"},
		Thumbnail: entity.ImageAsset{PublicID: "b"},
	})

	assert.Equal(t, []string{"a", "b"}, store.destroyedIDs, "both destroys issued regardless of outcome")
}

func TestRemoveEmptySetIsNoop(t *testing.T) {
	store := &recordingStore{}
	p := NewPipeline(store, nil, 80)
	p.Remove(context.Background(), entity.ImageSet{})
	assert.Empty(t, store.ops)
}
