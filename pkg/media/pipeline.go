package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/gymbro/gymbro-api/internal/domain/entity"
)

// ErrUpload is returned when pushing a variant to remote storage fails.
// Destroy failures are never surfaced through the pipeline, only logged.
var ErrUpload = errors.New("media upload failed")

// Store is the remote asset store contract. Upload returns a stable public
// id plus a retrieval URL; Destroy is best-effort by contract.
type Store interface {
	Upload(ctx context.Context, data []byte, contentType string) (entity.ImageAsset, error)
	Destroy(ctx context.Context, publicID string) error
}

// Pipeline derives the two image variants of a product and keeps their
// remote copies in step with the document state.
type Pipeline struct {
	store      Store
	logger     *logrus.Logger
	thumbWidth int
}

func NewPipeline(store Store, logger *logrus.Logger, thumbWidth int) *Pipeline {
	if thumbWidth <= 0 {
		thumbWidth = 80
	}
	return &Pipeline{store: store, logger: logger, thumbWidth: thumbWidth}
}

// Variants returns the original bytes unchanged and a fixed-width thumbnail
// derived from them. Deterministic for identical input and width.
func (p *Pipeline) Variants(raw []byte) (original, thumbnail []byte, err error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("decode image: %w", err)
	}
	thumb := imaging.Resize(img, p.thumbWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return nil, nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return raw, buf.Bytes(), nil
}

// Upload derives both variants and uploads them independently. If the
// thumbnail upload fails after the original succeeded, the original is left
// orphaned in remote storage; that is logged and the call fails.
func (p *Pipeline) Upload(ctx context.Context, raw []byte, contentType string) (entity.ImageSet, error) {
	original, thumbnail, err := p.Variants(raw)
	if err != nil {
		return entity.ImageSet{}, err
	}

	origAsset, err := p.store.Upload(ctx, original, contentType)
	if err != nil {
		p.warn(err, logrus.Fields{"variant": "original"}, "upload failed")
		return entity.ImageSet{}, ErrUpload
	}
	thumbAsset, err := p.store.Upload(ctx, thumbnail, "image/jpeg")
	if err != nil {
		p.warn(err, logrus.Fields{"variant": "thumbnail", "orphaned": origAsset.PublicID}, "upload failed, original left orphaned")
		return entity.ImageSet{}, ErrUpload
	}

	return entity.ImageSet{Original: origAsset, Thumbnail: thumbAsset}, nil
}

// Replace uploads the new variants first and deletes the old assets only
// after both new uploads succeeded, so the product is never left without a
// valid image set. Old assets may survive a failed delete; that is accepted
// and logged.
func (p *Pipeline) Replace(ctx context.Context, old entity.ImageSet, raw []byte, contentType string) (entity.ImageSet, error) {
	set, err := p.Upload(ctx, raw, contentType)
	if err != nil {
		return entity.ImageSet{}, err
	}
	p.Remove(ctx, old)
	return set, nil
}

// Remove issues a destroy for both variants regardless of either outcome.
func (p *Pipeline) Remove(ctx context.Context, set entity.ImageSet) {
	if set.Empty() {
		return
	}
	if err := p.store.Destroy(ctx, set.Original.PublicID); err != nil {
		p.warn(err, logrus.Fields{"public_id": set.Original.PublicID}, "destroy failed")
	}
	if err := p.store.Destroy(ctx, set.Thumbnail.PublicID); err != nil {
		p.warn(err, logrus.Fields{"public_id": set.Thumbnail.PublicID}, "destroy failed")
	}
}

func (p *Pipeline) warn(err error, fields logrus.Fields, msg string) {
	if p.logger == nil {
		return
	}
	p.logger.WithError(err).WithFields(fields).Warn(msg)
}
