package uploader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/disintegration/gift"
	"github.com/google/uuid"
)

const (
	thumbnailWidth = 400
	jpegQuality    = 90
	writeTimeout   = time.Second * 50
)

// Result describes one stored upload: the minted provider asset id, the
// public URLs, and the decoded dimensions.
type Result struct {
	AssetID      string `json:"asset_id"`
	SecureURL    string `json:"secure_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// Uploader stores an original image and its gallery thumbnail.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (*Result, error)
}

// GCSUploader writes uploads to a Cloud Storage bucket: the original
// under images/, a resized thumbnail under thumbs/.
type GCSUploader struct {
	cl         *storage.Client
	bucketName string
}

func NewGCSUploader(ctx context.Context, bucketName string) (*GCSUploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &GCSUploader{cl: client, bucketName: bucketName}, nil
}

func (u *GCSUploader) Upload(ctx context.Context, file io.Reader, filename string) (*Result, error) {
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding upload: %w", err)
	}
	bounds := img.Bounds()

	assetID := uuid.NewString()
	originalPath := fmt.Sprintf("images/%s_%s", assetID, filename)
	thumbPath := fmt.Sprintf("thumbs/%s.jpg", assetID)

	if err := u.write(ctx, originalPath, raw); err != nil {
		return nil, err
	}

	thumb, err := renderThumbnail(img)
	if err != nil {
		return nil, err
	}
	if err := u.write(ctx, thumbPath, thumb); err != nil {
		return nil, err
	}

	return &Result{
		AssetID:      assetID,
		SecureURL:    u.publicURL(originalPath),
		ThumbnailURL: u.publicURL(thumbPath),
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
	}, nil
}

func (u *GCSUploader) write(ctx context.Context, objectPath string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	wc := u.cl.Bucket(u.bucketName).Object(objectPath).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", objectPath, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", objectPath, err)
	}
	return nil
}

func (u *GCSUploader) publicURL(objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucketName, objectPath)
}

// renderThumbnail scales the image to the gallery width, preserving the
// aspect ratio.
func renderThumbnail(src image.Image) ([]byte, error) {
	g := gift.New(gift.Resize(thumbnailWidth, 0, gift.LanczosResampling))
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
