// Package oss is the upload collaborator: it moves local media files into
// object storage and returns their public URL, probing video duration on the
// way. Services depend on the Uploader interface only.
package oss

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// UploadResult carries the stored object's URL plus, for videos, the probed
// duration in seconds.
type UploadResult struct {
	URL      string
	Duration float64
}

type Uploader interface {
	UploadVideo(ctx context.Context, localPath string) (*UploadResult, error)
	UploadImage(ctx context.Context, localPath string) (string, error)
}

const (
	videoBucket = "video"
	imageBucket = "picture"
	// MinIO default region.
	location = "us-east-1"
)

type MinioUploader struct {
	client   *minio.Client
	endpoint string
}

func (u *MinioUploader) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := u.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket error: %w", err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: location}); err != nil {
			return fmt.Errorf("create bucket error: %w", err)
		}
	}
	return nil
}

func (u *MinioUploader) UploadVideo(ctx context.Context, localPath string) (*UploadResult, error) {
	if _, err := os.Stat(localPath); err != nil {
		return nil, errors.WithMessage(err, "video file is unreachable")
	}
	if err := u.ensureBucket(ctx, videoBucket); err != nil {
		return nil, err
	}

	duration, err := probeDuration(localPath)
	if err != nil {
		hlog.Warnf("Failed to probe duration of %s: %v", localPath, err)
	}

	objectName := "video/" + uuid.New().String() + filepath.Ext(localPath)
	_, err = u.client.FPutObject(ctx, videoBucket, objectName, localPath,
		minio.PutObjectOptions{ContentType: "video/mp4"})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to upload video")
	}

	return &UploadResult{
		URL:      fmt.Sprintf("http://%s/%s/%s", u.endpoint, videoBucket, objectName),
		Duration: duration,
	}, nil
}

func (u *MinioUploader) UploadImage(ctx context.Context, localPath string) (string, error) {
	if _, err := os.Stat(localPath); err != nil {
		return "", errors.WithMessage(err, "image file is unreachable")
	}
	if err := u.ensureBucket(ctx, imageBucket); err != nil {
		return "", err
	}

	objectName := "thumbnail/" + uuid.New().String() + filepath.Ext(localPath)
	_, err := u.client.FPutObject(ctx, imageBucket, objectName, localPath,
		minio.PutObjectOptions{ContentType: "image/jpeg"})
	if err != nil {
		return "", errors.WithMessage(err, "failed to upload image")
	}

	return fmt.Sprintf("http://%s/%s/%s", u.endpoint, imageBucket, objectName), nil
}

func probeDuration(videoPath string) (float64, error) {
	probe, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return 0, errors.WithMessage(err, "ffprobe failed")
	}
	return gjson.Get(probe, "format.duration").Float(), nil
}

// ExtractThumbnail grabs the first frame of a video as a jpg, for publishes
// that arrive without an explicit thumbnail.
func ExtractThumbnail(videoPath, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return "", errors.WithMessage(err, "failed to create folders")
	}
	outputPath := filepath.Join(outputDir, "thumbnail.jpg")
	err := ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{
			"ss":      "00:00:00",
			"vframes": "1",
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return "", errors.WithMessage(err, "failed to generate the thumbnail")
	}
	return outputPath, nil
}
