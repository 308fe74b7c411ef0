package oss

import (
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var defaultUploader Uploader

// InitMinio builds the minio-backed uploader and installs it as the default.
func InitMinio(endpoint, accessKeyID, secretAccessKey string, useSSL bool) error {
	hlog.Infof("Initializing MinIO client with endpoint: %s, accessKey: %s", endpoint, accessKeyID)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		hlog.Errorf("Failed to create MinIO client: %v", err)
		return err
	}

	defaultUploader = &MinioUploader{client: client, endpoint: endpoint}
	hlog.Info("Connect Minio Success")
	return nil
}

// Default returns the uploader installed by InitMinio.
func Default() Uploader {
	return defaultUploader
}
