// Package storage keeps objects in an S3-compatible bucket. The console
// uses it to stage uploaded CSV files between the import preview and the
// commit when it runs on several instances.
//
//	bucket, err := storage.New(storage.Config{
//	    Bucket:    "ochoko-admin",
//	    AccessKey: cfg.S3.AccessKey,
//	    SecretKey: cfg.S3.SecretKey,
//	    Endpoint:  "http://minio:9000",
//	    PathStyle: true,
//	    Prefix:    "imports",
//	})
package storage
