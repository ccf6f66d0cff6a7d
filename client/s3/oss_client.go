package s3

import (
	"context"
	"io"
	"os"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

var (
	ArchiveBucket *oss.Bucket
	PutObjectFunc func(ctx context.Context, key string, r io.Reader, opts ...oss.Option) error = PutObject
)

// BuildBucketFromEnv opens the bucket named by OSS_BUCKET at OSS_ENDPOINT.
func BuildBucketFromEnv() (*oss.Bucket, error) {
	endpoint := os.ExpandEnv(os.Getenv("OSS_ENDPOINT"))
	if endpoint == "" {
		endpoint = "dummy"
	}
	accessKey := os.Getenv("OSS_ACCESS_KEY")
	secretKey := os.Getenv("OSS_SECRET_KEY")
	bucket := os.Getenv("OSS_BUCKET")
	if bucket == "" {
		bucket = "planboard"
	}
	return BuildBucket(endpoint, accessKey, secretKey, bucket)
}

func BuildBucket(endpoint, accessKey, secretKey, bucketName string) (*oss.Bucket, error) {
	cli, err := oss.New(endpoint, accessKey, secretKey, oss.HTTPClient(nil))
	if err != nil {
		return nil, err
	}
	return cli.Bucket(bucketName)
}

func PutObject(ctx context.Context, key string, r io.Reader, opts ...oss.Option) error {
	if parentSpan := opentracing.SpanFromContext(ctx); parentSpan != nil {
		sp := parentSpan.Tracer().StartSpan("put-object", opentracing.ChildOf(parentSpan.Context()))
		sp.SetTag("object-key", key)
		defer sp.Finish()

		err := ArchiveBucket.PutObject(key, r, opts...)
		ext.Error.Set(sp, err != nil)
		return err
	}
	return ArchiveBucket.PutObject(key, r, opts...)
}
