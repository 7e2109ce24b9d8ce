// Package s3test runs an in-process fake S3 server holding one bucket, for
// tests of the S3 node store.
package s3test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	s3Persist "github.com/jrhy/treemap/persist/s3"
	"github.com/stretchr/testify/require"
)

// Bucket is the bucket every Server starts with.
const Bucket = "treemap-test"

// Server is a fake S3 endpoint and a client connected to it.
type Server struct {
	Client *s3.S3
	ts     *httptest.Server
}

// Start launches a Server that is shut down when tb finishes.
func Start(tb testing.TB) *Server {
	tb.Helper()
	ts := httptest.NewServer(gofakes3.New(s3mem.New()).Server())
	tb.Cleanup(ts.Close)
	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials("TEST-ACCESSKEYID", "TEST-SECRETACCESSKEY", ""),
		Endpoint:         aws.String(ts.URL),
		Region:           aws.String("ca-west-1"),
		DisableSSL:       aws.Bool(true),
		S3ForcePathStyle: aws.Bool(true),
	})
	require.NoError(tb, err)
	client := s3.New(sess)
	_, err = client.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(Bucket)})
	require.NoError(tb, err)
	return &Server{Client: client, ts: ts}
}

// Persist returns a node store writing under prefix in the server's bucket.
func (s *Server) Persist(prefix string) *s3Persist.Persist {
	return s3Persist.NewPersist(s.Client, Bucket, prefix)
}

// Objects counts the objects stored under prefix.
func (s *Server) Objects(ctx context.Context, prefix string) (int, error) {
	n := 0
	err := s.Client.ListObjectsPagesWithContext(ctx,
		&s3.ListObjectsInput{Bucket: aws.String(Bucket), Prefix: aws.String(prefix)},
		func(page *s3.ListObjectsOutput, _ bool) bool {
			n += len(page.Contents)
			return true
		})
	return n, err
}
