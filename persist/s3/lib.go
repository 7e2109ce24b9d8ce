// Package s3 stores the nodes of treemap versions as objects in an S3
// bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	lru "github.com/hashicorp/golang-lru"
	"github.com/jrhy/treemap"
)

// DefaultRecentNames is how many recently stored or loaded node names a
// Persist remembers in order to skip redundant uploads.
const DefaultRecentNames = 1000

type S3Interface interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// Persist implements the treemap.Persist interface for storing and
// loading nodes as S3 objects.
type Persist struct {
	s3         S3Interface
	BucketName string
	Prefix     string
	recent     *lru.Cache
}

var _ treemap.Persist = (*Persist)(nil)

// Load loads the bytes persisted in the named object. A missing object
// is reported as treemap.ErrNodeNotFound.
func (p *Persist) Load(ctx context.Context, name string) ([]byte, error) {
	input := s3.GetObjectInput{
		Bucket: &p.BucketName,
		Key:    aws.String(p.Prefix + name),
	}
	output, err := p.s3.GetObjectWithContext(ctx, &input)
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, fmt.Errorf("s3://%s/%s%s: %w", p.BucketName, p.Prefix, name, treemap.ErrNodeNotFound)
		}
		return nil, err
	}
	defer output.Body.Close()
	b, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, err
	}
	p.recent.Add(name, nil)
	return b, nil
}

// Store persists the given bytes in an object of the given name, unless
// this Persist recently stored or loaded it. Names are content hashes,
// so an existing object never needs rewriting.
func (p *Persist) Store(ctx context.Context, name string, b []byte) error {
	if p.recent.Contains(name) {
		return nil
	}
	input := s3.PutObjectInput{
		Bucket: &p.BucketName,
		Key:    aws.String(p.Prefix + name),
		Body:   bytes.NewReader(b),
	}
	_, err := p.s3.PutObjectWithContext(ctx, &input)
	if err != nil {
		return err
	}
	p.recent.Add(name, nil)
	return nil
}

// NewPersist returns a Persist that loads and stores nodes as objects
// with the given S3 client, bucket name and key prefix.
func NewPersist(client S3Interface, bucketName, prefix string) *Persist {
	recent, err := lru.New(DefaultRecentNames)
	if err != nil {
		panic(err)
	}
	return &Persist{client, bucketName, prefix, recent}
}
