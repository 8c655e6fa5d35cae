// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package s3 stores exported canvas files in an Amazon S3 bucket.
//
// A Store is a [canvas.Destination] for names of the form
// "s3://bucket/key". Register it under the "s3" scheme:
//
//	store, err := s3.New(ctx, "frames")
//	c, err := canvas.New(640, 480, canvas.WithDestination("s3", store))
//	fut, err := c.SaveAs("s3://frames/run-1/page-{}.png", canvas.ExportOptions{})
//
// A key ending in "/" names a folder: the object gets a fresh ULID name with
// the extension of its format.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"

	"github.com/gogpu/canvas"
)

// ErrName is returned for a name that is not an s3:// URL of the store's
// bucket.
var ErrName = errors.New("s3: invalid object name")

// API is the subset of the S3 client a Store uses.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store writes objects to one bucket.
type Store struct {
	client API
	bucket string
	prefix string
	acl    string
}

var _ canvas.Destination = (*Store)(nil)

// Option configures a Store.
type Option func(*settings)

type settings struct {
	prefix   string
	acl      string
	region   string
	endpoint string
}

// WithPrefix prepends prefix to every object key.
func WithPrefix(prefix string) Option {
	return func(s *settings) { s.prefix = prefix }
}

// WithACL sets a canned ACL such as "public-read" on every object.
func WithACL(acl string) Option {
	return func(s *settings) { s.acl = acl }
}

// WithRegion overrides the region from the shared AWS configuration.
// New only.
func WithRegion(region string) Option {
	return func(s *settings) { s.region = region }
}

// WithEndpoint points the client at an S3-compatible service and switches
// to path-style addressing. New only.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) { s.endpoint = endpoint }
}

// New creates a Store with credentials and region from the default AWS
// configuration chain (environment, shared files, instance role).
func New(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: empty bucket", ErrName)
	}
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	var loadOpts []func(*config.LoadOptions) error
	if s.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(s.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
			o.UsePathStyle = true
		}
	})
	return &Store{client: client, bucket: bucket, prefix: s.prefix, acl: s.acl}, nil
}

// NewFromClient creates a Store over an existing client.
func NewFromClient(client API, bucket string, opts ...Option) *Store {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return &Store{client: client, bucket: bucket, prefix: s.prefix, acl: s.acl}
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string { return s.bucket }

// Key maps an s3:// name to the object key it is stored under.
func (s *Store) Key(name, mime string) (string, error) {
	u, err := url.Parse(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrName, err)
	}
	if u.Scheme != "s3" || u.Host != s.bucket {
		return "", fmt.Errorf("%w: %q is not in bucket %q", ErrName, name, s.bucket)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		key += ulid.Make().String() + extension(mime)
	}
	if path.Clean("/"+key) != "/"+key {
		return "", fmt.Errorf("%w: key %q is not clean", ErrName, key)
	}
	return s.prefix + key, nil
}

// Put implements canvas.Destination.
func (s *Store) Put(ctx context.Context, name, mime string, data []byte) error {
	key, err := s.Key(name, mime)
	if err != nil {
		return err
	}
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if mime != "" {
		in.ContentType = aws.String(mime)
	}
	if s.acl != "" {
		in.ACL = types.ObjectCannedACL(s.acl)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3: put %s/%s: %w", s.bucket, key, err)
	}
	canvas.Logger().Debug("s3: stored export", "bucket", s.bucket, "key", key, "bytes", len(data))
	return nil
}

func extension(mime string) string {
	if f := canvas.FormatForMime(mime); f != "" {
		return "." + f
	}
	return ""
}
