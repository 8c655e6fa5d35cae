// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"
)

type fakeClient struct {
	puts []*s3.PutObjectInput
	body [][]byte
	err  error
}

func (f *fakeClient) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.body = append(f.body, data)
	return &s3.PutObjectOutput{}, nil
}

func TestPut(t *testing.T) {
	fc := &fakeClient{}
	store := NewFromClient(fc, "frames", WithPrefix("runs/"), WithACL("public-read"))
	if err := store.Put(context.Background(), "s3://frames/page-01.png", "image/png", []byte("png")); err != nil {
		t.Fatal(err)
	}
	if len(fc.puts) != 1 {
		t.Fatalf("puts = %d, want 1", len(fc.puts))
	}
	in := fc.puts[0]
	if aws.ToString(in.Bucket) != "frames" || aws.ToString(in.Key) != "runs/page-01.png" {
		t.Errorf("object = %s/%s", aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	if aws.ToString(in.ContentType) != "image/png" || aws.ToInt64(in.ContentLength) != 3 {
		t.Errorf("content type %q, length %d", aws.ToString(in.ContentType), aws.ToInt64(in.ContentLength))
	}
	if in.ACL != "public-read" {
		t.Errorf("acl = %q", in.ACL)
	}
	if string(fc.body[0]) != "png" {
		t.Errorf("body = %q", fc.body[0])
	}
}

func TestKey(t *testing.T) {
	store := NewFromClient(&fakeClient{}, "docs")
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"s3://docs/a/b.pdf", "a/b.pdf", false},
		{"s3://other/a.pdf", "", true},
		{"https://docs/a.pdf", "", true},
		{"s3://docs/a/../b.pdf", "", true},
		{"s3://docs/a//b.pdf", "", true},
		{"://", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Key(tt.name, "application/pdf")
			if tt.wantErr {
				if !errors.Is(err, ErrName) {
					t.Errorf("err = %v, want ErrName", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Key = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestKeyFolderGetsULID(t *testing.T) {
	store := NewFromClient(&fakeClient{}, "docs")
	key, err := store.Key("s3://docs/exports/", "image/svg+xml")
	if err != nil {
		t.Fatal(err)
	}
	name, ok := strings.CutPrefix(key, "exports/")
	if !ok || !strings.HasSuffix(name, ".svg") {
		t.Fatalf("key = %q", key)
	}
	if _, err := ulid.Parse(strings.TrimSuffix(name, ".svg")); err != nil {
		t.Errorf("object name %q is not a ULID: %v", name, err)
	}
}

func TestPutError(t *testing.T) {
	boom := errors.New("boom")
	store := NewFromClient(&fakeClient{err: boom}, "b")
	if err := store.Put(context.Background(), "s3://b/x.png", "image/png", nil); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestNewRejectsEmptyBucket(t *testing.T) {
	if _, err := New(context.Background(), ""); !errors.Is(err, ErrName) {
		t.Errorf("err = %v, want ErrName", err)
	}
}
