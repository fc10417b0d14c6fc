package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3ArchiverPut(t *testing.T) {
	fake := &fakePutter{}
	a := &S3Archiver{client: fake, bucket: "cv-archive"}

	err := a.Put(context.Background(), "cv/u1/CV_Ann.docx", "application/test", []byte("data"))
	require.NoError(t, err)

	assert.Equal(t, "cv-archive", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "cv/u1/CV_Ann.docx", aws.ToString(fake.input.Key))
	assert.Equal(t, "application/test", aws.ToString(fake.input.ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(fake.input.ContentLength))
	assert.Equal(t, []byte("data"), fake.body)
}

func TestS3ArchiverPutError(t *testing.T) {
	a := &S3Archiver{client: &fakePutter{err: errors.New("denied")}, bucket: "b"}
	err := a.Put(context.Background(), "k", "t", nil)
	assert.ErrorContains(t, err, "denied")
}
