package cloudwriter

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

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(params.Body)
	f.inputs = append(f.inputs, params)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Writer_UploadsOnClose(t *testing.T) {
	client := &fakeS3{}
	factory := NewS3WriterFactoryWithClient(context.Background(), client)

	w, err := factory.NewWriter("exports", "orders/day=19/data.parquet")
	require.NoError(t, err)
	_, err = w.Write([]byte("PAR1"))
	require.NoError(t, err)
	_, err = w.Write([]byte("rows"))
	require.NoError(t, err)
	assert.Empty(t, client.inputs)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	require.Len(t, client.inputs, 1)
	assert.Equal(t, "exports", aws.ToString(client.inputs[0].Bucket))
	assert.Equal(t, "orders/day=19/data.parquet", aws.ToString(client.inputs[0].Key))
	assert.Equal(t, "application/vnd.apache.parquet", aws.ToString(client.inputs[0].ContentType))
	assert.Equal(t, "PAR1rows", string(client.bodies[0]))

	_, err = w.Write([]byte("late"))
	assert.Error(t, err)
}

func TestS3Writer_UploadError(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	w, err := NewS3WriterFactoryWithClient(context.Background(), client).NewWriter("exports", "a.json")
	require.NoError(t, err)
	assert.ErrorContains(t, w.Close(), "access denied")
	assert.Equal(t, "application/x-ndjson", aws.ToString(client.inputs[0].ContentType))
}

func TestS3WriterFactory_RequiresBucket(t *testing.T) {
	_, err := NewS3WriterFactoryWithClient(context.Background(), &fakeS3{}).NewWriter("", "a.csv")
	assert.Error(t, err)
}
