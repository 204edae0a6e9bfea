package corpus

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/push"
)

const samplePaths = "1 2 3\n4 2 3\n5 6\n"

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestOpen_Stdin(t *testing.T) {
	for _, uri := range []string{"", "-"} {
		rc, err := Open(context.Background(), uri, SourceOptions{Stdin: strings.NewReader(samplePaths)})
		require.NoError(t, err)
		assert.Equal(t, samplePaths, readAll(t, rc))
	}
}

func TestOpen_MappedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paths.txt")
	require.NoError(t, os.WriteFile(path, []byte(samplePaths), 0o644))

	rc, err := Open(context.Background(), path, SourceOptions{})
	require.NoError(t, err)
	assert.Equal(t, samplePaths, readAll(t, rc))
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), SourceOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_Snappy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paths.txt.sz")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := snappy.NewBufferedWriter(f)
	_, err = w.Write([]byte(samplePaths))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	rc, err := Open(context.Background(), path, SourceOptions{})
	require.NoError(t, err)
	assert.Equal(t, samplePaths, readAll(t, rc))
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	_, err := Open(context.Background(), "http://example.com/paths.txt", SourceOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

type fakeObjects struct {
	objects map[string]string
	bucket  string
	key     string
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	body, ok := f.objects[f.bucket+"/"+f.key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestOpen_S3(t *testing.T) {
	objects := &fakeObjects{objects: map[string]string{"ribs/2018/paths.txt": samplePaths}}

	rc, err := Open(context.Background(), "s3://ribs/2018/paths.txt", SourceOptions{Objects: objects})
	require.NoError(t, err)
	assert.Equal(t, samplePaths, readAll(t, rc))
	assert.Equal(t, "ribs", objects.bucket)
	assert.Equal(t, "2018/paths.txt", objects.key)

	_, err = Open(context.Background(), "s3://ribs/missing", SourceOptions{Objects: objects})
	assert.Error(t, err)
}

func TestOpen_S3Snappy(t *testing.T) {
	var sb strings.Builder
	compressed := snappy.NewBufferedWriter(&sb)
	_, err := compressed.Write([]byte(samplePaths))
	require.NoError(t, err)
	require.NoError(t, compressed.Close())

	objects := &fakeObjects{objects: map[string]string{"ribs/paths.sz": sb.String()}}
	rc, err := Open(context.Background(), "s3://ribs/paths.sz", SourceOptions{Objects: objects})
	require.NoError(t, err)
	assert.Equal(t, samplePaths, readAll(t, rc))
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri     string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://ribs/paths.txt", "ribs", "paths.txt", false},
		{"s3://ribs/a/b/c.sz", "ribs", "a/b/c.sz", false},
		{"s3://ribs", "", "", true},
		{"s3://ribs/", "", "", true},
		{"s3:///paths.txt", "", "", true},
		{"paths.txt", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, key, err := ParseS3URI(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestNNGAddress(t *testing.T) {
	addr, err := NNGAddress("nng+tcp://127.0.0.1:40899")
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:40899", addr)

	_, err = NNGAddress("nng+tcp://")
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestOpen_NNGCollectorFeed(t *testing.T) {
	const uri = "nng+inproc://asrel-collector-test"

	rc, err := Open(context.Background(), uri, SourceOptions{RecvTimeout: 5 * time.Second})
	require.NoError(t, err)

	sender, err := push.NewSocket()
	require.NoError(t, err)
	defer sender.Close()
	require.NoError(t, sender.SetOption(mangos.OptionSendDeadline, 5*time.Second))
	require.NoError(t, sender.Dial("inproc://asrel-collector-test"))

	errc := make(chan error, 1)
	go func() {
		for _, msg := range []string{"1 2 3\n4 2 3", "5 6\n", ""} {
			if err := sender.Send([]byte(msg)); err != nil {
				errc <- err
				return
			}
		}
		errc <- nil
	}()

	assert.Equal(t, samplePaths, readAll(t, rc))
	require.NoError(t, <-errc)
}

func TestOpen_NNGTimeout(t *testing.T) {
	rc, err := Open(context.Background(), "nng+inproc://asrel-idle-test", SourceOptions{RecvTimeout: 20 * time.Millisecond})
	require.NoError(t, err)
	defer rc.Close()

	_, err = io.ReadAll(rc)
	assert.ErrorIs(t, err, mangos.ErrRecvTimeout)
}

func TestLoadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paths.txt")
	require.NoError(t, os.WriteFile(path, []byte(samplePaths+"bad  line\n"), 0o644))

	c, stats, err := LoadSource(context.Background(), path, SourceOptions{}, LoadOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 1, stats.Malformed)
	assert.Equal(t, 1, stats.Degenerate)
}
