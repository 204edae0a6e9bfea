package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalespaiva/bgphijack/pkg/asrel"
	"github.com/thalespaiva/bgphijack/pkg/logging"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	opts, err := cfg.InferenceOptions()
	require.NoError(t, err)
	assert.Equal(t, asrel.VariantHeuristic, opts.Variant)
	assert.Equal(t, 1, opts.TransitThreshold)
	assert.Equal(t, 60.0, opts.PeeringRatio)
	assert.Equal(t, "stdin", cfg.LoadOptions().Source)
	assert.Equal(t, logging.InfoLevel, cfg.LogLevel())
}

func TestParse(t *testing.T) {
	data := []byte(`
inference:
  variant: refined
  transit_threshold: 3
  workers: 8
corpus:
  input: s3://ribs/2018/paths.txt.sz
  numeric_asns: true
  s3:
    region: eu-west-1
    endpoint: http://localhost:9000
    use_path_style: true
  nng:
    recv_timeout: 5s
ground_truth:
  path: /data/as-rel.txt
output:
  pretty_stats: true
metrics:
  pushgateway: http://pushgateway:9091
log:
  level: debug
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "refined", cfg.Inference.Variant)
	assert.Equal(t, 3, cfg.Inference.TransitThreshold)
	assert.Equal(t, 60.0, cfg.Inference.PeeringRatio, "unset keys keep their defaults")
	assert.Equal(t, 8, cfg.Inference.Workers)
	assert.True(t, cfg.Corpus.NumericASNs)
	assert.Equal(t, 5*time.Second, cfg.Corpus.NNG.RecvTimeout)
	assert.Equal(t, "asrel", cfg.Metrics.Job)
	assert.Equal(t, logging.DebugLevel, cfg.LogLevel())

	src := cfg.SourceOptions()
	assert.Equal(t, "eu-west-1", src.S3.Region)
	assert.Equal(t, "http://localhost:9000", src.S3.Endpoint)
	assert.True(t, src.S3.UsePathStyle)

	opts, err := cfg.InferenceOptions()
	require.NoError(t, err)
	assert.Equal(t, asrel.VariantRefined, opts.Variant)
	require.NoError(t, opts.Validate())
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse([]byte("inference:\n  varient: basic\n"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown variant", "inference:\n  variant: gao\n"},
		{"negative threshold", "inference:\n  transit_threshold: -1\n"},
		{"ratio at one", "inference:\n  peering_ratio: 1\n"},
		{"ratio at one with empty variant", "inference:\n  variant: \"\"\n  peering_ratio: 1\n"},
		{"negative workers", "inference:\n  workers: -2\n"},
		{"too many workers", "inference:\n  workers: 100000\n"},
		{"bad source", "corpus:\n  input: http://example.com/x\n"},
		{"bad ground truth source", "ground_truth:\n  path: s3://bucket\n"},
		{"half credentials", "corpus:\n  s3:\n    access_key_id: AKIA\n"},
		{"bad log level", "log:\n  level: verbose\n"},
		{"tiny recv timeout", "corpus:\n  nng:\n    recv_timeout: 1us\n"},
		{"pushgateway without job", "metrics:\n  pushgateway: http://gw:9091\n  job: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParse_EmptyVariantIsHeuristic(t *testing.T) {
	cfg, err := Parse([]byte("inference:\n  variant: \"\"\n"))
	require.NoError(t, err)

	opts, err := cfg.InferenceOptions()
	require.NoError(t, err)
	assert.Equal(t, asrel.VariantHeuristic, opts.Variant)
}

func TestParse_RatioIgnoredOutsideHeuristic(t *testing.T) {
	_, err := Parse([]byte("inference:\n  variant: basic\n  peering_ratio: 0\n"))
	assert.NoError(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asrel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inference:\n  variant: basic\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "basic", cfg.Inference.Variant)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
