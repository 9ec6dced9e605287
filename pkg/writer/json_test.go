package writer

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Bytes int    `json:"bytes"`
}

func TestJSONWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter[sample]()
	require.NoError(t, w.Write(sample{Name: "foo", Bytes: 10}, &buf))
	assert.JSONEq(t, `{"name":"foo","bytes":10}`, buf.String())
}

func TestJSONWriter_Pretty(t *testing.T) {
	var buf bytes.Buffer
	w := NewPrettyJSONWriter[sample]()
	require.NoError(t, w.Write(sample{Name: "foo"}, &buf))
	assert.Contains(t, buf.String(), "\n  \"name\"")
}

func TestJSONWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	w := NewJSONWriter[sample]()
	require.NoError(t, w.WriteToFile(sample{Name: "f"}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"f","bytes":0}`, string(data))
}

func TestGzipJSONWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewGzipJSONWriter[sample]()
	require.NoError(t, w.Write(sample{Name: "zipped", Bytes: 3}, &buf))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	raw, err := io.ReadAll(gz)
	require.NoError(t, err)

	var got sample
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, sample{Name: "zipped", Bytes: 3}, got)
}
