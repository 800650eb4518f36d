// SPDX-License-Identifier: EPL-2.0

package normalize

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMetadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []Record
	}{
		{
			name: "canonical",
			in:   "audio_file,text,language\na.wav,hello,en\nb.wav,नमस्ते,hi\n",
			want: []Record{{"a.wav", "hello", "en"}, {"b.wav", "नमस्ते", "hi"}},
		},
		{
			name: "reordered with extras and bom",
			in:   "\ufeffid,language,audio_file,speaker,text\n1,fr,c.wav,s1,\"bonjour, monde\"\n",
			want: []Record{{"c.wav", "bonjour, monde", "fr"}},
		},
		{
			name: "short row",
			in:   "audio_file,text,language\nd.wav\n",
			want: []Record{{"d.wav", "", ""}},
		},
		{
			name: "header only",
			in:   "audio_file,text,language\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := readMetadata(strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadMetadata_MissingColumn(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "audio_file,text\na.wav,x\n", "file,text,language\n"} {
		_, err := readMetadata(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrMissingColumn, "input %q", in)
	}
}

func TestWriteMetadata(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeMetadata(&buf, []Record{
		{"en_a.wav", "hello, world", "en"},
		{"hi_b.wav", "नमस्ते", "hi"},
	}))

	assert.Equal(t,
		"audio_file,text,language\nen_a.wav,\"hello, world\",en\nhi_b.wav,नमस्ते,hi\n",
		buf.String())
}

func TestWriteMetadata_EmptyKeepsHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteMetadata(path, nil))

	got, err := ReadMetadata(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}
