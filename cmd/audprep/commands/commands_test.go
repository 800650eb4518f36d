// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audprep/internal/audiotest"
	"github.com/ik5/audprep/internal/config"
)

// run executes the command line once. Commands share package state, so
// these tests never run in parallel.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--no-progress", "--log-level", "error"}, args...))

	err := Execute(context.Background())
	return out.String(), err
}

func TestFeaturesCommand(t *testing.T) {
	in := t.TempDir()
	audiotest.WriteWAV(t, in, "tone.wav", 22050, 1, audiotest.Sine16(22050, 22050, 440, 0.5))
	audiotest.WriteFile(t, in, "notes.txt", []byte("not audio"))

	output := filepath.Join(t.TempDir(), "features.csv")

	stdout, err := run(t, "features", "--input", in, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Features saved to "+output)
	assert.Contains(t, stdout, "1 rows")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 13*174)
	assert.Equal(t, "0", rows[0][0])
	assert.Len(t, rows[1], 13*174)
}

func TestFeaturesCommand_MissingInput(t *testing.T) {
	output := filepath.Join(t.TempDir(), "features.csv")

	_, err := run(t, "features", "--input", filepath.Join(t.TempDir(), "absent"), "--output", output)
	require.NoError(t, err)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNormalizeCommand(t *testing.T) {
	src := t.TempDir()
	audiotest.WriteWAV(t, src, "a.wav", 44100, 2, audiotest.Sine16(44100, 8820, 440, 0.25))

	meta := audiotest.WriteFile(t, t.TempDir(), "metadata.csv",
		[]byte("audio_file,text,language\na.wav,hello,en\nmissing.wav,gone,hi\n"))

	out := t.TempDir()
	outMeta := filepath.Join(out, "metadata_preprocessed.csv")

	stdout, err := run(t, "normalize",
		"--source-dir", src,
		"--metadata", meta,
		"--output-dir", filepath.Join(out, "audio"),
		"--output-metadata", outMeta,
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 written, 1 missing")

	data, err := os.ReadFile(outMeta)
	require.NoError(t, err)
	assert.Equal(t, "audio_file,text,language\nen_a.wav,hello,en\n", string(data))
	assert.FileExists(t, filepath.Join(out, "audio", "en_a.wav"))
}

func TestConfigCommand(t *testing.T) {
	stdout, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "target_rate: 16000")
	assert.Contains(t, stdout, "log_level: error")
}

func TestInvalidConfig(t *testing.T) {
	t.Cleanup(func() { cfgFile = "" })

	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "config")
	require.ErrorIs(t, err, config.ErrInvalid)
	assert.Equal(t, 2, ExitCode(err))
}
