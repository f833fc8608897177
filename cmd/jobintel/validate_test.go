package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_AnalyzeOutput(t *testing.T) {
	quietEnv(t)
	outPath := filepath.Join(t.TempDir(), "analysis.json")
	var discard bytes.Buffer
	require.NoError(t, runAnalyze(context.Background(), "", analyzeOptions{TextFile: writeFile(t, "posting.txt", juniorPosting), Out: outPath}, &discard))

	var out bytes.Buffer
	require.NoError(t, runValidate(outPath, &out))
	assert.Contains(t, out.String(), "is valid")
}

func TestValidateCommand_Invalid(t *testing.T) {
	var out bytes.Buffer

	err := runValidate(writeFile(t, "bad.json", `{"request_id": "x"}`), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid analysis")
	assert.Empty(t, out.String())

	err = runValidate(filepath.Join(t.TempDir(), "missing.json"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
