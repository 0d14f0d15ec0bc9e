package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"coderag/internal/adapter/chunker"
	"coderag/internal/adapter/fs"
	"coderag/internal/port"
)

type fakeEmbedder struct {
	dim    int
	failOn map[int]bool
	calls  int
	lastIn []string
}

func (e *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	e.lastIn = texts
	if e.failOn[e.calls] {
		return nil, errors.New("embedding provider down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, e.dim)
		v[0] = 1
		v[len(t)%e.dim] += float32(len(t))
		out[i] = v
	}
	return out, nil
}

func (e *fakeEmbedder) ModelName() string { return "fake" }

type fakeLLM struct {
	prompt  string
	answer  string
	err     error
	pingErr error
	pinged  bool
}

func (l *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	l.prompt = prompt
	return l.answer, l.err
}

func (l *fakeLLM) Ping(context.Context) error {
	l.pinged = true
	return l.pingErr
}

func (l *fakeLLM) ModelName() string { return "fake-llm" }

func writeRepo(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), name)
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func newWalker() *fs.Walker {
	return fs.NewWalker(
		[]string{".py", ".java", ".js", ".ts", ".go"},
		[]string{"node_modules", ".git", "build"},
		chunker.NewSegmenter(100),
		nil,
	)
}

var _ port.Embedder = (*fakeEmbedder)(nil)
var _ port.LLM = (*fakeLLM)(nil)
