package keywords

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      []string
		expected []string
	}{
		{"Trim and drop blanks", []string{" python ", "", "  ", "Go"}, []string{"python", "Go"}},
		{"Case-insensitive dedup keeps first", []string{"Python", "python", "PYTHON"}, []string{"Python"}},
		{"NFC composes accents", []string{"\u00e9cole", "e\u0301cole"}, []string{"\u00e9cole"}},
		{"Nil input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.raw))
		})
	}
}

func TestParse(t *testing.T) {
	assert.Equal(t, []string{"python", "go", "secret clearance"}, Parse("python, go\nsecret clearance;;"))
	assert.Empty(t, Parse(" , "))
}

func TestMemoryNotifiesOnChange(t *testing.T) {
	m := NewMemory("python")
	var got [][]string
	cancel := m.OnChange(func(set []string) { got = append(got, set) })

	m.Set([]string{"python"})
	m.Set([]string{"go", "python"})
	cancel()
	m.Set([]string{"rust"})

	require.Len(t, got, 1)
	assert.Equal(t, []string{"go", "python"}, got[0])
	assert.Equal(t, []string{"rust"}, m.Get())
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	m := NewMemory("python")
	set := m.Get()
	set[0] = "changed"
	assert.Equal(t, []string{"python"}, m.Get())
}

func TestFileSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "keywords.yaml")

	f, err := OpenFile(path)
	require.NoError(t, err)
	assert.Empty(t, f.Get())

	var notified [][]string
	f.OnChange(func(set []string) { notified = append(notified, set) })

	set, err := f.Save([]string{"Python", " python", "GC"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "GC"}, set)
	require.Len(t, notified, 1)

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "GC"}, reopened.Get())

	require.NoError(t, os.WriteFile(path, []byte("keywords:\n  - rust\n"), 0644))
	require.NoError(t, f.Reload())
	assert.Equal(t, []string{"rust"}, f.Get())
	require.Len(t, notified, 2)

	//unchanged reload stays quiet
	require.NoError(t, f.Reload())
	assert.Len(t, notified, 2)
}

func TestFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords: [unclosed"), 0644))

	_, err := OpenFile(path)
	assert.Error(t, err)
}

func TestFileWatchPicksUpExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	f, err := OpenFile(path)
	require.NoError(t, err)

	changes := make(chan []string, 4)
	f.OnChange(func(set []string) { changes <- set })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.Watch(ctx))
	defer f.Close()

	require.NoError(t, os.WriteFile(path, []byte("keywords: [golang, kubernetes]\n"), 0644))

	select {
	case set := <-changes:
		assert.Equal(t, []string{"golang", "kubernetes"}, set)
	case <-time.After(5 * time.Second):
		t.Fatal("keyword file change was not picked up")
	}
}
