package binding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-writer/pkg/frontmatter"
	"github.com/mattsolo1/grove-writer/pkg/models"
)

type fakeNodes struct {
	mu    sync.Mutex
	nodes map[string]*models.Node
}

func newFakeNodes(nodes ...*models.Node) *fakeNodes {
	f := &fakeNodes{nodes: make(map[string]*models.Node)}
	for _, n := range nodes {
		f.nodes[n.ID] = n
	}
	return f
}

func (f *fakeNodes) get(id string) (*models.Node, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

func (f *fakeNodes) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.nodes, id)
}

type countingPrompter struct {
	calls  int
	answer bool
}

func (p *countingPrompter) prompt(context.Context, string, Mode) (bool, error) {
	p.calls++
	return p.answer, nil
}

func chapter() *models.Node {
	return &models.Node{
		ID:           "ch1",
		ParentID:     "root",
		Title:        "Ch1",
		Kind:         models.KindFile,
		Category:     models.CategoryChapter,
		Tags:         []string{"draft"},
		Content:      "Hello world",
		WordCount:    2,
		LastModified: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestBindingVariants(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := NewFileCapability(fs, "/out/a.txt", nil)

	assert.True(t, None().IsNone())
	assert.Equal(t, KindPending, Pending(c).Kind())
	assert.Equal(t, KindGranted, Granted(c).Kind())
	assert.True(t, Granted(nil).IsNone(), "a nil capability collapses to None")
	assert.Same(t, c, Pending(c).Capability().(*FileCapability))
}

func TestBindRejectsFoldersAndUnknownNodes(t *testing.T) {
	nodes := newFakeNodes(&models.Node{ID: "root", Kind: models.KindFolder})
	b := NewBridge(nodes.get, nil, nil)
	c := NewFileCapability(afero.NewMemMapFs(), "/x.md", nil)

	assert.ErrorIs(t, b.Bind("root", c), models.ErrNotAFile)
	assert.ErrorIs(t, b.Bind("ghost", c), models.ErrNotFound)
	assert.True(t, b.BindingOf("root").IsNone())
}

func TestAutoWriteNeverPrompts(t *testing.T) {
	fs := afero.NewMemMapFs()
	nodes := newFakeNodes(chapter())
	prompter := &countingPrompter{answer: true}
	b := NewBridge(nodes.get, nil, nil)

	// Unbound: nothing happens.
	require.NoError(t, b.Write(context.Background(), "ch1", Auto))

	// Pending: still nothing, and no prompt.
	c := NewFileCapability(fs, "/out/ch1.md", prompter.prompt)
	require.NoError(t, b.Bind("ch1", c))
	require.NoError(t, b.Write(context.Background(), "ch1", Auto))

	assert.Equal(t, 0, prompter.calls)
	exists, _ := afero.Exists(fs, "/out/ch1.md")
	assert.False(t, exists)
}

func TestManualWritePromptsThenAutoWrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	nodes := newFakeNodes(chapter())
	prompter := &countingPrompter{answer: true}
	b := NewBridge(nodes.get, nil, nil)
	ctx := context.Background()

	require.NoError(t, b.Bind("ch1", NewFileCapability(fs, "/out/ch1.md", prompter.prompt)))
	require.NoError(t, b.Write(ctx, "ch1", Manual))

	assert.Equal(t, 1, prompter.calls)
	assert.True(t, b.BindingOf("ch1").IsGranted())

	data, err := afero.ReadFile(fs, "/out/ch1.md")
	require.NoError(t, err)
	fm, body, err := frontmatter.Parse(string(data))
	require.NoError(t, err)
	require.NotNil(t, fm)
	assert.Equal(t, "Ch1", fm.Title)
	assert.Equal(t, "chapter", fm.Category)
	assert.Equal(t, []string{"draft"}, fm.Tags)
	assert.Equal(t, "Hello world", body)
	assert.True(t, fm.Modified.Equal(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)))

	// Once granted, auto writes go through without another prompt.
	nodes.nodes["ch1"].Content = "Hello again world"
	require.NoError(t, b.Write(ctx, "ch1", Auto))
	assert.Equal(t, 1, prompter.calls)
	data, _ = afero.ReadFile(fs, "/out/ch1.md")
	assert.Contains(t, string(data), "Hello again world")
}

func TestManualWriteDenied(t *testing.T) {
	fs := afero.NewMemMapFs()
	n := chapter()
	nodes := newFakeNodes(n)
	b := NewBridge(nodes.get, nil, nil)

	require.NoError(t, b.Bind("ch1", NewFileCapability(fs, "/out/ch1.txt", (&countingPrompter{answer: false}).prompt)))
	err := b.Write(context.Background(), "ch1", Manual)

	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	assert.Equal(t, KindPending, b.BindingOf("ch1").Kind())
	assert.Equal(t, "Hello world", nodes.nodes["ch1"].Content, "node is unchanged")
	exists, _ := afero.Exists(fs, "/out/ch1.txt")
	assert.False(t, exists)
}

func TestRevokedGrantDemotesToPending(t *testing.T) {
	fs := afero.NewMemMapFs()
	nodes := newFakeNodes(chapter())
	b := NewBridge(nodes.get, nil, nil)
	c := NewFileCapability(fs, "/out/ch1.txt", (&countingPrompter{answer: true}).prompt)
	ctx := context.Background()

	require.NoError(t, b.Bind("ch1", c))
	require.NoError(t, b.Write(ctx, "ch1", Manual))
	require.True(t, b.BindingOf("ch1").IsGranted())

	c.Revoke()
	require.NoError(t, b.Write(ctx, "ch1", Auto))
	assert.Equal(t, KindPending, b.BindingOf("ch1").Kind())
}

func TestManualWriteUnboundUsesPicker(t *testing.T) {
	fs := afero.NewMemMapFs()
	nodes := newFakeNodes(chapter())
	ctx := context.Background()

	t.Run("no picker", func(t *testing.T) {
		b := NewBridge(nodes.get, nil, nil)
		assert.ErrorIs(t, b.Write(ctx, "ch1", Manual), ErrNoTarget)
	})

	t.Run("cancelled", func(t *testing.T) {
		b := NewBridge(nodes.get, func(context.Context, *models.Node) (Capability, error) {
			return nil, nil
		}, nil)
		assert.ErrorIs(t, b.Write(ctx, "ch1", Manual), ErrNoTarget)
		assert.True(t, b.BindingOf("ch1").IsNone())
	})

	t.Run("picked", func(t *testing.T) {
		b := NewBridge(nodes.get, func(_ context.Context, n *models.Node) (Capability, error) {
			c := NewFileCapability(fs, "/picked/"+n.Title+".txt", nil)
			c.Grant(ModeReadWrite)
			return c, nil
		}, nil)
		require.NoError(t, b.Write(ctx, "ch1", Manual))
		data, err := afero.ReadFile(fs, "/picked/Ch1.txt")
		require.NoError(t, err)
		assert.Equal(t, "Hello world", string(data))
		assert.True(t, b.BindingOf("ch1").IsGranted())
	})

	t.Run("picker error", func(t *testing.T) {
		b := NewBridge(nodes.get, func(context.Context, *models.Node) (Capability, error) {
			return nil, errors.New("dialog crashed")
		}, nil)
		assert.Error(t, b.Write(ctx, "ch1", Manual))
	})
}

func TestWriteDiscardedWhenNodeDeletedDuringPrompt(t *testing.T) {
	fs := afero.NewMemMapFs()
	nodes := newFakeNodes(chapter())
	b := NewBridge(nodes.get, nil, nil)

	prompter := func(context.Context, string, Mode) (bool, error) {
		nodes.remove("ch1")
		return true, nil
	}
	require.NoError(t, b.Bind("ch1", NewFileCapability(fs, "/out/ch1.txt", prompter)))

	require.NoError(t, b.Write(context.Background(), "ch1", Manual))
	exists, _ := afero.Exists(fs, "/out/ch1.txt")
	assert.False(t, exists)
	assert.True(t, b.BindingOf("ch1").IsNone())
}

func TestDeniedWriteForgetsDeletedNode(t *testing.T) {
	fs := afero.NewMemMapFs()
	nodes := newFakeNodes(chapter())
	b := NewBridge(nodes.get, nil, nil)

	prompter := func(context.Context, string, Mode) (bool, error) {
		nodes.remove("ch1")
		return false, nil
	}
	require.NoError(t, b.Bind("ch1", NewFileCapability(fs, "/out/ch1.txt", prompter)))

	require.NoError(t, b.Write(context.Background(), "ch1", Manual))
	assert.True(t, b.BindingOf("ch1").IsNone())
	assert.Empty(t, b.Bound())
}

func TestPickedTargetForgottenWhenNodeDeleted(t *testing.T) {
	fs := afero.NewMemMapFs()
	nodes := newFakeNodes(chapter())
	b := NewBridge(nodes.get, func(_ context.Context, n *models.Node) (Capability, error) {
		nodes.remove(n.ID)
		return NewFileCapability(fs, "/picked/ch1.txt", nil), nil
	}, nil)

	require.NoError(t, b.Write(context.Background(), "ch1", Manual))
	assert.Empty(t, b.Bound())
	exists, _ := afero.Exists(fs, "/picked/ch1.txt")
	assert.False(t, exists)
}

func TestWriteErrors(t *testing.T) {
	nodes := newFakeNodes(&models.Node{ID: "root", Kind: models.KindFolder})
	b := NewBridge(nodes.get, nil, nil)

	assert.ErrorIs(t, b.Write(context.Background(), "ghost", Manual), models.ErrNotFound)
	assert.ErrorIs(t, b.Write(context.Background(), "root", Manual), models.ErrNotAFile)
}

func TestFileCapabilityPermissions(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := context.Background()
	c := NewFileCapability(fs, "/a/b.txt", nil)

	st, err := c.QueryPermission(ctx, ModeRead)
	require.NoError(t, err)
	assert.Equal(t, StatePrompt, st)

	st, _ = c.RequestPermission(ctx, ModeReadWrite)
	assert.Equal(t, StateDenied, st, "no prompter means no grant")
	assert.ErrorIs(t, c.Write(ctx, []byte("x")), models.ErrPermissionDenied)

	c.Grant(ModeReadWrite)
	st, _ = c.QueryPermission(ctx, ModeRead)
	assert.Equal(t, StateGranted, st, "read-write implies read")

	require.NoError(t, c.Write(ctx, []byte("x")))
	data, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
	assert.Equal(t, "b.txt", c.Name())
}

func TestRender(t *testing.T) {
	n := chapter()
	plain, err := Render(n, "ch1.txt")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", string(plain))

	md, err := Render(n, "ch1.MD")
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: Ch1\ncategory: chapter\ntags: [draft]\nmodified: 2024-05-01T09:00:00Z\n---\n\nHello world", string(md))
}

func TestAutoWriterStartStop(t *testing.T) {
	fs := afero.NewMemMapFs()
	nodes := newFakeNodes(chapter())
	b := NewBridge(nodes.get, nil, nil)
	c := NewFileCapability(fs, "/out/ch1.txt", nil)
	c.Grant(ModeReadWrite)
	require.NoError(t, b.Bind("ch1", c))
	require.NoError(t, b.Write(context.Background(), "ch1", Manual))
	require.NoError(t, fs.Remove("/out/ch1.txt"))

	aw := NewAutoWriter(b, func() string { return "ch1" }, 10*time.Millisecond)
	aw.Start(context.Background())
	aw.Start(context.Background())
	assert.True(t, aw.Running())

	assert.Eventually(t, func() bool {
		ok, _ := afero.Exists(fs, "/out/ch1.txt")
		return ok
	}, time.Second, 5*time.Millisecond)

	aw.Stop()
	aw.Stop()
	assert.False(t, aw.Running())
}

func TestAutoWriterTickWithoutActiveNode(t *testing.T) {
	b := NewBridge(newFakeNodes().get, nil, nil)
	aw := NewAutoWriter(b, func() string { return "" }, 0)
	aw.Tick(context.Background())
	assert.Equal(t, DefaultInterval, aw.interval)
}
