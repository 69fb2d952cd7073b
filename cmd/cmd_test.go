package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-writer/pkg/binding"
	"github.com/mattsolo1/grove-writer/pkg/frontmatter"
	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/service"
)

func newTestService(t *testing.T, options ...service.Option) *service.Service {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	options = append([]service.Option{service.WithLogger(logger)}, options...)
	svc, err := service.New(context.Background(), &service.Config{Ephemeral: true}, options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

// run executes a freshly built command so flag state never leaks between calls.
func run(t *testing.T, s *service.Service, build func(**service.Service) *cobra.Command, args ...string) (string, error) {
	t.Helper()
	return runWithInput(t, s, "", build, args...)
}

func runWithInput(t *testing.T, s *service.Service, input string, build func(**service.Service) *cobra.Command, args ...string) (string, error) {
	t.Helper()
	cmd := build(&s)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDefaultFileName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Chapter One", "chapter-one.md"},
		{"What? Now!", "what-now.md"},
		{"   ", "untitled.md"},
		{"a/b", "ab.md"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, defaultFileName(tt.title), tt.title)
	}
}

func TestBookCommands(t *testing.T) {
	s := newTestService(t)

	out, err := run(t, s, NewBookCmd, "new", "Space", "Opera")
	require.NoError(t, err)
	assert.Contains(t, out, `Created book "Space Opera"`)
	assert.Equal(t, "Space Opera", s.ActiveWorkspace().Title)

	out, err = run(t, s, NewBookCmd, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Space Opera")
	assert.Contains(t, out, service.DefaultWorkspaceTitle)

	_, err = run(t, s, NewBookCmd, "switch", "my first book")
	require.NoError(t, err)
	assert.Equal(t, service.DefaultWorkspaceTitle, s.ActiveWorkspace().Title)

	_, err = run(t, s, NewBookCmd, "status", "Space Opera", "editing")
	require.NoError(t, err)

	_, err = run(t, s, NewBookCmd, "rm", "Space Opera", "--yes")
	require.NoError(t, err)
	assert.Len(t, s.Workspaces(), 1)

	_, err = run(t, s, NewBookCmd, "switch", "nothing")
	assert.Error(t, err)
}

func TestResolveBook(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	novel, err := s.CreateWorkspace(ctx, "Novel")
	require.NoError(t, err)

	w, err := resolveBook(s, novel.ID)
	require.NoError(t, err)
	assert.Equal(t, "Novel", w.Title)

	w, err = resolveBook(s, "NOVEL")
	require.NoError(t, err)
	assert.Equal(t, novel.ID, w.ID)

	_, err = resolveBook(s, "Poems")
	assert.Error(t, err)
}

func TestNodeWriteAndExport(t *testing.T) {
	s := newTestService(t)

	_, err := run(t, s, NewNodeCmd, "new", "--folder", "Part")
	require.NoError(t, err)
	out, err := run(t, s, NewNodeCmd, "new", "Scene", "--parent", "Part")
	require.NoError(t, err)
	id := strings.TrimSpace(out)

	_, err = run(t, s, NewNodeCmd, "write", "Scene", "hello")
	require.NoError(t, err)
	n, err := s.Node(id)
	require.NoError(t, err)
	assert.Equal(t, "hello", n.Content)
	assert.Equal(t, 1, n.WordCount)

	out, err = run(t, s, NewNodeCmd, "show", "Part")
	require.NoError(t, err)
	assert.Contains(t, out, "items: 1  words: 1")

	out, err = run(t, s, NewExportCmd)
	require.NoError(t, err)
	assert.Equal(t, "# My First Book\n\n## Part\n\n### Scene\n\nhello\n", out)

	_, err = run(t, s, NewExportCmd, "--format", "pdf")
	assert.Error(t, err)
}

func TestNodeRemoveAsksFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	file, err := s.CreateNode(ctx, models.KindFile, "", "Draft")
	require.NoError(t, err)
	require.NoError(t, s.UpdateContent(ctx, file, "keep me"))

	out, err := run(t, s, NewNodeCmd, "rm", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	n, err := s.Node(file)
	require.NoError(t, err)
	assert.Equal(t, "keep me", n.Content)

	_, err = runWithInput(t, s, "no\n", NewNodeCmd, "rm", file)
	require.NoError(t, err)
	_, err = s.Node(file)
	require.NoError(t, err)

	out, err = runWithInput(t, s, "y\n", NewNodeCmd, "rm", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 node(s)")
	_, err = s.Node(file)
	assert.ErrorIs(t, err, models.ErrNotFound)

	folder, err := s.CreateNode(ctx, models.KindFolder, "", "Part")
	require.NoError(t, err)
	_, err = run(t, s, NewNodeCmd, "rm", folder, "--yes")
	require.NoError(t, err)
	_, err = s.Node(folder)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSaveWithoutTargetUsesPicker(t *testing.T) {
	fs := afero.NewMemMapFs()
	asked := 0
	prompter := func(context.Context, string, binding.Mode) (bool, error) {
		asked++
		return true, nil
	}
	s := newTestService(t, service.WithPicker(FilePicker(fs, "/books", prompter)))

	ctx := context.Background()
	id, err := s.CreateNode(ctx, models.KindFile, "", "Chapter One")
	require.NoError(t, err)
	require.NoError(t, s.UpdateContent(ctx, id, "It begins."))

	out, err := run(t, s, NewSaveCmd, "Chapter One")
	require.NoError(t, err)
	assert.Contains(t, out, "/books/chapter-one.md")
	assert.Equal(t, 1, asked)

	data, err := afero.ReadFile(fs, "/books/chapter-one.md")
	require.NoError(t, err)
	fm, body, err := frontmatter.Parse(string(data))
	require.NoError(t, err)
	require.NotNil(t, fm)
	assert.Equal(t, "Chapter One", fm.Title)
	assert.Equal(t, "It begins.", body)
}

func TestFlagPrompterHonoursYes(t *testing.T) {
	c := &cobra.Command{Use: "x"}
	yes := c.Flags().BoolP("yes", "y", false, "")
	c.SetIn(strings.NewReader(""))
	c.SetErr(io.Discard)

	ok, err := FlagPrompter(c)(context.Background(), "a.md", binding.ModeReadWrite)
	require.NoError(t, err)
	assert.False(t, ok, "empty input declines")

	*yes = true
	ok, err = FlagPrompter(c)(context.Background(), "a.md", binding.ModeReadWrite)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRenderTree(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	part, err := s.CreateNode(ctx, models.KindFolder, "", "Part")
	require.NoError(t, err)
	scene, err := s.CreateNode(ctx, models.KindFile, part, "Scene")
	require.NoError(t, err)
	require.NoError(t, s.UpdateContent(ctx, scene, "two words"))

	root, err := s.Tree("")
	require.NoError(t, err)

	var buf bytes.Buffer
	renderTree(&buf, root, treeOptions{active: scene, showIDs: true})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], service.DefaultWorkspaceTitle)
	assert.Contains(t, lines[1], "└── ")
	assert.Contains(t, lines[1], "Part")
	assert.Contains(t, lines[2], "● Scene")
	assert.Contains(t, lines[2], "2 words")
	assert.Contains(t, lines[2], scene)

	s.ToggleFolder(ctx, part)
	root, err = s.Tree("")
	require.NoError(t, err)
	buf.Reset()
	renderTree(&buf, root, treeOptions{})
	assert.NotContains(t, buf.String(), "Scene")

	buf.Reset()
	renderTree(&buf, root, treeOptions{expandAll: true})
	assert.Contains(t, buf.String(), "Scene")
}
