package tree

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-writer/pkg/models"
)

type rootSet map[string]bool

func (r rootSet) IsRoot(id string) bool { return r[id] }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
}

// newTestTree returns a mutator with one registered root.
func newTestTree(t *testing.T) (*Mutator, string) {
	t.Helper()
	clock := time.Date(2025, 1, 11, 10, 0, 0, 0, time.UTC)
	m := NewMutator(NewStore(), WithIDGenerator(sequentialIDs()), WithClock(func() time.Time { return clock }))
	root, err := m.CreateRoot("Demo")
	require.NoError(t, err)
	m.SetRoots(rootSet{root: true})
	return m, root
}

func assertForest(t *testing.T, m *Mutator) {
	t.Helper()
	require.NoError(t, Validate(m.Store()))
}

func TestCreateNodeDefaults(t *testing.T) {
	m, root := newTestTree(t)

	folderID, err := m.CreateNode(models.KindFolder, root, "")
	require.NoError(t, err)
	fileID, err := m.CreateNode(models.KindFile, folderID, "")
	require.NoError(t, err)

	folder, ok := m.Store().Get(folderID)
	require.True(t, ok)
	assert.Equal(t, "New Folder", folder.Title)
	assert.True(t, folder.IsOpen)
	assert.Equal(t, []string{fileID}, folder.Children)

	file, ok := m.Store().Get(fileID)
	require.True(t, ok)
	assert.Equal(t, "Untitled", file.Title)
	assert.Equal(t, models.DefaultCategory, file.Category)
	assert.Equal(t, 0, file.WordCount)
	assert.Empty(t, file.Content)
	assert.Equal(t, folderID, file.ParentID)

	assertForest(t, m)
}

func TestCreateNodeOpensParent(t *testing.T) {
	m, root := newTestTree(t)
	folderID, _ := m.CreateNode(models.KindFolder, root, "Drafts")
	m.ToggleFolder(folderID)

	_, err := m.CreateNode(models.KindFile, folderID, "Ch1")
	require.NoError(t, err)

	folder, _ := m.Store().Get(folderID)
	assert.True(t, folder.IsOpen)
}

func TestCreateNodeInvalidParent(t *testing.T) {
	m, root := newTestTree(t)
	fileID, _ := m.CreateNode(models.KindFile, root, "Ch1")
	before := m.Store().Len()

	_, err := m.CreateNode(models.KindFile, fileID, "child of file")
	assert.ErrorIs(t, err, models.ErrInvalidParent)

	_, err = m.CreateNode(models.KindFolder, "missing", "x")
	assert.ErrorIs(t, err, models.ErrInvalidParent)

	assert.Equal(t, before, m.Store().Len())
	assertForest(t, m)
}

func TestRenameNode(t *testing.T) {
	m, root := newTestTree(t)
	fileID, _ := m.CreateNode(models.KindFile, root, "Ch1")

	require.NoError(t, m.RenameNode(fileID, "Chapter One"))
	file, _ := m.Store().Get(fileID)
	assert.Equal(t, "Chapter One", file.Title)

	// Sibling titles need not be unique.
	other, _ := m.CreateNode(models.KindFile, root, "Chapter One")
	require.NoError(t, m.RenameNode(other, "Chapter One"))

	assert.ErrorIs(t, m.RenameNode("missing", "x"), models.ErrNotFound)
}

func TestDeleteScenario(t *testing.T) {
	m, root := newTestTree(t)

	drafts, err := m.CreateNode(models.KindFolder, root, "Drafts")
	require.NoError(t, err)
	ch1, err := m.CreateNode(models.KindFile, drafts, "Ch1")
	require.NoError(t, err)
	require.NoError(t, m.UpdateContent(ch1, "Hello world"))

	file, _ := m.Store().Get(ch1)
	assert.Equal(t, 2, file.WordCount)

	change, err := m.DeleteNode(drafts)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{drafts, ch1}, change.Removed)
	assert.True(t, change.Affects(ch1))
	assert.False(t, change.Affects(root))

	_, ok := m.Store().Get(drafts)
	assert.False(t, ok)
	_, ok = m.Store().Get(ch1)
	assert.False(t, ok)

	rootNode, _ := m.Store().Get(root)
	assert.Empty(t, rootNode.Children)
	assertForest(t, m)
}

func TestDeleteCascadeCompleteness(t *testing.T) {
	m, root := newTestTree(t)
	a, _ := m.CreateNode(models.KindFolder, root, "A")
	b, _ := m.CreateNode(models.KindFolder, a, "B")
	c, _ := m.CreateNode(models.KindFolder, b, "C")
	f1, _ := m.CreateNode(models.KindFile, c, "deep")
	f2, _ := m.CreateNode(models.KindFile, a, "shallow")
	keep, _ := m.CreateNode(models.KindFile, root, "keep")

	_, err := m.DeleteNode(a)
	require.NoError(t, err)

	for _, id := range []string{a, b, c, f1, f2} {
		_, ok := m.Store().Get(id)
		assert.False(t, ok, "expected %s to be removed", id)
		assert.True(t, m.Store().Retired(id))
	}
	for _, n := range m.Store().Nodes() {
		assert.NotEqual(t, a, n.ParentID)
	}
	_, ok := m.Store().Get(keep)
	assert.True(t, ok)
	assertForest(t, m)

	// Deleted ids stay unresolvable.
	assert.ErrorIs(t, m.RenameNode(f1, "back"), models.ErrNotFound)
	_, err = m.DeleteNode(a)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteRootForbidden(t *testing.T) {
	m, root := newTestTree(t)
	_, _ = m.CreateNode(models.KindFile, root, "Ch1")
	before := m.Store().Len()

	_, err := m.DeleteNode(root)
	assert.ErrorIs(t, err, models.ErrRootDeletionForbidden)
	assert.Equal(t, before, m.Store().Len())
}

func TestDeleteDanglingRoot(t *testing.T) {
	m, _ := newTestTree(t)
	orphan, err := m.CreateRoot("orphan")
	require.NoError(t, err)
	child, err := m.CreateNode(models.KindFile, orphan, "lost")
	require.NoError(t, err)

	change, err := m.DeleteNode(orphan)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{orphan, child}, change.Removed)
	assertForest(t, m)
}

func TestToggleFolderNeverFails(t *testing.T) {
	m, root := newTestTree(t)
	folder, _ := m.CreateNode(models.KindFolder, root, "Drafts")
	file, _ := m.CreateNode(models.KindFile, root, "Ch1")

	assert.False(t, m.ToggleFolder(folder))
	assert.True(t, m.ToggleFolder(folder))
	assert.False(t, m.ToggleFolder(file))
	assert.False(t, m.ToggleFolder("missing"))

	n, _ := m.Store().Get(file)
	assert.False(t, n.IsOpen)
}

func TestMoveScenario(t *testing.T) {
	m, root := newTestTree(t)
	a, _ := m.CreateNode(models.KindFolder, root, "A")
	b, _ := m.CreateNode(models.KindFolder, root, "B")
	ch1, _ := m.CreateNode(models.KindFile, a, "Ch1")
	m.ToggleFolder(b)

	change, err := m.MoveNode(ch1, b)
	require.NoError(t, err)
	assert.True(t, change.Affects(ch1))

	folderA, _ := m.Store().Get(a)
	folderB, _ := m.Store().Get(b)
	file, _ := m.Store().Get(ch1)

	assert.NotContains(t, folderA.Children, ch1)
	assert.Equal(t, []string{ch1}, folderB.Children)
	assert.Equal(t, b, file.ParentID)
	assert.True(t, folderB.IsOpen)
	assertForest(t, m)
}

func TestMoveIntoOwnChildFails(t *testing.T) {
	m, root := newTestTree(t)
	a, _ := m.CreateNode(models.KindFolder, root, "A")
	b, _ := m.CreateNode(models.KindFolder, a, "B")
	c, _ := m.CreateNode(models.KindFolder, b, "C")

	snapshot := map[string]*models.Node{}
	for _, n := range m.Store().Nodes() {
		snapshot[n.ID] = n.Clone()
	}

	for _, target := range []string{a, b, c} {
		_, err := m.MoveNode(a, target)
		assert.ErrorIs(t, err, models.ErrCycleDetected, "target %s", target)
	}

	for _, n := range m.Store().Nodes() {
		assert.Equal(t, snapshot[n.ID], n)
	}
}

func TestMoveErrors(t *testing.T) {
	m, root := newTestTree(t)
	file, _ := m.CreateNode(models.KindFile, root, "Ch1")
	other, _ := m.CreateNode(models.KindFile, root, "Ch2")

	_, err := m.MoveNode("missing", root)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = m.MoveNode(file, other)
	assert.ErrorIs(t, err, models.ErrInvalidParent)

	_, err = m.MoveNode(file, "missing")
	assert.ErrorIs(t, err, models.ErrInvalidParent)

	otherRoot, _ := m.CreateRoot("Other")
	m.SetRoots(rootSet{root: true, otherRoot: true})
	_, err = m.MoveNode(otherRoot, root)
	assert.ErrorIs(t, err, models.ErrInvalidParent)
}

func TestMoveAtIndex(t *testing.T) {
	m, root := newTestTree(t)
	a, _ := m.CreateNode(models.KindFile, root, "a")
	b, _ := m.CreateNode(models.KindFile, root, "b")
	c, _ := m.CreateNode(models.KindFile, root, "c")
	folder, _ := m.CreateNode(models.KindFolder, root, "f")
	x, _ := m.CreateNode(models.KindFile, folder, "x")

	tests := []struct {
		name  string
		id    string
		index int
		want  []string
	}{
		{"reorder to front", c, 0, []string{c, a, b, folder}},
		{"reorder to middle", folder, 1, []string{c, folder, a, b}},
		{"clamp past end", c, 99, []string{folder, a, b, c}},
		{"insert from other parent", x, 2, []string{folder, a, x, b, c}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.MoveNode(tt.id, root, AtIndex(tt.index))
			require.NoError(t, err)
			rootNode, _ := m.Store().Get(root)
			assert.Equal(t, tt.want, rootNode.Children)
			assertForest(t, m)
		})
	}
}

func TestUpdateContentWordCount(t *testing.T) {
	m, root := newTestTree(t)
	file, _ := m.CreateNode(models.KindFile, root, "Ch1")

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   \n\t ", 0},
		{"  a   b  ", 2},
		{"Hello world", 2},
		{"one\ntwo\tthree", 3},
	}

	for _, tt := range tests {
		require.NoError(t, m.UpdateContent(file, tt.text))
		n, _ := m.Store().Get(file)
		assert.Equal(t, tt.want, n.WordCount, "text %q", tt.text)
		assert.Equal(t, tt.text, n.Content)
	}

	folder, _ := m.CreateNode(models.KindFolder, root, "Drafts")
	assert.ErrorIs(t, m.UpdateContent(folder, "text"), models.ErrNotAFile)
	assert.ErrorIs(t, m.UpdateContent("missing", "text"), models.ErrNotFound)
}

func TestUpdateTags(t *testing.T) {
	m, root := newTestTree(t)
	file, _ := m.CreateNode(models.KindFile, root, "Ch1")
	folder, _ := m.CreateNode(models.KindFolder, root, "Drafts")

	require.NoError(t, m.UpdateTags(file, []string{"plot", " Plot ", "", "draft", "plot"}))
	n, _ := m.Store().Get(file)
	assert.Equal(t, []string{"plot", "draft"}, n.Tags)

	require.NoError(t, m.UpdateTags(folder, []string{"ignored"}))
	f, _ := m.Store().Get(folder)
	assert.Empty(t, f.Tags)

	assert.ErrorIs(t, m.UpdateTags("missing", nil), models.ErrNotFound)
}

func TestUpdateCategory(t *testing.T) {
	m, root := newTestTree(t)
	file, _ := m.CreateNode(models.KindFile, root, "Ch1")

	require.NoError(t, m.UpdateCategory(file, models.CategoryChapter))
	n, _ := m.Store().Get(file)
	assert.Equal(t, models.CategoryChapter, n.Category)
}

func TestBulkReorganize(t *testing.T) {
	m, root := newTestTree(t)
	inbox, _ := m.CreateNode(models.KindFolder, root, "Inbox")
	f1, _ := m.CreateNode(models.KindFile, inbox, "hero")
	f2, _ := m.CreateNode(models.KindFile, inbox, "villain")
	f3, _ := m.CreateNode(models.KindFile, root, "opening")

	moves := []FolderMove{
		{TargetFolderName: "Characters", FileIDs: []string{f1, f2, "stale"}},
		{TargetFolderName: "Chapters", FileIDs: []string{f3, inbox}},
	}

	report, err := m.BulkReorganize(moves, root)
	require.NoError(t, err)
	require.Len(t, report.Folders, 2)
	assert.Equal(t, []string{f1, f2, f3}, report.Moved)
	assert.Equal(t, []SkippedFile{{ID: "stale", Reason: "not found"}, {ID: inbox, Reason: "not a file"}}, report.Skipped)

	chars, _ := m.Store().Get(report.Folders[0])
	assert.Equal(t, "Characters", chars.Title)
	assert.Equal(t, []string{f1, f2}, chars.Children)
	assertForest(t, m)
}

func TestBulkReorganizeTwiceDoesNotDuplicate(t *testing.T) {
	m, root := newTestTree(t)
	f1, _ := m.CreateNode(models.KindFile, root, "hero")
	f2, _ := m.CreateNode(models.KindFile, root, "villain")
	moves := []FolderMove{{TargetFolderName: "Characters", FileIDs: []string{f1, f2}}}

	_, err := m.BulkReorganize(moves, root)
	require.NoError(t, err)
	_, err = m.DeleteNode(f2)
	require.NoError(t, err)

	report, err := m.BulkReorganize(moves, root)
	require.NoError(t, err)
	assert.Equal(t, []SkippedFile{{ID: f2, Reason: "not found"}}, report.Skipped)

	owners := 0
	for _, n := range m.Store().Nodes() {
		if n.HasChild(f1) {
			owners++
		}
	}
	assert.Equal(t, 1, owners)
	assertForest(t, m)
}

func TestBulkReorganizeInvalidParent(t *testing.T) {
	m, root := newTestTree(t)
	file, _ := m.CreateNode(models.KindFile, root, "Ch1")
	before := m.Store().Len()

	_, err := m.BulkReorganize([]FolderMove{{TargetFolderName: "X", FileIDs: []string{file}}}, "missing")
	assert.ErrorIs(t, err, models.ErrInvalidParent)
	_, err = m.BulkReorganize([]FolderMove{{TargetFolderName: "X", FileIDs: []string{file}}}, file)
	assert.ErrorIs(t, err, models.ErrInvalidParent)
	assert.Equal(t, before, m.Store().Len())
}

func TestAllocatedIDsAreNeverReused(t *testing.T) {
	ids := []string{"a", "b", "a", "b", "c"}
	i := 0
	m := NewMutator(NewStore(), WithIDGenerator(func() string {
		id := ids[i]
		i++
		return id
	}))
	root, _ := m.CreateRoot("r") // a
	file, _ := m.CreateNode(models.KindFile, root, "x")
	require.Equal(t, "b", file)

	_, err := m.DeleteNode(file)
	require.NoError(t, err)

	next, err := m.CreateNode(models.KindFile, root, "y")
	require.NoError(t, err)
	assert.Equal(t, "c", next)
}
