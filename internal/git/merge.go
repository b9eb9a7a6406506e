package git

import (
	"path"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// mergeTrees performs a three-way merge at whole-file granularity. A path
// changed identically on both sides, or on one side only, merges cleanly;
// a path changed differently on both sides is a conflict. So is a file
// that the other side turned into a directory.
func mergeTrees(base, ours, theirs map[string]treeEntry) (map[string]treeEntry, []string) {
	paths := make(map[string]struct{}, len(ours)+len(theirs))
	for _, m := range []map[string]treeEntry{base, ours, theirs} {
		for p := range m {
			paths[p] = struct{}{}
		}
	}

	merged := make(map[string]treeEntry, len(paths))
	var conflicts []string
	for p := range paths {
		b, inBase := base[p]
		o, inOurs := ours[p]
		t, inTheirs := theirs[p]

		var (
			e    treeEntry
			keep bool
		)
		switch {
		case sameEntry(o, inOurs, t, inTheirs):
			e, keep = o, inOurs
		case sameEntry(b, inBase, o, inOurs):
			e, keep = t, inTheirs
		case sameEntry(b, inBase, t, inTheirs):
			e, keep = o, inOurs
		default:
			conflicts = append(conflicts, p)
			continue
		}
		if keep {
			merged[p] = e
		}
	}
	for _, p := range dirCollisions(merged) {
		delete(merged, p)
		conflicts = append(conflicts, p)
	}
	sort.Strings(conflicts)
	return merged, conflicts
}

// dirCollisions returns the merged files whose path is also a parent
// directory of another merged path.
func dirCollisions(merged map[string]treeEntry) []string {
	seen := map[string]struct{}{}
	for p := range merged {
		for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
			if _, ok := merged[dir]; ok {
				seen[dir] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	return out
}

func sameEntry(a treeEntry, inA bool, b treeEntry, inB bool) bool {
	if inA != inB {
		return false
	}
	return !inA || (a.hash == b.hash && a.mode == b.mode)
}

type treeNode struct {
	files map[string]treeEntry
	dirs  map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{files: map[string]treeEntry{}, dirs: map[string]*treeNode{}}
}

// writeTree stores the flattened entries as tree objects and returns the
// root tree hash.
func writeTree(repo *gogit.Repository, entries map[string]treeEntry) (plumbing.Hash, error) {
	root := newTreeNode()
	for p, e := range entries {
		node := root
		parts := strings.Split(p, "/")
		for _, dir := range parts[:len(parts)-1] {
			child, ok := node.dirs[dir]
			if !ok {
				child = newTreeNode()
				node.dirs[dir] = child
			}
			node = child
		}
		node.files[parts[len(parts)-1]] = e
	}
	return writeTreeNode(repo, root)
}

func writeTreeNode(repo *gogit.Repository, node *treeNode) (plumbing.Hash, error) {
	type sortable struct {
		key   string
		entry object.TreeEntry
	}
	items := make([]sortable, 0, len(node.files)+len(node.dirs))
	for name, e := range node.files {
		items = append(items, sortable{key: name, entry: object.TreeEntry{Name: name, Mode: e.mode, Hash: e.hash}})
	}
	for name, child := range node.dirs {
		h, err := writeTreeNode(repo, child)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		items = append(items, sortable{key: name + "/", entry: object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: h}})
	}
	// Directories sort as if their name ended in "/".
	sort.Slice(items, func(i, j int) bool { return items[i].key < items[j].key })

	tree := &object.Tree{}
	for _, it := range items {
		tree.Entries = append(tree.Entries, it.entry)
	}
	obj := repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, withKind(ErrObjectAccess, "encode tree", err)
	}
	h, err := repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, withKind(ErrObjectAccess, "store tree", err)
	}
	return h, nil
}

func writeCommit(repo *gogit.Repository, c *object.Commit) (plumbing.Hash, error) {
	obj := repo.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		return plumbing.ZeroHash, withKind(ErrObjectAccess, "encode commit", err)
	}
	h, err := repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, withKind(ErrObjectAccess, "store commit", err)
	}
	return h, nil
}

// mergeBase returns the flattened tree of the best common ancestor, or an
// empty view for unrelated histories.
func mergeBase(a, b *object.Commit) (map[string]treeEntry, error) {
	bases, err := a.MergeBase(b)
	if err != nil {
		return nil, withKind(ErrObjectAccess, "merge base", err)
	}
	if len(bases) == 0 {
		return map[string]treeEntry{}, nil
	}
	return commitEntries(bases[0])
}
