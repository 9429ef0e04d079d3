// Package domain contains the core domain model for the weft build graph.
package domain

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/zerr"
)

// Tree owns every Node of a build. Nodes are interned by their canonical
// slash-separated path relative to the build root, so two lookups of the
// same file always return the same handle and maps keyed by Node identity
// behave like maps keyed by path.
type Tree struct {
	root string

	mu    sync.Mutex
	nodes map[string]*Node
}

// NewTree creates a Tree rooted at the given directory.
func NewTree(root string) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve build root"), "root", root)
	}
	return &Tree{
		root:  abs,
		nodes: make(map[string]*Node),
	}, nil
}

// Root returns the absolute path of the build root.
func (t *Tree) Root() string {
	return t.root
}

// canonical normalizes a path to the interning key: cleaned, slash-separated,
// relative to the build root.
func canonical(rel string) string {
	return path.Clean(filepath.ToSlash(rel))
}

// FindNode returns the node for the given root-relative path if the file
// exists on disk or has been declared before. It returns nil otherwise.
func (t *Tree) FindNode(rel string) *Node {
	key := canonical(rel)

	t.mu.Lock()
	defer t.mu.Unlock()

	if n, ok := t.nodes[key]; ok {
		return n
	}
	if _, err := os.Stat(filepath.Join(t.root, filepath.FromSlash(key))); err != nil {
		return nil
	}
	n := &Node{tree: t, rel: key}
	t.nodes[key] = n
	return n
}

// FindOrDeclare returns the node for the given root-relative path, creating
// it if necessary. Declared nodes may name files that do not exist yet
// (build outputs).
func (t *Tree) FindOrDeclare(rel string) *Node {
	key := canonical(rel)

	t.mu.Lock()
	defer t.mu.Unlock()

	if n, ok := t.nodes[key]; ok {
		return n
	}
	n := &Node{tree: t, rel: key}
	t.nodes[key] = n
	return n
}

// Node is an immutable handle to a file path owned by a Tree.
type Node struct {
	tree *Tree
	rel  string
}

// Name returns the base name of the node.
func (n *Node) Name() string {
	return path.Base(n.rel)
}

// Rel returns the canonical path of the node relative to the build root.
func (n *Node) Rel() string {
	return n.rel
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	return n.rel
}

// Abs returns the absolute filesystem path of the node.
func (n *Node) Abs() string {
	return filepath.Join(n.tree.root, filepath.FromSlash(n.rel))
}

// Dir returns the node of the containing directory.
func (n *Node) Dir() *Node {
	return n.tree.FindOrDeclare(path.Dir(n.rel))
}

// Find looks up a path relative to this node's directory entry.
// It returns nil if the target neither exists on disk nor was declared.
func (n *Node) Find(name string) *Node {
	return n.tree.FindNode(path.Join(n.rel, name))
}

// FindOrDeclare declares a path relative to this node's directory entry.
func (n *Node) FindOrDeclare(name string) *Node {
	return n.tree.FindOrDeclare(path.Join(n.rel, name))
}

// ChangeExt returns the sibling node obtained by stripping the extension
// and appending the given suffix. The suffix is usually an extension with
// its leading dot, but any suffix works (rcc outputs use "_rc.cpp").
func (n *Node) ChangeExt(ext string) *Node {
	return n.tree.FindOrDeclare(strings.TrimSuffix(n.rel, path.Ext(n.rel)) + ext)
}

// PathFrom returns the relative slash-separated path from the given
// directory node to this node.
func (n *Node) PathFrom(dir *Node) string {
	rel, err := filepath.Rel(filepath.FromSlash(dir.rel), filepath.FromSlash(n.rel))
	if err != nil {
		return n.rel
	}
	return filepath.ToSlash(rel)
}

// Read returns the file content of the node.
func (n *Node) Read() ([]byte, error) {
	data, err := os.ReadFile(n.Abs()) //nolint:gosec // Paths come from the build graph
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read node"), "path", n.rel)
	}
	return data, nil
}

// Write replaces the file content of the node, creating parent directories
// as needed.
func (n *Node) Write(data []byte) error {
	abs := n.Abs()
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create node directory"), "path", n.rel)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil { //nolint:gosec // Build outputs are world-readable
		return zerr.With(zerr.Wrap(err, "failed to write node"), "path", n.rel)
	}
	return nil
}
