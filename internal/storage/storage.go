// Package storage provides the storage capability every other layer reads and
// writes through. Paths are slash-separated and absolute within a fixed root.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	pathpkg "path"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/log"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/utils"
)

const probeName = ".codecanvas-probe"

var logger = log.Component("storage")

// Entry is one raw listing result.
type Entry struct {
	Name        string
	IsDirectory bool
	Symlink     bool
}

// Info describes a single path.
type Info struct {
	Kind    models.NodeKind
	Size    int64
	ModTime time.Time
}

// FS is the storage capability consumed by the file tree, search and VCS layers.
type FS interface {
	List(path string) ([]Entry, error)
	Stat(path string) (Info, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	Mkdir(path string, recursive bool) error
	Delete(path string) error
	Rename(oldPath, newPath string) error
	Exists(path string) bool
}

// Store implements FS over a billy filesystem.
type Store struct {
	fs    billy.Filesystem
	local string // OS directory backing the store, empty for memory stores
}

// NewOS returns a store rooted at dir, creating it when missing.
func NewOS(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, utils.DefaultDirPerms); err != nil {
		return nil, mapError("create storage root", dir, err)
	}
	return &Store{fs: osfs.New(dir), local: dir}, nil
}

// NewMemory returns an in-memory store.
func NewMemory() *Store {
	return &Store{fs: memfs.New()}
}

// New wraps an existing billy filesystem.
func New(bfs billy.Filesystem) *Store {
	return &Store{fs: bfs}
}

// Clean normalises p into the absolute slash form used as node keys.
func Clean(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return pathpkg.Clean("/" + p)
}

// Join joins a parent path and a child name.
func Join(parent, name string) string {
	return Clean(pathpkg.Join(parent, name))
}

// Base returns the last element of p, or "/" for the root.
func Base(p string) string {
	return pathpkg.Base(Clean(p))
}

// Dir returns the parent of p.
func Dir(p string) string {
	return pathpkg.Dir(Clean(p))
}

// Rel returns p relative to base, or ok=false when p is outside base.
func Rel(base, p string) (string, bool) {
	base, p = Clean(base), Clean(p)
	if base == p {
		return ".", true
	}
	prefix := base
	if prefix != "/" {
		prefix += "/"
	}
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return strings.TrimPrefix(p, prefix), true
}

func toBilly(p string) string {
	p = strings.TrimPrefix(Clean(p), "/")
	if p == "" {
		return "."
	}
	return p
}

// LocalPath returns the OS path backing p, when the store lives on disk.
func (s *Store) LocalPath(p string) (string, bool) {
	if s.local == "" {
		return "", false
	}
	rel := strings.TrimPrefix(Clean(p), "/")
	if rel == "" {
		return s.local, true
	}
	return s.local + string(os.PathSeparator) + strings.ReplaceAll(rel, "/", string(os.PathSeparator)), true
}

// Sub returns a billy filesystem chrooted at p.
func (s *Store) Sub(p string) (billy.Filesystem, error) {
	info, err := s.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.Kind != models.KindDirectory {
		return nil, apperr.FileSystem(apperr.CodeNotADirectory, "not a directory: "+Clean(p), nil)
	}
	if Clean(p) == "/" {
		return s.fs, nil
	}
	sub, err := s.fs.Chroot(toBilly(p))
	if err != nil {
		return nil, mapError("chroot", p, err)
	}
	return sub, nil
}

// CheckPermission probes the root for read and write access.
func (s *Store) CheckPermission() error {
	if err := util.WriteFile(s.fs, probeName, []byte("ok"), utils.DefaultFilePerms); err != nil {
		return apperr.FileSystem(apperr.CodePermissionDenied, "storage root is not writable", err)
	}
	defer func() { _ = s.fs.Remove(probeName) }()
	if _, err := util.ReadFile(s.fs, probeName); err != nil {
		return apperr.FileSystem(apperr.CodePermissionDenied, "storage root is not readable", err)
	}
	return nil
}

// List returns the raw entries of a directory, in storage order.
func (s *Store) List(p string) ([]Entry, error) {
	infos, err := s.fs.ReadDir(toBilly(p))
	if err != nil {
		return nil, mapError("list", p, err)
	}
	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		if fi.Name() == probeName {
			continue
		}
		entries = append(entries, Entry{
			Name:        fi.Name(),
			IsDirectory: fi.IsDir(),
			Symlink:     fi.Mode()&os.ModeSymlink != 0,
		})
	}
	return entries, nil
}

// Stat describes a single path.
func (s *Store) Stat(p string) (Info, error) {
	if Clean(p) == "/" {
		return Info{Kind: models.KindDirectory}, nil
	}
	fi, err := s.fs.Stat(toBilly(p))
	if err != nil {
		return Info{}, mapError("stat", p, err)
	}
	info := Info{Kind: models.KindFile, Size: fi.Size(), ModTime: fi.ModTime()}
	if fi.IsDir() {
		info.Kind = models.KindDirectory
		info.Size = 0
	}
	return info, nil
}

// ReadFile returns the full content of a file.
func (s *Store) ReadFile(p string) ([]byte, error) {
	info, err := s.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.Kind == models.KindDirectory {
		return nil, apperr.FileSystem(apperr.CodeIOFailure, "is a directory: "+Clean(p), nil)
	}
	data, err := util.ReadFile(s.fs, toBilly(p))
	if err != nil {
		return nil, mapError("read", p, err)
	}
	return data, nil
}

// WriteFile replaces the content of a file, creating it when missing.
func (s *Store) WriteFile(p string, data []byte) error {
	if info, err := s.Stat(p); err == nil && info.Kind == models.KindDirectory {
		return apperr.FileSystem(apperr.CodeIOFailure, "is a directory: "+Clean(p), nil)
	}
	if err := util.WriteFile(s.fs, toBilly(p), data, utils.DefaultFilePerms); err != nil {
		return mapError("write", p, err)
	}
	return nil
}

// Mkdir creates a directory. Without recursive, the parent must exist and the
// path must not.
func (s *Store) Mkdir(p string, recursive bool) error {
	if info, err := s.Stat(p); err == nil {
		if recursive && info.Kind == models.KindDirectory {
			return nil
		}
		return apperr.FileSystem(apperr.CodeAlreadyExists, "already exists: "+Clean(p), nil)
	}
	if !recursive {
		parent, err := s.Stat(Dir(p))
		if err != nil {
			return err
		}
		if parent.Kind != models.KindDirectory {
			return apperr.FileSystem(apperr.CodeNotADirectory, "not a directory: "+Dir(p), nil)
		}
	}
	if err := s.fs.MkdirAll(toBilly(p), utils.DefaultDirPerms); err != nil {
		return mapError("mkdir", p, err)
	}
	return nil
}

// Delete removes a file or a directory with everything below it.
func (s *Store) Delete(p string) error {
	if Clean(p) == "/" {
		return apperr.FileSystem(apperr.CodePermissionDenied, "refusing to delete the storage root", nil)
	}
	if _, err := s.Stat(p); err != nil {
		return err
	}
	if err := util.RemoveAll(s.fs, toBilly(p)); err != nil {
		return mapError("delete", p, err)
	}
	return nil
}

// Rename moves oldPath to newPath. The destination must not exist.
func (s *Store) Rename(oldPath, newPath string) error {
	if _, err := s.Stat(oldPath); err != nil {
		return err
	}
	if s.Exists(newPath) {
		return apperr.FileSystem(apperr.CodeAlreadyExists, "already exists: "+Clean(newPath), nil)
	}
	if info, _ := s.fs.Lstat(toBilly(oldPath)); s.local == "" && info != nil && info.IsDir() {
		// memfs renames directories entry by entry and can leave the source behind
		if err := moveTree(s.fs, toBilly(oldPath), toBilly(newPath)); err != nil {
			return mapError("rename", oldPath, err)
		}
		return nil
	}
	if err := s.fs.Rename(toBilly(oldPath), toBilly(newPath)); err != nil {
		return mapError("rename", oldPath, err)
	}
	return nil
}

// moveTree copies the directory src to dst, then removes src.
func moveTree(bfs billy.Filesystem, src, dst string) error {
	if err := copyTree(bfs, src, dst); err != nil {
		return err
	}
	return util.RemoveAll(bfs, src)
}

func copyTree(bfs billy.Filesystem, src, dst string) error {
	if err := bfs.MkdirAll(dst, utils.DefaultDirPerms); err != nil {
		return err
	}
	infos, err := bfs.ReadDir(src)
	if err != nil {
		return err
	}
	for _, fi := range infos {
		from := bfs.Join(src, fi.Name())
		to := bfs.Join(dst, fi.Name())
		switch {
		case fi.Mode()&os.ModeSymlink != 0:
			target, err := bfs.Readlink(from)
			if err != nil {
				return err
			}
			if err := bfs.Symlink(target, to); err != nil {
				return err
			}
		case fi.IsDir():
			if err := copyTree(bfs, from, to); err != nil {
				return err
			}
		default:
			data, err := util.ReadFile(bfs, from)
			if err != nil {
				return err
			}
			if err := util.WriteFile(bfs, to, data, fi.Mode().Perm()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Exists reports whether p can be stat'ed.
func (s *Store) Exists(p string) bool {
	_, err := s.Stat(p)
	return err == nil
}

func mapError(op, p string, err error) error {
	code := apperr.CodeIOFailure
	switch {
	case errors.Is(err, fs.ErrNotExist):
		code = apperr.CodeNotFound
	case errors.Is(err, fs.ErrExist):
		code = apperr.CodeAlreadyExists
	case errors.Is(err, fs.ErrPermission):
		code = apperr.CodePermissionDenied
	}
	if code == apperr.CodeIOFailure || code == apperr.CodePermissionDenied {
		logger.WithField("code", code).Warnf("%s %s: %v", op, p, err)
	}
	return apperr.FileSystem(code, fmt.Sprintf("%s %s", op, Clean(p)), err)
}
