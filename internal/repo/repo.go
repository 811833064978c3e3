// Package repo implements gitlet's repository operations on top of the
// object store in package dag.
//
// A Repository is opened once per invocation. Operations mutate its
// in-memory view of refs, the stage, the metadata index and the logs;
// Save writes that view back. Objects are written as soon as they are
// created, so anything a saved ref points at is already on disk.
package repo

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack"

	"github.com/systemshift/gitlet/internal/config"
	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
	"github.com/systemshift/gitlet/internal/logging"
)

const (
	// GitletDir is the metadata directory at the root of a working tree.
	GitletDir = ".gitlet"
	// DefaultBranch is the branch created by Init.
	DefaultBranch = "master"

	metaVersion = 1
)

// metaRecord is the msgpack-encoded META file.
type metaRecord struct {
	Version int        `msgpack:"version"`
	Index   *dag.Index `msgpack:"index"`
	Stage   *Stage     `msgpack:"stage"`
}

// logEdit is a pending change to one branch's materialized log.
type logEdit struct {
	text    string // prepended to the stored log, or the whole log if replace
	replace bool
	drop    bool
}

// Repository is the state of one gitlet repository for the duration of a
// single command.
type Repository struct {
	dir string // .gitlet

	Config   *config.Config
	Commits  *dag.ObjectStore
	Blobs    *dag.ObjectStore
	Staged   *dag.ObjectStore
	Refs     *dag.RefStore
	Logs     *dag.LogStore
	Graph    *dag.Graph
	Worktree *Worktree

	active string
	heads  map[string]string
	index  *dag.Index
	stage  *Stage

	dirtyRefs   map[string]bool
	droppedRefs map[string]bool
	logEdits    map[string]*logEdit
	globalText  string

	loc *time.Location
	now func() time.Time
	log zerolog.Logger
}

// Option configures a Repository at Open or Init.
type Option func(*Repository)

// WithClock overrides the time source used for commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithConfig supplies an already loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(r *Repository) { r.Config = cfg }
}

// Exists reports whether root contains a gitlet repository.
func Exists(root string) bool {
	info, err := os.Stat(filepath.Join(root, GitletDir))
	return err == nil && info.IsDir()
}

func newRepository(root string, opts []Option) (*Repository, error) {
	dir := filepath.Join(root, GitletDir)
	r := &Repository{
		dir:         dir,
		Worktree:    NewWorktree(root),
		heads:       map[string]string{},
		index:       dag.NewIndex(),
		stage:       NewStage(),
		dirtyRefs:   map[string]bool{},
		droppedRefs: map[string]bool{},
		logEdits:    map[string]*logEdit{},
		now:         time.Now,
		log:         logging.GetLogger("repo"),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.Config == nil {
		cfg, err := config.Load(dir)
		if err != nil {
			return nil, err
		}
		r.Config = cfg
	}
	loc, err := r.Config.Location()
	if err != nil {
		return nil, err
	}
	r.loc = loc

	if r.Commits, err = dag.NewObjectStore(filepath.Join(dir, "objects", "commits")); err != nil {
		return nil, err
	}
	if r.Blobs, err = dag.NewObjectStore(filepath.Join(dir, "objects", "blobs")); err != nil {
		return nil, err
	}
	if r.Staged, err = dag.NewObjectStore(filepath.Join(dir, "stage")); err != nil {
		return nil, err
	}
	if r.Refs, err = dag.NewRefStore(filepath.Join(dir, "refs")); err != nil {
		return nil, err
	}
	if r.Logs, err = dag.NewLogStore(filepath.Join(dir, "logs"), filepath.Join(dir, "global-log")); err != nil {
		return nil, err
	}
	r.Graph = dag.NewGraph(r.Commits)
	return r, nil
}

// Init creates a new repository in root with a single initial commit on
// the master branch, and saves it.
func Init(root string, opts ...Option) (*Repository, error) {
	if Exists(root) {
		return nil, errs.New(errs.KindAlreadyExists,
			"A Gitlet version-control system already exists in the current directory.")
	}
	if err := os.MkdirAll(filepath.Join(root, GitletDir), 0755); err != nil {
		return nil, errors.Wrap(err, "create .gitlet")
	}

	r, err := newRepository(root, opts)
	if err != nil {
		return nil, err
	}
	if err := config.Default().Write(r.dir); err != nil {
		return nil, err
	}

	c := dag.InitialCommit(DefaultBranch)
	id, err := r.Commits.StoreCommit(c)
	if err != nil {
		return nil, err
	}
	r.active = DefaultBranch
	r.setHead(DefaultBranch, id)
	r.recordCommit(id, c)

	if err := r.Save(); err != nil {
		return nil, err
	}
	r.log.Debug().Str("root", root).Str("commit", id).Msg("Initialized repository")
	return r, nil
}

// Open loads the repository rooted at root.
func Open(root string, opts ...Option) (*Repository, error) {
	if !Exists(root) {
		return nil, errs.ErrNotInitialized
	}
	r, err := newRepository(root, opts)
	if err != nil {
		return nil, err
	}

	active, err := os.ReadFile(filepath.Join(r.dir, "ACTIVE"))
	if err != nil {
		return nil, errs.Wrap(err, errs.KindNotInitialized, "Not in an initialized Gitlet directory.")
	}
	r.active = strings.TrimSpace(string(active))

	names, err := r.Refs.List()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		id, err := r.Refs.Get(name)
		if err != nil {
			return nil, err
		}
		r.heads[name] = id
	}
	if _, ok := r.heads[r.active]; !ok {
		return nil, errs.Newf(errs.KindInternal, "active branch %q has no ref", r.active)
	}

	if err := r.loadMeta(); err != nil {
		return nil, err
	}
	r.log.Debug().Str("branch", r.active).Str("head", r.heads[r.active]).Msg("Opened repository")
	return r, nil
}

func (r *Repository) loadMeta() error {
	data, err := os.ReadFile(filepath.Join(r.dir, "META"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read META")
	}
	var rec metaRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return errors.Wrap(err, "decode META")
	}
	if rec.Index != nil {
		r.index = rec.Index
	}
	if rec.Stage != nil {
		r.stage = rec.Stage
		r.stage.normalize()
	}
	return nil
}

// Save persists logs, refs, the active branch and the metadata record,
// then discards staged objects nothing refers to any more.
func (r *Repository) Save() error {
	for branch, e := range r.logEdits {
		var err error
		switch {
		case e.drop:
			err = r.Logs.DeleteBranch(branch)
		case e.replace:
			err = r.Logs.WriteBranch(branch, e.text)
		default:
			err = r.Logs.PrependBranch(branch, e.text)
		}
		if err != nil {
			return err
		}
	}
	if r.globalText != "" {
		if err := r.Logs.PrependGlobal(r.globalText); err != nil {
			return err
		}
	}
	r.logEdits = map[string]*logEdit{}
	r.globalText = ""

	for name := range r.dirtyRefs {
		if err := r.Refs.Set(name, r.heads[name]); err != nil {
			return err
		}
	}
	for name := range r.droppedRefs {
		if err := r.Refs.Delete(name); err != nil {
			return err
		}
	}
	r.dirtyRefs = map[string]bool{}
	r.droppedRefs = map[string]bool{}

	if err := dag.SafeWrite(filepath.Join(r.dir, "ACTIVE"), []byte(r.active), 0644); err != nil {
		return err
	}

	data, err := msgpack.Marshal(&metaRecord{Version: metaVersion, Index: r.index, Stage: r.stage})
	if err != nil {
		return errors.Wrap(err, "encode META")
	}
	if err := dag.SafeWrite(filepath.Join(r.dir, "META"), data, 0644); err != nil {
		return err
	}
	return r.pruneStage()
}

// pruneStage deletes staged blob objects no longer referenced by the stage.
func (r *Repository) pruneStage() error {
	ids, err := r.Staged.List()
	if err != nil {
		return err
	}
	live := make(map[string]bool, len(r.stage.Added))
	for _, id := range r.stage.Added {
		live[id] = true
	}
	for _, id := range ids {
		if live[id] {
			continue
		}
		if err := r.Staged.Delete(id); err != nil {
			return err
		}
		r.log.Trace().Str("blob", id).Msg("Pruned staged object")
	}
	return nil
}

// ActiveBranch returns the name of the checked-out branch.
func (r *Repository) ActiveBranch() string {
	return r.active
}

// Head returns the commit ID of the active branch.
func (r *Repository) Head() string {
	return r.heads[r.active]
}

// HeadOf returns the commit ID branch points at.
func (r *Repository) HeadOf(branch string) (string, bool) {
	id, ok := r.heads[branch]
	return id, ok
}

// HeadCommit loads the active branch's commit.
func (r *Repository) HeadCommit() (*dag.Commit, error) {
	return r.Commits.LoadCommit(r.Head())
}

// Stage returns the pending changes.
func (r *Repository) Stage() *Stage {
	return r.stage
}

// Location returns the zone log dates are rendered in.
func (r *Repository) Location() *time.Location {
	return r.loc
}

func (r *Repository) setHead(branch, id string) {
	r.heads[branch] = id
	r.dirtyRefs[branch] = true
	delete(r.droppedRefs, branch)
	r.log.Debug().Str("branch", branch).Str("commit", id).Msg("Moved branch head")
}

func (r *Repository) dropHead(branch string) {
	delete(r.heads, branch)
	delete(r.dirtyRefs, branch)
	r.droppedRefs[branch] = true
}

// recordCommit indexes a newly created commit and adds it to the active
// branch's log and the global log.
func (r *Repository) recordCommit(id string, c *dag.Commit) {
	r.index.Add(id, c.Message)
	text := dag.EntryFor(id, c).Format(r.loc)
	r.prependBranchLog(r.active, text)
	r.globalText = text + r.globalText
}

func (r *Repository) prependBranchLog(branch, text string) {
	e, ok := r.logEdits[branch]
	if !ok {
		e = &logEdit{}
		r.logEdits[branch] = e
	}
	if e.drop {
		*e = logEdit{replace: true}
	}
	e.text = text + e.text
}

func (r *Repository) replaceBranchLog(branch, text string) {
	r.logEdits[branch] = &logEdit{text: text, replace: true}
}

func (r *Repository) dropBranchLog(branch string) {
	r.logEdits[branch] = &logEdit{drop: true}
}

// branchLog returns branch's log including edits not yet saved.
func (r *Repository) branchLog(branch string) (string, error) {
	e, ok := r.logEdits[branch]
	switch {
	case ok && e.drop:
		return "", nil
	case ok && e.replace:
		return e.text, nil
	}
	stored, err := r.Logs.Branch(branch)
	if err != nil {
		return "", err
	}
	if ok {
		return e.text + stored, nil
	}
	return stored, nil
}
