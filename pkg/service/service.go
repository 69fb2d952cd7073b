package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-writer/pkg/binding"
	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/search"
	"github.com/mattsolo1/grove-writer/pkg/stats"
	"github.com/mattsolo1/grove-writer/pkg/storage"
	"github.com/mattsolo1/grove-writer/pkg/tree"
	"github.com/mattsolo1/grove-writer/pkg/workspace"
)

// DefaultWorkspaceTitle names the book created when nothing was stored.
const DefaultWorkspaceTitle = "My First Book"

// Service owns the whole application state. Every change goes through one
// of its methods, which mutate the tree, update the session, reindex, record
// statistics, notify subscribers and then save the snapshot.
type Service struct {
	mu sync.Mutex

	store    *tree.Store
	mutator  *tree.Mutator
	registry *workspace.Registry
	session  models.Session
	history  *stats.History

	slots      storage.Slots
	Index      *search.Index
	bridge     *binding.Bridge
	autoWriter *binding.AutoWriter
	events     *broadcaster

	Logger *logrus.Logger
	Config *Config

	now         func() time.Time
	picker      binding.Picker
	mutatorOpts []tree.Option
	notices     []Notice
	loadReport  *LoadReport
}

// Config holds service configuration
type Config struct {
	DataDir          string
	Ephemeral        bool // keep everything in memory
	AutosaveInterval time.Duration
	Goals            stats.Goals
	DefaultCategory  models.Category
}

// Option customises a Service.
type Option func(*Service)

// WithSlots replaces the slot store derived from Config.
func WithSlots(slots storage.Slots) Option {
	return func(s *Service) {
		s.slots = slots
	}
}

// WithIndex replaces the search index derived from Config.
func WithIndex(idx *search.Index) Option {
	return func(s *Service) {
		s.Index = idx
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) {
		s.Logger = logger
	}
}

// WithClock replaces time.Now for timestamps and statistics.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithPicker sets the callback that chooses a file for manual saves of an
// unbound node.
func WithPicker(p binding.Picker) Option {
	return func(s *Service) {
		s.picker = p
	}
}

// WithTreeOptions passes options to the tree mutator.
func WithTreeOptions(opts ...tree.Option) Option {
	return func(s *Service) {
		s.mutatorOpts = append(s.mutatorOpts, opts...)
	}
}

// New creates a service and loads the stored state. When nothing usable is
// stored it starts with a single empty book.
func New(ctx context.Context, config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = &Config{Ephemeral: true}
	}
	s := &Service{
		Config: config,
		now:    time.Now,
		events: newBroadcaster(),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.Logger == nil {
		s.Logger = logrus.New()
		s.Logger.SetOutput(os.Stderr)
		s.Logger.SetLevel(logrus.WarnLevel)
	}

	if s.slots == nil {
		if config.Ephemeral {
			s.slots = storage.NewMemorySlots()
		} else {
			slots, err := storage.OpenSQLite(config.DataDir)
			if err != nil {
				return nil, fmt.Errorf("open state store: %w", err)
			}
			s.slots = slots
		}
	}

	if s.Index == nil {
		path := ":memory:"
		if !config.Ephemeral {
			path = filepath.Join(config.DataDir, "index.db")
		}
		index, err := search.NewIndex(path)
		if err != nil {
			_ = s.slots.Close()
			return nil, fmt.Errorf("create index: %w", err)
		}
		s.Index = index
	}

	s.store = tree.NewStore()
	s.mutator = tree.NewMutator(s.store, append([]tree.Option{tree.WithClock(s.now)}, s.mutatorOpts...)...)
	s.registry = workspace.NewRegistry(s.mutator)
	s.session = models.DefaultSession()
	s.history = stats.NewHistory(config.Goals)

	entry := s.Logger.WithField("component", "service")
	s.bridge = binding.NewBridge(s.nodeCopy, s.picker, entry)
	s.autoWriter = binding.NewAutoWriter(s.bridge, s.activeFileID, config.AutosaveInterval)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)

	return s, nil
}

// Close stops the auto writer and releases the stores.
func (s *Service) Close() error {
	s.autoWriter.Stop()
	s.events.closeAll()

	var firstErr error
	if err := s.Index.Close(); err != nil {
		firstErr = err
	}
	if err := s.slots.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// nodeCopy is the binding.NodeSource of the bridge. It runs on the auto
// writer's goroutine, so it takes the lock and hands out a copy.
func (s *Service) nodeCopy(id string) (*models.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.store.Get(id)
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

func (s *Service) activeFileID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.ActiveNodeID
}

// Notice is a non-blocking message for the user, typically a failed save.
type Notice struct {
	Time    time.Time
	Level   logrus.Level
	Message string
}

func (s *Service) noticeLocked(level logrus.Level, format string, args ...any) {
	s.notices = append(s.notices, Notice{
		Time:    s.now(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// Notices returns and clears the pending notices.
func (s *Service) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}
