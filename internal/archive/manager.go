package archive

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"previsbine/internal/build"
	"previsbine/internal/gamedir"
	"previsbine/internal/logging"
	"previsbine/internal/services"
)

// Backend is an external archiver able to pack and extract BA2 files.
// Folders are relative to the Data directory.
type Backend interface {
	Name() string
	Pack(ctx context.Context, dataDir, archive string, folders []string, xbox bool) error
	Unpack(ctx context.Context, dataDir, archive string) error
}

// Qualifiers carries the per-mode archive options.
type Qualifiers struct {
	Xbox bool
}

// QualifiersFor returns the archive options for a build mode.
func QualifiersFor(mode build.Mode) Qualifiers {
	return Qualifiers{Xbox: mode == build.Xbox}
}

// Option configures the manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithExtractSettle sets the pause after extracting an archive.
func WithExtractSettle(d time.Duration) Option {
	return func(m *Manager) { m.settle = d }
}

// Manager owns the plugin's single BA2 archive.
type Manager struct {
	backend Backend
	layout  *gamedir.Layout
	archive string
	settle  time.Duration
	logger  *slog.Logger
}

// NewManager binds backend to the named archive inside the layout's Data
// directory.
func NewManager(backend Backend, layout *gamedir.Layout, archive string, opts ...Option) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("archive backend required")
	}
	if layout == nil {
		return nil, errors.New("game layout required")
	}
	if archive == "" {
		return nil, errors.New("archive name required")
	}
	m := &Manager{
		backend: backend,
		layout:  layout,
		archive: archive,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Exists reports whether the archive is present in Data.
func (m *Manager) Exists() bool {
	return m.layout.DataExists(m.archive)
}

// Pack writes folders into the archive, replacing any existing one.
func (m *Manager) Pack(ctx context.Context, folders []string, q Qualifiers) error {
	stage, _ := services.StageFromContext(ctx)
	logger := logging.NewComponentLogger(logging.WithContext(ctx, m.logger), "archive")
	logger.Info("packing archive",
		logging.String("archive", m.archive),
		logging.String("backend", m.backend.Name()),
		logging.Strings("folders", folders),
	)
	if err := m.backend.Pack(ctx, m.dataDir(), m.archive, folders, q.Xbox); err != nil {
		return err
	}
	if !m.Exists() {
		return services.Wrap(services.ErrOutputMissing, stage, "pack archive", m.archive+" was not created", nil)
	}
	return nil
}

// Unpack extracts the archive into Data.
func (m *Manager) Unpack(ctx context.Context) error {
	stage, _ := services.StageFromContext(ctx)
	if !m.Exists() {
		return services.Wrap(services.ErrPrerequisiteUnmet, stage, "extract archive", m.archive+" does not exist", nil)
	}
	return m.backend.Unpack(ctx, m.dataDir(), m.archive)
}

// AddFolder merges folder into the archive. Neither back-end can append, so
// an existing archive is extracted and rebuilt from the extracted precombined
// meshes plus folder. The previous archive is kept as a backup until the
// rebuild succeeds and is put back when it fails, so a retried merge starts
// from the same archive.
func (m *Manager) AddFolder(ctx context.Context, folder string, q Qualifiers) error {
	stage, _ := services.StageFromContext(ctx)
	if err := m.recoverBackup(); err != nil {
		return services.Wrap(services.ErrExternalProcess, stage, "restore archive backup", m.backupName(), err)
	}
	if !m.Exists() {
		return m.Pack(ctx, []string{folder}, q)
	}
	if err := m.Unpack(ctx); err != nil {
		return err
	}
	if err := services.Sleep(ctx, m.settle); err != nil {
		return err
	}
	if err := m.layout.Rename(m.layout.Data(m.archive), m.layout.Data(m.backupName())); err != nil {
		return services.Wrap(services.ErrExternalProcess, stage, "back up archive", m.archive, err)
	}

	folders := []string{folder}
	hasMeshes, err := m.layout.HasFiles(gamedir.PrecombinedDir, gamedir.MeshExtension)
	if err != nil {
		return m.restore(stage, services.Wrap(services.ErrExternalProcess, stage, "inspect extracted meshes", "", err))
	}
	if hasMeshes {
		folders = []string{gamedir.PrecombinedFolder, folder}
	}
	if err := m.Pack(ctx, folders, q); err != nil {
		return m.restore(stage, err)
	}
	if err := m.layout.RemoveFile(m.layout.Data(m.backupName())); err != nil {
		return services.Wrap(services.ErrExternalProcess, stage, "remove archive backup", m.backupName(), err)
	}
	if hasMeshes {
		if err := m.layout.RemoveDir(gamedir.PrecombinedDir); err != nil {
			return services.Wrap(services.ErrExternalProcess, stage, "remove extracted meshes", "", err)
		}
	}
	return nil
}

func (m *Manager) backupName() string {
	return m.archive + ".bak"
}

// restore drops a partial archive and puts the backup back in place. cause
// is returned unchanged unless the restore itself fails.
func (m *Manager) restore(stage string, cause error) error {
	if err := m.layout.RemoveFile(m.layout.Data(m.archive)); err != nil {
		return errors.Join(cause, services.Wrap(services.ErrExternalProcess, stage, "remove partial archive", m.archive, err))
	}
	if err := m.layout.Rename(m.layout.Data(m.backupName()), m.layout.Data(m.archive)); err != nil {
		return errors.Join(cause, services.Wrap(services.ErrExternalProcess, stage, "restore archive backup", m.backupName(), err))
	}
	return cause
}

// recoverBackup puts back a backup left by an interrupted merge. Any archive
// next to it may be partial, so the backup always wins; the loose folder being
// merged is still on disk and the retry rebuilds from it.
func (m *Manager) recoverBackup() error {
	if !m.layout.DataExists(m.backupName()) {
		return nil
	}
	m.logger.Warn("restoring archive backup from an interrupted merge",
		logging.String("archive", m.archive),
		logging.String(logging.FieldEventType, "archive_backup_restored"),
	)
	if err := m.layout.RemoveFile(m.layout.Data(m.archive)); err != nil {
		return err
	}
	return m.layout.Rename(m.layout.Data(m.backupName()), m.layout.Data(m.archive))
}

func (m *Manager) dataDir() string {
	return m.layout.Abs(gamedir.DataDir)
}
