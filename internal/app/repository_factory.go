package app

import (
	"fmt"

	entriesDomain "github.com/felixgeelhaar/synapse/internal/entries/domain"
	entriesPersistence "github.com/felixgeelhaar/synapse/internal/entries/infrastructure/persistence"
	goalsDomain "github.com/felixgeelhaar/synapse/internal/goals/domain"
	goalsPersistence "github.com/felixgeelhaar/synapse/internal/goals/infrastructure/persistence"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	taxonomyDomain "github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
	taxonomyPersistence "github.com/felixgeelhaar/synapse/internal/taxonomy/infrastructure/persistence"
)

// RepositoryFactory creates repositories for a connection. The repositories
// rebind their SQL per driver, so one implementation serves both backends.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) (*RepositoryFactory, error) {
	if conn == nil {
		return nil, fmt.Errorf("repository factory: nil connection")
	}
	driver := conn.Driver()
	if !driver.IsValid() {
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
	return &RepositoryFactory{conn: conn, driver: driver}, nil
}

// EntryRepository creates the entry repository.
func (f *RepositoryFactory) EntryRepository() entriesDomain.Repository {
	return entriesPersistence.NewEntryRepository(f.conn)
}

// GoalRepository creates the goal repository.
func (f *RepositoryFactory) GoalRepository() goalsDomain.Repository {
	return goalsPersistence.NewGoalRepository(f.conn)
}

// CategoryRepository creates the category repository.
func (f *RepositoryFactory) CategoryRepository() taxonomyDomain.CategoryRepository {
	return taxonomyPersistence.NewCategoryRepository(f.conn)
}

// SubjectRepository creates the subject repository.
func (f *RepositoryFactory) SubjectRepository() taxonomyDomain.SubjectRepository {
	return taxonomyPersistence.NewSubjectRepository(f.conn)
}

// OutboxRepository creates the outbox repository.
func (f *RepositoryFactory) OutboxRepository() outbox.Repository {
	return outbox.NewSQLRepository(f.conn)
}

// UnitOfWork creates a unit of work on the connection.
func (f *RepositoryFactory) UnitOfWork() *database.UnitOfWork {
	return database.NewUnitOfWork(f.conn)
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
