//go:build unit

package fake

import (
	"context"
	"errors"
	"sync"
	"time"

	"library-rental-api/internal/domain/book"
	"library-rental-api/internal/domain/rental"
	"library-rental-api/internal/domain/user"
	"library-rental-api/internal/infra"
	"library-rental-api/internal/usecase/shared"

	"github.com/google/uuid"
)

// UnitOfWork is an in-memory stand-in for the Postgres implementation.
// It reproduces the same conditional-write semantics (version guards,
// availability guards, partial-unique active rental) so command tests
// exercise the real concurrency contract without a database.
type UnitOfWork struct {
	mu          sync.Mutex
	books       map[uuid.UUID]bookRow
	rentals     map[uuid.UUID]rentalRow
	users       map[uuid.UUID]userRow
	bookReadErr error
}

type bookRow struct {
	id              uuid.UUID
	title           string
	author          string
	isbn            string
	genre           string
	description     *string
	totalCopies     int
	availableCopies int
	version         int64
	publicationYear *int32
	deletedAt       *time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

type rentalRow struct {
	id             uuid.UUID
	userID         uuid.UUID
	bookID         uuid.UUID
	rentedAt       time.Time
	dueDate        time.Time
	returnedAt     *time.Time
	status         rental.Status
	progress       int
	extensionCount int
	createdAt      time.Time
	updatedAt      time.Time
}

type userRow struct {
	id           uuid.UUID
	name         string
	email        string
	passwordHash string
	role         user.Role
	createdAt    time.Time
	updatedAt    time.Time
}

func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		books:   make(map[uuid.UUID]bookRow),
		rentals: make(map[uuid.UUID]rentalRow),
		users:   make(map[uuid.UUID]userRow),
	}
}

// Within serializes writers and rolls the whole store back when fn fails,
// mirroring transaction semantics.
func (u *UnitOfWork) Within(_ context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	booksBackup := copyMap(u.books)
	rentalsBackup := copyMap(u.rentals)
	usersBackup := copyMap(u.users)

	err := fn(context.Background(), &fakeTx{u: u})
	if err != nil {
		u.books = booksBackup
		u.rentals = rentalsBackup
		u.users = usersBackup
		return err
	}
	return nil
}

// FailBookReadsWith makes every subsequent book FindByID fail with err,
// simulating a storage outage.
func (u *UnitOfWork) FailBookReadsWith(err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.bookReadErr = err
}

func (u *UnitOfWork) Books() shared.BookRepository     { return &bookRepo{u: u, locked: false} }
func (u *UnitOfWork) Rentals() shared.RentalRepository { return &rentalRepo{u: u, locked: false} }
func (u *UnitOfWork) Users() shared.UserRepository     { return &userRepo{u: u, locked: false} }

type fakeTx struct {
	u *UnitOfWork
}

func (t *fakeTx) Books() shared.BookRepository     { return &bookRepo{u: t.u, locked: true} }
func (t *fakeTx) Rentals() shared.RentalRepository { return &rentalRepo{u: t.u, locked: true} }
func (t *fakeTx) Users() shared.UserRepository     { return &userRepo{u: t.u, locked: true} }

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// lock acquires the store mutex unless the caller already holds it via Within.
func lock(u *UnitOfWork, alreadyLocked bool) func() {
	if alreadyLocked {
		return func() {}
	}
	u.mu.Lock()
	return u.mu.Unlock
}

var errNotFound = errors.New("not found")

type bookRepo struct {
	u      *UnitOfWork
	locked bool
}

func (r *bookRepo) Create(_ context.Context, b *book.Book) error {
	defer lock(r.u, r.locked)()

	for _, row := range r.u.books {
		if row.isbn == b.ISBN().Value() && row.deletedAt == nil {
			return infra.WrapRepoErr("duplicate ISBN", errors.New("unique violation"), infra.KindDuplicateKey)
		}
	}

	now := time.Now()
	r.u.books[b.ID()] = bookRow{
		id:              b.ID(),
		title:           b.Title(),
		author:          b.Author(),
		isbn:            b.ISBN().Value(),
		genre:           b.Genre(),
		description:     b.Description(),
		totalCopies:     b.TotalCopies(),
		availableCopies: b.AvailableCopies(),
		version:         b.Version(),
		publicationYear: b.PublicationYear(),
		createdAt:       now,
		updatedAt:       now,
	}
	return nil
}

func (r *bookRepo) FindByID(_ context.Context, id uuid.UUID) (*book.Book, error) {
	defer lock(r.u, r.locked)()

	if r.u.bookReadErr != nil {
		return nil, r.u.bookReadErr
	}

	row, ok := r.u.books[id]
	if !ok || row.deletedAt != nil {
		return nil, infra.WrapRepoErr("book not found", errNotFound, infra.KindNotFound)
	}
	return reconstructBook(row)
}

func (r *bookRepo) UpdateWithLock(_ context.Context, b *book.Book, expectedVersion int64) (bool, error) {
	defer lock(r.u, r.locked)()

	row, ok := r.u.books[b.ID()]
	if !ok || row.deletedAt != nil || row.version != expectedVersion {
		return false, nil
	}

	row.title = b.Title()
	row.author = b.Author()
	row.isbn = b.ISBN().Value()
	row.genre = b.Genre()
	row.description = b.Description()
	row.totalCopies = b.TotalCopies()
	row.availableCopies = b.AvailableCopies()
	row.publicationYear = b.PublicationYear()
	row.version++
	row.updatedAt = time.Now()
	r.u.books[b.ID()] = row
	return true, nil
}

func (r *bookRepo) DeleteWithLock(_ context.Context, id uuid.UUID, expectedVersion int64) (bool, error) {
	defer lock(r.u, r.locked)()

	row, ok := r.u.books[id]
	if !ok || row.deletedAt != nil || row.version != expectedVersion {
		return false, nil
	}

	now := time.Now()
	row.deletedAt = &now
	row.version++
	row.updatedAt = now
	r.u.books[id] = row
	return true, nil
}

func (r *bookRepo) DecrementAvailability(_ context.Context, id uuid.UUID, expectedVersion int64) (bool, error) {
	defer lock(r.u, r.locked)()

	row, ok := r.u.books[id]
	if !ok || row.deletedAt != nil || row.version != expectedVersion || row.availableCopies <= 0 {
		return false, nil
	}

	row.availableCopies--
	row.version++
	row.updatedAt = time.Now()
	r.u.books[id] = row
	return true, nil
}

func (r *bookRepo) IncrementAvailability(_ context.Context, id uuid.UUID, expectedVersion int64) (bool, error) {
	defer lock(r.u, r.locked)()

	row, ok := r.u.books[id]
	if !ok || row.deletedAt != nil || row.version != expectedVersion || row.availableCopies >= row.totalCopies {
		return false, nil
	}

	row.availableCopies++
	row.version++
	row.updatedAt = time.Now()
	r.u.books[id] = row
	return true, nil
}

func (r *bookRepo) CountActiveRentals(_ context.Context, bookID uuid.UUID) (int64, error) {
	defer lock(r.u, r.locked)()

	var count int64
	for _, row := range r.u.rentals {
		if row.bookID == bookID && row.status == rental.StatusActive {
			count++
		}
	}
	return count, nil
}

type rentalRepo struct {
	u      *UnitOfWork
	locked bool
}

func (r *rentalRepo) Create(_ context.Context, ren *rental.Rental) error {
	defer lock(r.u, r.locked)()

	if ren.Status() == rental.StatusActive {
		for _, row := range r.u.rentals {
			if row.userID == ren.UserID() && row.bookID == ren.BookID() && row.status == rental.StatusActive {
				return infra.WrapRepoErr("duplicate active rental", errors.New("unique violation"), infra.KindDuplicateKey)
			}
		}
	}

	if _, ok := r.u.books[ren.BookID()]; !ok {
		return infra.WrapRepoErr("book does not exist", errors.New("fk violation"), infra.KindForeignKeyViolated)
	}

	now := time.Now()
	r.u.rentals[ren.ID()] = rentalRowFromEntity(ren, now, now)
	return nil
}

func (r *rentalRepo) FindByIDForUser(_ context.Context, id, userID uuid.UUID) (*rental.Rental, error) {
	defer lock(r.u, r.locked)()

	row, ok := r.u.rentals[id]
	if !ok || row.userID != userID {
		return nil, infra.WrapRepoErr("rental not found", errNotFound, infra.KindNotFound)
	}
	return reconstructRental(row)
}

func (r *rentalRepo) HasActiveRental(_ context.Context, userID, bookID uuid.UUID) (bool, error) {
	defer lock(r.u, r.locked)()

	for _, row := range r.u.rentals {
		if row.userID == userID && row.bookID == bookID && row.status == rental.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *rentalRepo) Update(_ context.Context, ren *rental.Rental) error {
	defer lock(r.u, r.locked)()

	row, ok := r.u.rentals[ren.ID()]
	if !ok {
		return infra.WrapRepoErr("rental not found", errNotFound, infra.KindNotFound)
	}
	r.u.rentals[ren.ID()] = rentalRowFromEntity(ren, row.createdAt, time.Now())
	return nil
}

type userRepo struct {
	u      *UnitOfWork
	locked bool
}

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	defer lock(r.u, r.locked)()

	for _, row := range r.u.users {
		if row.email == u.Email().Value() {
			return infra.WrapRepoErr("duplicate email", errors.New("unique violation"), infra.KindDuplicateKey)
		}
	}

	now := time.Now()
	r.u.users[u.ID()] = userRow{
		id:           u.ID(),
		name:         u.Name(),
		email:        u.Email().Value(),
		passwordHash: u.PasswordHash(),
		role:         u.Role(),
		createdAt:    now,
		updatedAt:    now,
	}
	return nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	defer lock(r.u, r.locked)()

	for _, row := range r.u.users {
		if row.email == email {
			return reconstructUser(row), nil
		}
	}
	return nil, infra.WrapRepoErr("user not found", errNotFound, infra.KindNotFound)
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	defer lock(r.u, r.locked)()

	row, ok := r.u.users[id]
	if !ok {
		return nil, infra.WrapRepoErr("user not found", errNotFound, infra.KindNotFound)
	}
	return reconstructUser(row), nil
}

func reconstructBook(row bookRow) (*book.Book, error) {
	isbn, err := book.NewISBN(row.isbn)
	if err != nil {
		return nil, err
	}
	return book.ReconstructBook(row.id, row.title, row.author, isbn, row.genre, row.description,
		row.totalCopies, row.availableCopies, row.version, row.publicationYear,
		row.deletedAt, row.createdAt, row.updatedAt)
}

func reconstructRental(row rentalRow) (*rental.Rental, error) {
	period, err := rental.NewRentalPeriod(row.rentedAt, row.dueDate, row.returnedAt)
	if err != nil {
		return nil, err
	}
	progress, err := rental.NewReadingProgress(row.progress)
	if err != nil {
		return nil, err
	}
	return rental.ReconstructRental(row.id, row.userID, row.bookID, period, row.status,
		progress, row.extensionCount, row.createdAt, row.updatedAt)
}

func reconstructUser(row userRow) *user.User {
	email, _ := user.NewEmail(row.email)
	return user.ReconstructUser(row.id, row.name, email, row.passwordHash, row.role, row.createdAt, row.updatedAt)
}

func rentalRowFromEntity(ren *rental.Rental, createdAt, updatedAt time.Time) rentalRow {
	return rentalRow{
		id:             ren.ID(),
		userID:         ren.UserID(),
		bookID:         ren.BookID(),
		rentedAt:       ren.Period().RentedAt(),
		dueDate:        ren.Period().DueDate(),
		returnedAt:     ren.Period().ReturnedAt(),
		status:         ren.Status(),
		progress:       ren.Progress().Value(),
		extensionCount: ren.ExtensionCount(),
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}
