package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/bookcircle/bookcircle-api/internal/domain"
	"github.com/bookcircle/bookcircle-api/internal/store"
)

// txJournal collects undo functions for the transaction in flight. The stub
// driver runs them on rollback, so the in-memory fakes discard uncommitted
// writes the way the database would.
type txJournal struct {
	mu   sync.Mutex
	undo []func()
}

func (j *txJournal) record(fn func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = append(j.undo, fn)
}

func (j *txJournal) commit() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = nil
}

func (j *txJournal) rollback() {
	j.mu.Lock()
	undo := j.undo
	j.undo = nil
	j.mu.Unlock()
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

// stubConnector backs a *sql.DB whose transactions carry no real statements.
// The fakes below hold all state in memory and register undo hooks on the
// shared journal, so the services' transaction plumbing runs against a real
// *sql.Tx without a database while rollback still reverts the fakes.
type stubConnector struct {
	journal *txJournal
}

func (c stubConnector) Connect(context.Context) (driver.Conn, error) {
	return stubConn{journal: c.journal}, nil
}
func (c stubConnector) Driver() driver.Driver { return stubDriver{journal: c.journal} }

type stubDriver struct {
	journal *txJournal
}

func (d stubDriver) Open(string) (driver.Conn, error) { return stubConn{journal: d.journal}, nil }

type stubConn struct {
	journal *txJournal
}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (c stubConn) Begin() (driver.Tx, error)         { return stubTx{journal: c.journal}, nil }

type stubTx struct {
	journal *txJournal
}

func (tx stubTx) Commit() error {
	tx.journal.commit()
	return nil
}

func (tx stubTx) Rollback() error {
	tx.journal.rollback()
	return nil
}

func newStubDB(t *testing.T, journal *txJournal) *sql.DB {
	t.Helper()
	db := sql.OpenDB(stubConnector{journal: journal})
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// membershipPair identifies a (group, user) relation.
type membershipPair struct {
	groupID int64
	userID  int64
}

// fakeGroupStore is an in-memory GroupStore with the same error contract as
// the postgres implementation.
type fakeGroupStore struct {
	mu       sync.Mutex
	journal  *txJournal
	nextID   int64
	groups   map[int64]*domain.Group
	admins   map[membershipPair]bool
	members  map[membershipPair]bool
	requests map[membershipPair]bool

	failCreateGroup error
	failAddAdmin    error
	failAddMember   error
}

func newFakeGroupStore(journal *txJournal) *fakeGroupStore {
	return &fakeGroupStore{
		journal:  journal,
		groups:   make(map[int64]*domain.Group),
		admins:   make(map[membershipPair]bool),
		members:  make(map[membershipPair]bool),
		requests: make(map[membershipPair]bool),
	}
}

var _ store.GroupStore = (*fakeGroupStore)(nil)

func (f *fakeGroupStore) CreateGroup(_ context.Context, group *domain.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateGroup != nil {
		return f.failCreateGroup
	}
	f.nextID++
	group.ID = f.nextID
	stored := *group
	f.groups[group.ID] = &stored
	return nil
}

func (f *fakeGroupStore) AddAdmin(_ context.Context, groupID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAddAdmin != nil {
		return f.failAddAdmin
	}
	f.admins[membershipPair{groupID, userID}] = true
	return nil
}

func (f *fakeGroupStore) AddMember(_ context.Context, groupID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAddMember != nil {
		return f.failAddMember
	}
	key := membershipPair{groupID, userID}
	if f.members[key] {
		return store.ErrAlreadyMember
	}
	f.members[key] = true
	return nil
}

func (f *fakeGroupStore) IsAdmin(_ context.Context, userID, groupID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.admins[membershipPair{groupID, userID}], nil
}

func (f *fakeGroupStore) IsMember(_ context.Context, groupID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[membershipPair{groupID, userID}], nil
}

func (f *fakeGroupStore) CreateJoinRequest(_ context.Context, req *domain.JoinRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[req.GroupID]; !ok {
		return store.ErrGroupNotFound
	}
	key := membershipPair{req.GroupID, req.UserID}
	if f.requests[key] {
		return store.ErrRequestExists
	}
	f.requests[key] = true
	return nil
}

func (f *fakeGroupStore) DeleteJoinRequest(_ context.Context, groupID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := membershipPair{groupID, userID}
	if !f.requests[key] {
		return store.ErrRequestNotFound
	}
	delete(f.requests, key)
	return nil
}

func (f *fakeGroupStore) GetGroupByID(_ context.Context, groupID int64) (*domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	group, ok := f.groups[groupID]
	if !ok {
		return nil, store.ErrGroupNotFound
	}
	out := *group
	out.MemberCount = f.memberCountLocked(groupID)
	return &out, nil
}

func (f *fakeGroupStore) GetGroupsByUserID(_ context.Context, userID int64) ([]*domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	groups := make([]*domain.Group, 0)
	for id, group := range f.groups {
		var status domain.MembershipStatus
		switch {
		case f.members[membershipPair{id, userID}]:
			status = domain.MembershipMember
		case f.requests[membershipPair{id, userID}]:
			status = domain.MembershipRequested
		default:
			continue
		}
		out := *group
		out.MemberCount = f.memberCountLocked(id)
		out.MembershipStatus = status
		groups = append(groups, &out)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID > groups[j].ID })
	return groups, nil
}

func (f *fakeGroupStore) GetMembersByGroupID(_ context.Context, groupID int64) ([]*domain.GroupMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[groupID]; !ok {
		return nil, store.ErrGroupNotFound
	}
	members := make([]*domain.GroupMember, 0)
	for key := range f.members {
		if key.groupID == groupID {
			members = append(members, &domain.GroupMember{UserID: key.userID})
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
	return members, nil
}

func (f *fakeGroupStore) GetRequestsByGroupID(_ context.Context, groupID int64) ([]*domain.GroupMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[groupID]; !ok {
		return nil, store.ErrGroupNotFound
	}
	requested := make([]*domain.GroupMember, 0)
	for key := range f.requests {
		if key.groupID == groupID {
			requested = append(requested, &domain.GroupMember{UserID: key.userID})
		}
	}
	sort.Slice(requested, func(i, j int) bool { return requested[i].UserID < requested[j].UserID })
	return requested, nil
}

// WithTx snapshots the store's state and registers an undo hook, so a
// rolled-back transaction leaves the fake exactly as it found it.
func (f *fakeGroupStore) WithTx(*sql.Tx) store.GroupStore {
	if f.journal == nil {
		return f
	}

	f.mu.Lock()
	nextID := f.nextID
	groups := make(map[int64]*domain.Group, len(f.groups))
	for id, group := range f.groups {
		copied := *group
		groups[id] = &copied
	}
	admins := copyPairSet(f.admins)
	members := copyPairSet(f.members)
	requests := copyPairSet(f.requests)
	f.mu.Unlock()

	f.journal.record(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextID = nextID
		f.groups = groups
		f.admins = admins
		f.members = members
		f.requests = requests
	})
	return f
}

func copyPairSet(src map[membershipPair]bool) map[membershipPair]bool {
	dst := make(map[membershipPair]bool, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

func (f *fakeGroupStore) memberCountLocked(groupID int64) int {
	count := 0
	for key := range f.members {
		if key.groupID == groupID {
			count++
		}
	}
	return count
}

// fakeUserStore is an in-memory UserStore keyed by ID with an email
// uniqueness constraint.
type fakeUserStore struct {
	mu      sync.Mutex
	journal *txJournal
	nextID  int64
	users   map[int64]*domain.User
}

func newFakeUserStore(journal *txJournal) *fakeUserStore {
	return &fakeUserStore{journal: journal, users: make(map[int64]*domain.User)}
}

var _ store.UserStore = (*fakeUserStore)(nil)

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	f.nextID++
	user.ID = f.nextID
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	for id, other := range f.users {
		if id != user.ID && other.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	updated := *user
	updated.CreatedAt = existing.CreatedAt
	f.users[user.ID] = &updated
	return nil
}

func (f *fakeUserStore) WithTx(*sql.Tx) store.UserStore {
	if f.journal == nil {
		return f
	}

	f.mu.Lock()
	nextID := f.nextID
	users := make(map[int64]*domain.User, len(f.users))
	for id, user := range f.users {
		copied := *user
		users[id] = &copied
	}
	f.mu.Unlock()

	f.journal.record(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextID = nextID
		f.users = users
	})
	return f
}

// fakePostStore is an in-memory PostStore with title+author book dedup.
type fakePostStore struct {
	mu           sync.Mutex
	journal      *txJournal
	nextBookID   int64
	nextReviewID int64
	books        map[string]*domain.Book
	reviews      []*domain.Review
	feed         []*domain.Post

	failCreateReview error
}

func newFakePostStore(journal *txJournal) *fakePostStore {
	return &fakePostStore{journal: journal, books: make(map[string]*domain.Book)}
}

var _ store.PostStore = (*fakePostStore)(nil)

func (f *fakePostStore) GetFeed(context.Context) ([]*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.feed == nil {
		return []*domain.Post{}, nil
	}
	return f.feed, nil
}

func (f *fakePostStore) EnsureBook(_ context.Context, book *domain.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := book.Title + "\x00" + book.Author
	if existing, ok := f.books[key]; ok {
		book.ID = existing.ID
		return nil
	}
	f.nextBookID++
	book.ID = f.nextBookID
	stored := *book
	f.books[key] = &stored
	return nil
}

func (f *fakePostStore) CreateReview(_ context.Context, review *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateReview != nil {
		return f.failCreateReview
	}
	f.nextReviewID++
	review.ID = f.nextReviewID
	stored := *review
	f.reviews = append(f.reviews, &stored)
	return nil
}

func (f *fakePostStore) WithTx(*sql.Tx) store.PostStore {
	if f.journal == nil {
		return f
	}

	f.mu.Lock()
	nextBookID := f.nextBookID
	nextReviewID := f.nextReviewID
	books := make(map[string]*domain.Book, len(f.books))
	for key, book := range f.books {
		copied := *book
		books[key] = &copied
	}
	reviews := make([]*domain.Review, len(f.reviews))
	copy(reviews, f.reviews)
	f.mu.Unlock()

	f.journal.record(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextBookID = nextBookID
		f.nextReviewID = nextReviewID
		f.books = books
		f.reviews = reviews
	})
	return f
}
