package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bookcircle/bookcircle-api/internal/domain"
	"github.com/bookcircle/bookcircle-api/internal/platform/logger"
	"github.com/bookcircle/bookcircle-api/internal/store"
)

// PostgresGroupStore implements the store.GroupStore interface
// using a PostgreSQL database as the storage backend.
type PostgresGroupStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGroupStore creates a new PostgreSQL implementation of the
// GroupStore interface.
func NewPostgresGroupStore(db store.DBTX, logger *slog.Logger) *PostgresGroupStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGroupStore{
		db:     db,
		logger: logger.With(slog.String("component", "group_store")),
	}
}

// Ensure PostgresGroupStore implements store.GroupStore interface
var _ store.GroupStore = (*PostgresGroupStore)(nil)

// WithTx returns a new GroupStore bound to the given transaction.
func (s *PostgresGroupStore) WithTx(tx *sql.Tx) store.GroupStore {
	return &PostgresGroupStore{
		db:     tx,
		logger: s.logger,
	}
}

// mapRelationError translates constraint violations on the relation tables
// (groupadmin, member_of, group_member_req) into store errors. Foreign key
// violations name the missing side: a violation on the group reference maps
// to ErrGroupNotFound, on the user reference to ErrUserNotFound.
func mapRelationError(err error, duplicate error) error {
	if IsUniqueViolation(err) {
		return MapUniqueViolation(err, duplicate)
	}

	// Constraint names follow the <table>_<column>_fkey convention, so the
	// column suffix identifies which side of the relation is missing. The
	// table prefix alone is ambiguous: every group_member_req constraint
	// contains "group".
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
		switch {
		case strings.Contains(pgErr.ConstraintName, "group_id"):
			return fmt.Errorf("%w: %v", store.ErrGroupNotFound, err)
		case strings.Contains(pgErr.ConstraintName, "user_id"),
			strings.Contains(pgErr.ConstraintName, "suggester_id"):
			return fmt.Errorf("%w: %v", store.ErrUserNotFound, err)
		}
	}

	return MapError(err)
}

// CreateGroup implements store.GroupStore.CreateGroup
// It inserts only the group row; the creator's admin and member relations
// are added by the service inside the same transaction.
func (s *PostgresGroupStore) CreateGroup(ctx context.Context, group *domain.Group) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := group.Validate(); err != nil {
		log.Warn("group validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO groups (group_name, group_description, group_image_url, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING group_id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		group.Name,
		group.Description,
		group.ImageURL,
		group.CreatedAt,
	).Scan(&group.ID)

	if err != nil {
		log.Error("failed to create group",
			slog.String("error", err.Error()),
			slog.String("group_name", group.Name))
		return MapError(err)
	}

	log.Info("group created successfully",
		slog.Int64("group_id", group.ID))
	return nil
}

// AddAdmin implements store.GroupStore.AddAdmin
func (s *PostgresGroupStore) AddAdmin(ctx context.Context, groupID, userID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO groupadmin (group_id, user_id)
		VALUES ($1, $2)
	`
	if _, err := s.db.ExecContext(ctx, query, groupID, userID); err != nil {
		log.Error("failed to add group admin",
			slog.String("error", err.Error()),
			slog.Int64("group_id", groupID),
			slog.Int64("user_id", userID))
		return mapRelationError(err, store.ErrDuplicate)
	}

	return nil
}

// AddMember implements store.GroupStore.AddMember
func (s *PostgresGroupStore) AddMember(ctx context.Context, groupID, userID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO member_of (group_id, user_id)
		VALUES ($1, $2)
	`
	if _, err := s.db.ExecContext(ctx, query, groupID, userID); err != nil {
		if IsUniqueViolation(err) {
			log.Debug("user is already a member",
				slog.Int64("group_id", groupID),
				slog.Int64("user_id", userID))
		} else {
			log.Error("failed to add group member",
				slog.String("error", err.Error()),
				slog.Int64("group_id", groupID),
				slog.Int64("user_id", userID))
		}
		return mapRelationError(err, store.ErrAlreadyMember)
	}

	log.Info("member added to group",
		slog.Int64("group_id", groupID),
		slog.Int64("user_id", userID))
	return nil
}

// IsAdmin implements store.GroupStore.IsAdmin
func (s *PostgresGroupStore) IsAdmin(ctx context.Context, userID, groupID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM groupadmin
			WHERE user_id = $1 AND group_id = $2
		)
	`

	var isAdmin bool
	if err := s.db.QueryRowContext(ctx, query, userID, groupID).Scan(&isAdmin); err != nil {
		s.logger.Error("failed to check admin status",
			slog.String("error", err.Error()),
			slog.Int64("group_id", groupID),
			slog.Int64("user_id", userID))
		return false, MapError(err)
	}

	return isAdmin, nil
}

// IsMember implements store.GroupStore.IsMember
func (s *PostgresGroupStore) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM member_of
			WHERE group_id = $1 AND user_id = $2
		)
	`

	var isMember bool
	if err := s.db.QueryRowContext(ctx, query, groupID, userID).Scan(&isMember); err != nil {
		s.logger.Error("failed to check membership",
			slog.String("error", err.Error()),
			slog.Int64("group_id", groupID),
			slog.Int64("user_id", userID))
		return false, MapError(err)
	}

	return isMember, nil
}

// CreateJoinRequest implements store.GroupStore.CreateJoinRequest
func (s *PostgresGroupStore) CreateJoinRequest(ctx context.Context, req *domain.JoinRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO group_member_req (group_id, user_id, suggester_id)
		VALUES ($1, $2, $3)
	`
	if _, err := s.db.ExecContext(ctx, query, req.GroupID, req.UserID, req.SuggesterID); err != nil {
		if IsUniqueViolation(err) {
			log.Debug("join request already exists",
				slog.Int64("group_id", req.GroupID),
				slog.Int64("user_id", req.UserID))
		} else {
			log.Error("failed to create join request",
				slog.String("error", err.Error()),
				slog.Int64("group_id", req.GroupID),
				slog.Int64("user_id", req.UserID))
		}
		return mapRelationError(err, store.ErrRequestExists)
	}

	log.Info("join request created",
		slog.Int64("group_id", req.GroupID),
		slog.Int64("user_id", req.UserID))
	return nil
}

// DeleteJoinRequest implements store.GroupStore.DeleteJoinRequest
// Zero rows affected means the request never existed (or a concurrent
// moderation already consumed it) and yields store.ErrRequestNotFound.
func (s *PostgresGroupStore) DeleteJoinRequest(ctx context.Context, groupID, userID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM group_member_req
		WHERE group_id = $1 AND user_id = $2
	`
	result, err := s.db.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		log.Error("failed to delete join request",
			slog.String("error", err.Error()),
			slog.Int64("group_id", groupID),
			slog.Int64("user_id", userID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrRequestNotFound); err != nil {
		log.Debug("join request not found",
			slog.Int64("group_id", groupID),
			slog.Int64("user_id", userID))
		return err
	}

	log.Info("join request deleted",
		slog.Int64("group_id", groupID),
		slog.Int64("user_id", userID))
	return nil
}

// GetGroupByID implements store.GroupStore.GetGroupByID
func (s *PostgresGroupStore) GetGroupByID(ctx context.Context, groupID int64) (*domain.Group, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT g.group_id,
		       g.group_name,
		       g.group_description,
		       g.group_image_url,
		       g.created_at,
		       (
		           SELECT COUNT(DISTINCT m.user_id)
		           FROM member_of m
		           WHERE m.group_id = g.group_id
		       ) AS member_count
		FROM groups g
		WHERE g.group_id = $1
	`

	var group domain.Group
	err := s.db.QueryRowContext(ctx, query, groupID).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.ImageURL,
		&group.CreatedAt,
		&group.MemberCount,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("group not found", slog.Int64("group_id", groupID))
			return nil, store.ErrGroupNotFound
		}
		log.Error("failed to get group by ID",
			slog.String("error", err.Error()),
			slog.Int64("group_id", groupID))
		return nil, MapError(err)
	}

	return &group, nil
}

// GetGroupsByUserID implements store.GroupStore.GetGroupsByUserID
// Membership takes precedence over a pending request in the derived status
// column should both rows somehow exist.
func (s *PostgresGroupStore) GetGroupsByUserID(ctx context.Context, userID int64) ([]*domain.Group, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT g.group_id,
		       g.group_name,
		       g.group_description,
		       g.group_image_url,
		       g.created_at,
		       (
		           SELECT COUNT(DISTINCT m2.user_id)
		           FROM member_of m2
		           WHERE m2.group_id = g.group_id
		       ) AS member_count,
		       CASE
		           WHEN m.user_id IS NOT NULL THEN 'member'
		           WHEN r.user_id IS NOT NULL THEN 'requested'
		           ELSE ''
		       END AS membership_status
		FROM groups g
		LEFT JOIN member_of m ON g.group_id = m.group_id AND m.user_id = $1
		LEFT JOIN group_member_req r ON g.group_id = r.group_id AND r.user_id = $1
		WHERE m.user_id IS NOT NULL OR r.user_id IS NOT NULL
		ORDER BY g.created_at DESC, g.group_id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query groups by user",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	groups := []*domain.Group{}
	for rows.Next() {
		var group domain.Group
		var status string

		err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.ImageURL,
			&group.CreatedAt,
			&group.MemberCount,
			&status,
		)
		if err != nil {
			log.Error("failed to scan group row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		group.MembershipStatus = domain.MembershipStatus(status)
		groups = append(groups, &group)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning group rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return groups, nil
}

// groupExists reports whether the group row exists. List queries use this
// to distinguish an empty roster from a missing group.
func (s *PostgresGroupStore) groupExists(ctx context.Context, groupID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM groups WHERE group_id = $1)`
	if err := s.db.QueryRowContext(ctx, query, groupID).Scan(&exists); err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// GetMembersByGroupID implements store.GroupStore.GetMembersByGroupID
// A group with no members yields an empty slice, never an error.
func (s *PostgresGroupStore) GetMembersByGroupID(ctx context.Context, groupID int64) ([]*domain.GroupMember, error) {
	query := `
		SELECT u.user_id, u.username, u.email, u.image_url
		FROM users u
		INNER JOIN member_of m ON u.user_id = m.user_id
		WHERE m.group_id = $1
		ORDER BY u.username
	`
	return s.listGroupUsers(ctx, groupID, query)
}

// GetRequestsByGroupID implements store.GroupStore.GetRequestsByGroupID
func (s *PostgresGroupStore) GetRequestsByGroupID(ctx context.Context, groupID int64) ([]*domain.GroupMember, error) {
	query := `
		SELECT u.user_id, u.username, u.email, u.image_url
		FROM group_member_req r
		INNER JOIN users u ON r.user_id = u.user_id
		WHERE r.group_id = $1
		ORDER BY u.username
	`
	return s.listGroupUsers(ctx, groupID, query)
}

// listGroupUsers runs a roster projection query for the given group after
// verifying the group exists.
func (s *PostgresGroupStore) listGroupUsers(
	ctx context.Context,
	groupID int64,
	query string,
) ([]*domain.GroupMember, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	exists, err := s.groupExists(ctx, groupID)
	if err != nil {
		log.Error("failed to check group existence",
			slog.String("error", err.Error()),
			slog.Int64("group_id", groupID))
		return nil, err
	}
	if !exists {
		log.Debug("group not found", slog.Int64("group_id", groupID))
		return nil, store.ErrGroupNotFound
	}

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		log.Error("failed to query group roster",
			slog.String("error", err.Error()),
			slog.Int64("group_id", groupID))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	members := []*domain.GroupMember{}
	for rows.Next() {
		var member domain.GroupMember
		err := rows.Scan(
			&member.UserID,
			&member.Username,
			&member.Email,
			&member.ImageURL,
		)
		if err != nil {
			log.Error("failed to scan roster row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		members = append(members, &member)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning roster rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return members, nil
}
